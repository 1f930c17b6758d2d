// en internal/paginate/application/paginator.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	sharedQuery "github.com/davicafu/hexapaginate/internal/shared/infra/platform/query"
)

// PageResult es la página que se entrega al llamador.
type PageResult struct {
	Total int64             `json:"total"`
	Limit int64             `json:"limit"`
	Page  int               `json:"page"`
	Data  []domain.Document `json:"data"`
}

// Collection es una colección con sus defaults adjuntos. Se crea una vez en el
// arranque con Attach y no se modifica después, así que admite llamadas
// concurrentes sin coordinación.
type Collection struct {
	name     string
	source   domain.DataSource
	schema   domain.Schema
	defaults domain.Defaults
	hooks    *domain.HookRegistry
	stats    domain.StatsRecorder
	log      *zap.Logger
}

// AttachOption configura una colección en el momento de adjuntarla.
type AttachOption func(*Collection)

func WithHooks(hooks *domain.HookRegistry) AttachOption {
	return func(c *Collection) { c.hooks = hooks }
}

func WithStats(stats domain.StatsRecorder) AttachOption {
	return func(c *Collection) { c.stats = stats }
}

func WithLogger(log *zap.Logger) AttachOption {
	return func(c *Collection) { c.log = log }
}

// Attach adjunta los defaults a una colección.
func Attach(name string, source domain.DataSource, schema domain.Schema, defaults domain.Defaults, opts ...AttachOption) *Collection {
	c := &Collection{
		name:     name,
		source:   source,
		schema:   schema,
		defaults: defaults,
		hooks:    domain.NewHookRegistry(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collection) Name() string { return c.name }

// Paginate resuelve las opciones, cuenta y, si hay coincidencias, busca la
// página. Cualquier error corta la cadena: no hay resultados parciales.
func (c *Collection) Paginate(ctx context.Context, criteria domain.CriteriaValue, opts domain.Options) (*PageResult, error) {
	start := time.Now()

	merged, err := domain.Merge(opts, c.defaults, c.hooks)
	if err != nil {
		c.log.Warn("Invalid paginate options", zap.String("collection", c.name), zap.Error(err))
		return nil, err
	}

	resolved, err := merged.Resolve(ctx, criteria, c.schema)
	if err != nil {
		c.log.Warn("Failed to resolve paginate options", zap.String("collection", c.name), zap.Error(err))
		return nil, err
	}

	c.log.Debug("Paginate query resolved",
		zap.String("collection", c.name),
		zap.Any("criteria", resolved.Criteria),
		zap.Any("sort", resolved.Sort),
		zap.Int("limit", resolved.Limit),
		zap.Int("page", resolved.Page),
		zap.Int64("skip", resolved.Skip),
	)

	// 1. Count
	total, err := c.source.Count(ctx, resolved.Criteria)
	if err != nil {
		c.log.Error("Failed to count documents", zap.String("collection", c.name), zap.Error(err))
		return nil, &domain.StoreError{Op: "count", Err: err}
	}

	// 2. Sin coincidencias no se consulta la página
	if total == 0 {
		res := &PageResult{Total: 0, Limit: int64(resolved.Limit), Page: resolved.Page, Data: []domain.Document{}}
		c.record(ctx, res, start)
		return res, nil
	}

	// 3. Find
	docs, err := c.source.Find(ctx, findQuery(resolved))
	if err != nil {
		c.log.Error("Failed to find documents", zap.String("collection", c.name), zap.Error(err))
		return nil, &domain.StoreError{Op: "find", Err: err}
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	res := &PageResult{
		Total: total,
		Limit: domain.ReportedLimit(resolved.RequestedLimit, resolved.Limit, total),
		Page:  resolved.Page,
		Data:  docs,
	}
	c.record(ctx, res, start)
	return res, nil
}

func findQuery(r domain.ResolvedOptions) domain.FindQuery {
	q := domain.FindQuery{
		Filter:     r.Criteria,
		Projection: r.Select,
		Populate:   r.Populate,
		Lean:       r.Lean,
		Pagination: sharedQuery.OffsetPagination{Offset: r.Skip},
	}
	if len(r.Sort) > 0 {
		q.Sort = r.Sort
	}
	if r.Limit > 0 {
		q.Pagination.Limit = int64(r.Limit)
	}
	return q
}

func (c *Collection) record(ctx context.Context, res *PageResult, start time.Time) {
	if c.stats == nil {
		return
	}
	stats := domain.PageStats{
		QueryID:    uuid.New(),
		Collection: c.name,
		Total:      res.Total,
		Limit:      res.Limit,
		Page:       res.Page,
		Returned:   len(res.Data),
		Duration:   time.Since(start),
		At:         time.Now().UTC(),
	}
	if err := c.stats.Record(ctx, stats); err != nil {
		c.log.Warn("⚠️ Page stats not recorded",
			zap.String("collection", c.name),
			zap.String("query_id", stats.QueryID.String()),
			zap.Error(err),
		)
	}
}
