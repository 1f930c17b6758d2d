// Package cache guarda en caché los totales de Count, que es la consulta más
// cara de cada página.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
	"github.com/davicafu/hexapaginate/internal/paginate/infra/outbound/db/docutil"
	sharedCache "github.com/davicafu/hexapaginate/internal/shared/infra/platform/cache"
)

// CachedDataSource envuelve un DataSource y cachea sus Count. Find siempre va
// al almacén.
type CachedDataSource struct {
	next       domain.DataSource
	cache      sharedCache.Cache
	collection string
	ttlSecs    int
	log        *zap.Logger
}

var _ domain.DataSource = (*CachedDataSource)(nil)

func NewCachedDataSource(next domain.DataSource, cache sharedCache.Cache, collection string, ttlSecs int, log *zap.Logger) *CachedDataSource {
	return &CachedDataSource{next: next, cache: cache, collection: collection, ttlSecs: ttlSecs, log: log}
}

func (c *CachedDataSource) Count(ctx context.Context, filter bson.M) (int64, error) {
	key, err := CountKey(c.collection, filter)
	if err != nil {
		c.log.Debug("Filter not cacheable", zap.String("collection", c.collection), zap.Error(err))
		return c.next.Count(ctx, filter)
	}

	var total int64
	if hit, err := c.cache.Get(ctx, key, &total); err != nil {
		c.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	} else if hit {
		return total, nil
	}

	total, err = c.next.Count(ctx, filter)
	if err != nil {
		return 0, err
	}
	sharedCache.SetBestEffort(ctx, c.cache, key, total, c.ttlSecs, c.log)
	return total, nil
}

func (c *CachedDataSource) Find(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	return c.next.Find(ctx, q)
}

// CountKey es estable para filtros iguales aunque sus mapas se recorran en
// distinto orden.
func CountKey(collection string, filter bson.M) (string, error) {
	raw, err := bson.MarshalExtJSON(canonical(filter), true, false)
	if err != nil {
		return "", fmt.Errorf("canonical filter: %w", err)
	}
	sum := sha256.Sum256(raw)
	return "paginate:count:" + collection + ":" + hex.EncodeToString(sum[:]), nil
}

func canonical(v any) any {
	if m, ok := docutil.AsMap(v); ok {
		if _, isD := v.(bson.D); isD {
			d := make(bson.D, 0, len(m))
			for _, e := range v.(bson.D) {
				d = append(d, bson.E{Key: e.Key, Value: canonical(e.Value)})
			}
			return d
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := make(bson.D, 0, len(keys))
		for _, k := range keys {
			d = append(d, bson.E{Key: k, Value: canonical(m[k])})
		}
		return d
	}
	if items, ok := docutil.AsSlice(v); ok {
		a := make(bson.A, len(items))
		for i, it := range items {
			a[i] = canonical(it)
		}
		return a
	}
	return v
}
