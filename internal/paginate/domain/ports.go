package domain

import (
	"context"
	"time"

	sharedQuery "github.com/davicafu/hexapaginate/internal/shared/infra/platform/query"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// FindQuery reúne todo lo que el almacén necesita para devolver una página.
type FindQuery struct {
	Filter     bson.M
	Projection bson.M
	Populate   []Populate
	Lean       bool
	Sort       bson.D                       // nil: orden natural del almacén
	Pagination sharedQuery.OffsetPagination // Limit 0: sin límite
}

// DataSource es el almacén de documentos. Sort y Limit ausentes significan
// "sin restricción", nunca "restricción cero".
type DataSource interface {
	Count(ctx context.Context, filter bson.M) (int64, error)
	Find(ctx context.Context, q FindQuery) ([]Document, error)
}

// ---------------- Estadísticas ----------------

// PageStats describe una página servida.
type PageStats struct {
	QueryID    uuid.UUID     `json:"queryId"`
	Collection string        `json:"collection"`
	Total      int64         `json:"total"`
	Limit      int64         `json:"limit"`
	Page       int           `json:"page"`
	Returned   int           `json:"returned"`
	Duration   time.Duration `json:"duration"`
	At         time.Time     `json:"at"`
}

// StatsRecorder recibe una entrada por página servida. Sus errores nunca hacen
// fallar la consulta.
type StatsRecorder interface {
	Record(ctx context.Context, stats PageStats) error
}

// CollectionUsage resume las páginas servidas de una colección.
type CollectionUsage struct {
	Collection    string  `json:"collection"`
	Pages         uint64  `json:"pages"`
	AvgDurationMs float64 `json:"avgDurationMs"`
}

// UsageReader consulta las estadísticas acumuladas.
type UsageReader interface {
	UsageSince(ctx context.Context, since time.Time) ([]CollectionUsage, error)
}
