package mocks

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// SpyDataSource registra cada llamada y delega en Next si existe. Sin Next,
// Count devuelve Total y Find devuelve Docs.
type SpyDataSource struct {
	Next  domain.DataSource
	Total int64
	Docs  []domain.Document

	CountErr error
	FindErr  error

	mu      sync.Mutex
	counts  []bson.M
	queries []domain.FindQuery
}

var _ domain.DataSource = (*SpyDataSource)(nil)

func (s *SpyDataSource) Count(ctx context.Context, filter bson.M) (int64, error) {
	s.mu.Lock()
	s.counts = append(s.counts, filter)
	s.mu.Unlock()

	if s.CountErr != nil {
		return 0, s.CountErr
	}
	if s.Next != nil {
		return s.Next.Count(ctx, filter)
	}
	return s.Total, nil
}

func (s *SpyDataSource) Find(ctx context.Context, q domain.FindQuery) ([]domain.Document, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if s.FindErr != nil {
		return nil, s.FindErr
	}
	if s.Next != nil {
		return s.Next.Find(ctx, q)
	}
	return s.Docs, nil
}

func (s *SpyDataSource) CountCalls() []bson.M {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bson.M(nil), s.counts...)
}

func (s *SpyDataSource) FindCalls() []domain.FindQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.FindQuery(nil), s.queries...)
}

// StatsSpy guarda las estadísticas recibidas.
type StatsSpy struct {
	Err error

	mu      sync.Mutex
	records []domain.PageStats
}

func (s *StatsSpy) Record(_ context.Context, stats domain.PageStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, stats)
	return s.Err
}

func (s *StatsSpy) Records() []domain.PageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PageStats(nil), s.records...)
}
