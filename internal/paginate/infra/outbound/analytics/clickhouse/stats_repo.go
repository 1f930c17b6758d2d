package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/davicafu/hexapaginate/internal/paginate/domain"
)

// StatsRepo guarda una fila por página servida en ClickHouse.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(addr string, dbName string) (*StatsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &StatsRepo{db: conn}, nil
}

func (r *StatsRepo) Record(ctx context.Context, s domain.PageStats) error {
	// ClickHouse inserta por lotes: incluso una fila va en transacción.
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO page_stats (query_id, collection, total, page_limit, page, returned, duration_ms, event_time)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx,
		s.QueryID,
		s.Collection,
		s.Total,
		s.Limit,
		int32(s.Page),
		int32(s.Returned),
		float64(s.Duration)/float64(time.Millisecond),
		s.At,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert page stats %s: %w", s.QueryID, err)
	}

	return tx.Commit()
}

// UsageSince agrega las páginas servidas por colección desde since.
func (r *StatsRepo) UsageSince(ctx context.Context, since time.Time) ([]domain.CollectionUsage, error) {
	query := `
		SELECT collection, count() AS pages, avg(duration_ms) AS avg_ms
		FROM page_stats
		WHERE event_time >= ?
		GROUP BY collection
		ORDER BY pages DESC
	`
	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CollectionUsage
	for rows.Next() {
		var u domain.CollectionUsage
		if err := rows.Scan(&u.Collection, &u.Pages, &u.AvgDurationMs); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// InitSchema crea la tabla si no existe, particionada por mes.
func (r *StatsRepo) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS page_stats (
			query_id    UUID,
			collection  String,
			total       Int64,
			page_limit  Int64,
			page        Int32,
			returned    Int32,
			duration_ms Float64,
			event_time  DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (collection, event_time);
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *StatsRepo) Close() error { return r.db.Close() }

var (
	_ domain.StatsRecorder = (*StatsRepo)(nil)
	_ domain.UsageReader   = (*StatsRepo)(nil)
)
