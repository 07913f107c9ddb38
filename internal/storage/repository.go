package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/shevaserg83-collab/sheva-bot/internal/settings"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertAlertSQL = `INSERT INTO alerts (
        id,
        symbol,
        kind,
        price,
        baseline_price,
        percent_change,
        quote_volume,
        fired_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8
    );`

	listRecentAlertsSQL = `SELECT
        id,
        symbol,
        kind,
        price,
        baseline_price,
        percent_change,
        quote_volume,
        fired_at,
        created_at
    FROM alerts
    ORDER BY fired_at DESC
    LIMIT $1;`

	insertQuoteSampleSQL = `INSERT INTO quote_samples (
        symbol,
        price,
        quote_volume,
        sampled_at
    ) VALUES (
        $1,$2,$3,$4
    )
    ON CONFLICT (symbol, sampled_at) DO UPDATE
    SET price        = EXCLUDED.price,
        quote_volume = EXCLUDED.quote_volume;`

	listSamplesBetweenSQL = `SELECT
        symbol,
        price,
        quote_volume,
        sampled_at,
        created_at
    FROM quote_samples
    WHERE symbol = $1
      AND sampled_at >= $2
      AND sampled_at < $3
    ORDER BY sampled_at;`

	deleteSamplesBeforeSQL = `DELETE FROM quote_samples WHERE sampled_at < $1;`
)

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) error
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
}

// SampleStore defines operations for quote sample persistence.
type SampleStore interface {
	InsertQuoteSample(ctx context.Context, sample QuoteSample) error
	ListSamplesBetween(ctx context.Context, symbol string, from, to time.Time) ([]QuoteSample, error)
	DeleteSamplesBefore(ctx context.Context, olderThan time.Time) error
}

// Store aggregates access to alerts and quote samples.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertAlertSQL,
		alert.ID,
		alert.Symbol,
		string(alert.Kind),
		alert.Price.String(),
		alert.BaselinePrice.String(),
		alert.PercentChange.String(),
		alert.QuoteVolume.String(),
		alert.FiredAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert alert: %w", execErr)
	}
	return nil
}

// ListRecentAlerts lists most recent alerts ordered by descending fire time.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		rec, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// InsertQuoteSample persists one per-cycle observation.
func (s *Store) InsertQuoteSample(ctx context.Context, sample QuoteSample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertQuoteSampleSQL,
		sample.Symbol,
		sample.Price.String(),
		sample.QuoteVolume.String(),
		sample.SampledAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert quote sample: %w", execErr)
	}
	return nil
}

// ListSamplesBetween lists samples for one symbol within a time window.
func (s *Store) ListSamplesBetween(ctx context.Context, symbol string, from, to time.Time) ([]QuoteSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, symbol, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]QuoteSample, 0)
	for rows.Next() {
		sample, scanErr := scanQuoteSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// DeleteSamplesBefore deletes historical samples.
func (s *Store) DeleteSamplesBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteSamplesBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete samples before: %w", execErr)
	}
	return nil
}

func scanAlert(rows pgx.Rows) (AlertRecord, error) {
	var (
		rec         AlertRecord
		kind        string
		priceStr    string
		baselineStr string
		pctStr      string
		volumeStr   string
	)

	if err := rows.Scan(
		&rec.ID,
		&rec.Symbol,
		&kind,
		&priceStr,
		&baselineStr,
		&pctStr,
		&volumeStr,
		&rec.FiredAt,
		&rec.CreatedAt,
	); err != nil {
		return AlertRecord{}, err
	}

	rec.Kind = settings.RuleKind(kind)

	var err error
	if rec.Price, err = decimal.NewFromString(priceStr); err != nil {
		return AlertRecord{}, fmt.Errorf("parse price: %w", err)
	}
	if rec.BaselinePrice, err = decimal.NewFromString(baselineStr); err != nil {
		return AlertRecord{}, fmt.Errorf("parse baseline price: %w", err)
	}
	if rec.PercentChange, err = decimal.NewFromString(pctStr); err != nil {
		return AlertRecord{}, fmt.Errorf("parse percent change: %w", err)
	}
	if rec.QuoteVolume, err = decimal.NewFromString(volumeStr); err != nil {
		return AlertRecord{}, fmt.Errorf("parse quote volume: %w", err)
	}

	return rec, nil
}

func scanQuoteSample(rows pgx.Rows) (QuoteSample, error) {
	var (
		sample    QuoteSample
		priceStr  string
		volumeStr string
	)

	if err := rows.Scan(
		&sample.Symbol,
		&priceStr,
		&volumeStr,
		&sample.SampledAt,
		&sample.CreatedAt,
	); err != nil {
		return QuoteSample{}, err
	}

	var err error
	if sample.Price, err = decimal.NewFromString(priceStr); err != nil {
		return QuoteSample{}, fmt.Errorf("parse price: %w", err)
	}
	if sample.QuoteVolume, err = decimal.NewFromString(volumeStr); err != nil {
		return QuoteSample{}, fmt.Errorf("parse quote volume: %w", err)
	}

	return sample, nil
}

var (
	_ AlertStore  = (*Store)(nil)
	_ SampleStore = (*Store)(nil)
)
