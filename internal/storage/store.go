package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"pvpcwatch/internal/tariff"
)

// schemaVersion is bumped on any change to the price table layout. The
// store is a cache of remote truth, so a version mismatch discards the
// table and starts over instead of migrating data.
const schemaVersion = 1

const (
	createPriceTableSQL = `CREATE TABLE IF NOT EXISTS price (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        date TEXT NOT NULL,
        price_general TEXT NOT NULL,
        avg_general TEXT NOT NULL,
        increase_general TEXT NOT NULL,
        price_night TEXT NOT NULL,
        avg_night TEXT NOT NULL,
        increase_night TEXT NOT NULL,
        price_vehicle TEXT NOT NULL,
        avg_vehicle TEXT NOT NULL,
        increase_vehicle TEXT NOT NULL,
        UNIQUE (date) ON CONFLICT REPLACE);`

	dropPriceTableSQL = `DROP TABLE IF EXISTS price;`

	insertPriceSQL = `INSERT INTO price (
        date,
        price_general, avg_general, increase_general,
        price_night, avg_night, increase_night,
        price_vehicle, avg_vehicle, increase_vehicle
    ) VALUES (?,?,?,?,?,?,?,?,?,?);`

	countPricesSQL = `SELECT COUNT(*) FROM price;`
)

// PriceRow is one stored hour slot projected to a single fare class.
type PriceRow struct {
	ID       int64
	DateUTC  string
	Price    decimal.Decimal
	Avg      decimal.Decimal
	Increase decimal.Decimal
}

// BatchWriter is the write-side slice of the store used by ingestion.
type BatchWriter interface {
	UpsertBatch(ctx context.Context, records []tariff.PriceRecord) (int64, error)
}

// PriceStore defines the persistence operations the rest of the system
// relies on.
type PriceStore interface {
	BatchWriter
	Query(ctx context.Context, filter Filter, fare tariff.Fare, ascending bool) ([]PriceRow, error)
	Count(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
	Close() error
}

// Store persists price records in a local SQLite database.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger

	subMu sync.Mutex
	subs  []chan struct{}
}

// Open opens (or creates) the database at path and brings the schema to the
// current version.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("storage: database path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger.With().Str("component", "storage").Logger()}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow(`PRAGMA user_version;`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != 0 && version != schemaVersion {
		s.logger.Warn().Int("have", version).Int("want", schemaVersion).
			Msg("schema version changed; discarding cached prices")
		if _, err := s.db.Exec(dropPriceTableSQL); err != nil {
			return fmt.Errorf("drop price table: %w", err)
		}
	}

	if _, err := s.db.Exec(createPriceTableSQL); err != nil {
		return fmt.Errorf("create price table: %w", err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion)); err != nil {
		return fmt.Errorf("write schema version: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Subscribe registers a change listener. The returned channel receives a
// fire-and-forget signal after every upsert that committed at least one row;
// a listener that is not draining misses signals instead of blocking the
// writer.
func (s *Store) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// UpsertBatch writes all records in one transaction: either the whole batch
// commits or none of it does. A record whose date already exists replaces
// the stored row in full. Returns the number of rows affected.
func (s *Store) UpsertBatch(ctx context.Context, records []tariff.PriceRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertPriceSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare price insert: %w", err)
	}
	defer stmt.Close()

	var affected int64
	for _, record := range records {
		general := record.Fares[tariff.FareGeneral]
		night := record.Fares[tariff.FareNight]
		vehicle := record.Fares[tariff.FareVehicle]

		res, err := stmt.ExecContext(ctx,
			record.DateUTC,
			general.Price.String(), general.Avg.String(), general.Increase.String(),
			night.Price.String(), night.Avg.String(), night.Increase.String(),
			vehicle.Price.String(), vehicle.Avg.String(), vehicle.Increase.String(),
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert price %s: %w", record.DateUTC, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert transaction: %w", err)
	}

	if affected > 0 {
		s.notify()
	}
	return affected, nil
}

// Query returns the rows matching filter, projected to one fare class and
// ordered by date.
func (s *Store) Query(ctx context.Context, filter Filter, fare tariff.Fare, ascending bool) ([]PriceRow, error) {
	where, args, err := filter.whereClause()
	if err != nil {
		return nil, err
	}

	columns, err := fareColumns(fare)
	if err != nil {
		return nil, err
	}

	order := "DESC"
	if ascending {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT id, date, %s FROM price%s ORDER BY date %s;`, columns, where, order)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	out := make([]PriceRow, 0)
	for rows.Next() {
		row, err := scanPriceRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Count returns the number of stored hour slots.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, countPricesSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count prices: %w", err)
	}
	return count, nil
}

// Reset drops and recreates the price table, discarding all cached data.
// This is the store's only migration policy.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, dropPriceTableSQL); err != nil {
		return fmt.Errorf("drop price table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createPriceTableSQL); err != nil {
		return fmt.Errorf("recreate price table: %w", err)
	}
	return nil
}

func fareColumns(fare tariff.Fare) (string, error) {
	switch fare {
	case tariff.FareGeneral:
		return "price_general, avg_general, increase_general", nil
	case tariff.FareNight:
		return "price_night, avg_night, increase_night", nil
	case tariff.FareVehicle:
		return "price_vehicle, avg_vehicle, increase_vehicle", nil
	}
	return "", fmt.Errorf("storage: unknown fare %q", fare)
}

func scanPriceRow(rows *sql.Rows) (PriceRow, error) {
	var row PriceRow
	var priceStr, avgStr, increStr string
	if err := rows.Scan(&row.ID, &row.DateUTC, &priceStr, &avgStr, &increStr); err != nil {
		return PriceRow{}, err
	}

	var err error
	if row.Price, err = decimal.NewFromString(priceStr); err != nil {
		return PriceRow{}, fmt.Errorf("parse stored price: %w", err)
	}
	if row.Avg, err = decimal.NewFromString(avgStr); err != nil {
		return PriceRow{}, fmt.Errorf("parse stored avg: %w", err)
	}
	if row.Increase, err = decimal.NewFromString(increStr); err != nil {
		return PriceRow{}, fmt.Errorf("parse stored increase: %w", err)
	}
	return row, nil
}

var _ PriceStore = (*Store)(nil)
