package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"hackermove/models"
	"hackermove/utils"
)

const (
	insertBatchSize = 50
	listingColumns  = 13
)

// PostgresWriter persists dataset rows to PostgreSQL, keyed by listing id.
type PostgresWriter struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresWriter opens a connection to PostgreSQL, waits for it to accept
// connections, runs schema migrations, and returns a ready-to-use writer.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := utils.RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw, err := NewPostgresWriterFromDB(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return pw, nil
}

// NewPostgresWriterFromDB wraps an open handle and runs migrations.
func NewPostgresWriterFromDB(ctx context.Context, db *sql.DB, logger *utils.Logger) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db, logger: logger}
	if err := pw.migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			listing_id    TEXT PRIMARY KEY,
			address       TEXT          NOT NULL,
			bedrooms      INTEGER,
			bathrooms     INTEGER,
			price         NUMERIC(14,2) NOT NULL,
			size_text     TEXT,
			size          DOUBLE PRECISION,
			value         BIGINT,
			url           TEXT          NOT NULL,
			listed_at     TIMESTAMPTZ   NOT NULL,
			property_type TEXT          NOT NULL DEFAULT '',
			tenure        VARCHAR(16)   NOT NULL DEFAULT 'Unknown',
			summary       TEXT          NOT NULL DEFAULT '',
			updated_at    TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_listings_listed_at ON listings(listed_at DESC);
		CREATE INDEX IF NOT EXISTS idx_listings_price     ON listings(price);
		CREATE INDEX IF NOT EXISTS idx_listings_value     ON listings(value);
	`)
	return err
}

// Write upserts every row of ds in batches. A listing seen again replaces
// the stored copy.
func (pw *PostgresWriter) Write(ctx context.Context, ds *models.Dataset) error {
	rows := ds.Rows()
	if len(rows) == 0 {
		return nil
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := min(i+insertBatchSize, len(rows))
		if err := pw.upsertBatch(ctx, rows[i:end]); err != nil {
			return fmt.Errorf("postgres: upsert: %w", err)
		}
	}
	pw.logger.Info("[postgres] Upserted %d listings", len(rows))
	return nil
}

func (pw *PostgresWriter) upsertBatch(ctx context.Context, batch []models.Row) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*listingColumns)

	for idx, r := range batch {
		placeholders := make([]string, listingColumns)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*listingColumns+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			r.ID, r.Address, r.Bedrooms, r.Bathrooms, r.Price, r.SizeText,
			r.Size, r.Value, r.URL, r.ListedAt, r.PropertyType, string(r.Tenure), r.Summary)
	}

	query := fmt.Sprintf(`
		INSERT INTO listings (listing_id, address, bedrooms, bathrooms, price, size_text,
			size, value, url, listed_at, property_type, tenure, summary)
		VALUES %s
		ON CONFLICT (listing_id) DO UPDATE SET
			address = EXCLUDED.address,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			price = EXCLUDED.price,
			size_text = EXCLUDED.size_text,
			size = EXCLUDED.size,
			value = EXCLUDED.value,
			url = EXCLUDED.url,
			listed_at = EXCLUDED.listed_at,
			property_type = EXCLUDED.property_type,
			tenure = EXCLUDED.tenure,
			summary = EXCLUDED.summary,
			updated_at = NOW()
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.ExecContext(ctx, query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll reads back every stored listing, newest first.
func (pw *PostgresWriter) FetchAll(ctx context.Context) (*models.Dataset, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT listing_id, address, bedrooms, bathrooms, price, size_text,
			size, value, url, listed_at, property_type, tenure, summary
		FROM listings
		ORDER BY listed_at DESC, listing_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var out []models.Row
	for rows.Next() {
		var (
			r                   models.Row
			bedrooms, bathrooms sql.NullInt64
			sizeText            sql.NullString
			size                sql.NullFloat64
			value               sql.NullInt64
			tenure              string
		)
		if err := rows.Scan(
			&r.ID, &r.Address, &bedrooms, &bathrooms, &r.Price, &sizeText,
			&size, &value, &r.URL, &r.ListedAt, &r.PropertyType, &tenure, &r.Summary,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.Tenure = models.Tenure(tenure)
		if bedrooms.Valid {
			n := int(bedrooms.Int64)
			r.Bedrooms = &n
		}
		if bathrooms.Valid {
			n := int(bathrooms.Int64)
			r.Bathrooms = &n
		}
		if sizeText.Valid {
			r.SizeText = &sizeText.String
		}
		if size.Valid {
			r.Size = &size.Float64
		}
		if value.Valid {
			r.Value = &value.Int64
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate rows: %w", err)
	}
	return models.NewDataset(out), nil
}
