package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"DailyEdition/internal/domain"
	"DailyEdition/internal/ports"
)

const defaultTable = "section_documents"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists section documents as JSONB rows keyed by path.
type PostgresStore struct {
	db    *sql.DB
	table string
}

var _ ports.DocumentStore = (*PostgresStore)(nil)

// OpenPostgres opens a lib/pq connection pool and verifies it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	if table == "" {
		table = defaultTable
	}
	return &PostgresStore{db: db, table: table}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL(s.table)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert replaces the whole document; last_updated is set by the database clock.
func (s *PostgresStore) Upsert(ctx context.Context, path domain.DocumentPath, doc map[string]any) error {
	payload, err := json.Marshal(withoutTimestamp(doc))
	if err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: fmt.Errorf("marshal payload: %w", err)}
	}

	query, args, err := upsertQuery(s.table, path, payload)
	if err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: err}
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StoreError{Path: path, Op: "upsert", Err: err}
	}
	return nil
}

// Get loads a document; a missing row yields domain.ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, path domain.DocumentPath) (domain.SectionDocument, error) {
	query, args, err := selectQuery(s.table, path)
	if err != nil {
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: err}
	}

	var (
		raw     []byte
		updated time.Time
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&raw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SectionDocument{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: err}
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.SectionDocument{}, &domain.StoreError{Path: path, Op: "get", Err: fmt.Errorf("decode payload: %w", err)}
	}
	payload[lastUpdatedField] = updated
	return domain.SectionDocument{Path: path, LastUpdated: updated, Payload: payload}, nil
}

func upsertQuery(table string, path domain.DocumentPath, payload []byte) (string, []interface{}, error) {
	return psql.Insert(pq.QuoteIdentifier(table)).
		Columns("path", "payload", "last_updated").
		Values(path.String(), string(payload), sq.Expr("NOW()")).
		Suffix("ON CONFLICT (path) DO UPDATE SET payload = EXCLUDED.payload, last_updated = NOW()").
		ToSql()
}

func selectQuery(table string, path domain.DocumentPath) (string, []interface{}, error) {
	return psql.Select("payload", "last_updated").
		From(pq.QuoteIdentifier(table)).
		Where(sq.Eq{"path": path.String()}).
		ToSql()
}

func schemaDDL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    path         TEXT PRIMARY KEY,
    payload      JSONB NOT NULL,
    last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, pq.QuoteIdentifier(table))
}
