package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"imgclassd/internal/common/fsutil"
	"imgclassd/pkg/types"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name      string
	schema    string
	insert    string
	returning bool // insert yields the id via RETURNING instead of LastInsertId
}

var (
	// SQLite matches the original images table layout.
	SQLite = Dialect{
		Name: "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS images (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filename VARCHAR(255) NOT NULL,
	prediction VARCHAR(100) NOT NULL,
	confidence REAL NOT NULL
)`,
		insert: `INSERT INTO images (filename, prediction, confidence) VALUES (?, ?, ?)`,
	}
	// Postgres uses a BIGSERIAL id.
	Postgres = Dialect{
		Name: "postgres",
		schema: `CREATE TABLE IF NOT EXISTS images (
	id BIGSERIAL PRIMARY KEY,
	filename VARCHAR(255) NOT NULL,
	prediction VARCHAR(100) NOT NULL,
	confidence DOUBLE PRECISION NOT NULL
)`,
		insert:    `INSERT INTO images (filename, prediction, confidence) VALUES ($1, $2, $3) RETURNING id`,
		returning: true,
	}
)

const listQuery = `SELECT id, filename, prediction, confidence FROM images ORDER BY id`

// SQLStore keeps records in the images table of a SQL database.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps an open database and creates the images table if needed.
func NewSQL(ctx context.Context, db *sql.DB, d Dialect) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		return nil, fmt.Errorf("%s: create table: %w", d.Name, err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

// OpenSQLite opens (creating if needed) a SQLite database file.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	s, err := NewSQL(ctx, db, SQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres connects with lib/pq and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	s, err := NewSQL(ctx, db, Postgres)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Append(ctx context.Context, r types.PredictionResult) (types.Prediction, error) {
	p := types.Prediction{Filename: r.Filename, Prediction: r.Label, Confidence: r.Confidence}
	if s.dialect.returning {
		if err := s.db.QueryRowContext(ctx, s.dialect.insert, r.Filename, r.Label, r.Confidence).Scan(&p.ID); err != nil {
			return types.Prediction{}, fmt.Errorf("%s: insert: %w", s.dialect.Name, err)
		}
		return p, nil
	}
	res, err := s.db.ExecContext(ctx, s.dialect.insert, r.Filename, r.Label, r.Confidence)
	if err != nil {
		return types.Prediction{}, fmt.Errorf("%s: insert: %w", s.dialect.Name, err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return types.Prediction{}, fmt.Errorf("%s: last insert id: %w", s.dialect.Name, err)
	}
	return p, nil
}

func (s *SQLStore) List(ctx context.Context) ([]types.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("%s: list: %w", s.dialect.Name, err)
	}
	defer rows.Close()
	out := []types.Prediction{}
	for rows.Next() {
		var p types.Prediction
		if err := rows.Scan(&p.ID, &p.Filename, &p.Prediction, &p.Confidence); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", s.dialect.Name, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", s.dialect.Name, err)
	}
	return out, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }
