package store

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"imgclassd/pkg/types"
)

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "images.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteConcurrentAppends(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "images.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	exerciseConcurrentAppends(t, s)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.db")
	ctx := context.Background()
	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Append(ctx, types.PredictionResult{Filename: "x.jpg", Label: "dog", Confidence: 0.9}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = s.Close()

	s, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 1 || recs[0].Prediction != "dog" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestPostgresDialect(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS images")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO images (filename, prediction, confidence) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs("a.png", "cat", 0.8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(listQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "prediction", "confidence"}).
			AddRow(int64(7), "a.png", "cat", 0.8))

	ctx := context.Background()
	s, err := NewSQL(ctx, db, Postgres)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	p, err := s.Append(ctx, types.PredictionResult{Filename: "a.png", Label: "cat", Confidence: 0.8})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if p.ID != 7 || p.Prediction != "cat" {
		t.Fatalf("unexpected %+v", p)
	}
	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0] != p {
		t.Fatalf("unexpected %+v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSQLInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("INSERT INTO images").WillReturnError(errors.New("connection reset"))

	s, err := NewSQL(context.Background(), db, Postgres)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := s.Append(context.Background(), types.PredictionResult{Filename: "a", Label: "b"}); err == nil {
		t.Fatalf("expected insert error")
	}
}

func TestSQLSchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	if _, err := NewSQL(context.Background(), db, SQLite); err == nil {
		t.Fatalf("expected schema error")
	}
}
