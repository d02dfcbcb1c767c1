// internal/slug/resolver_test.go
//
// Unit-tests for the Slug Resolver using sqlmock.
//
// Run: go test ./internal/slug -v

package slug

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

var slugCols = []string{
	"id", "site_id", "language", "slug", "entity_type", "entity_id",
	"is_primary", "is_active", "redirect_to", "created_at",
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestResolve_Direct(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+site_id`).
		WithArgs(uint64(1), "en", "hello-world").
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(5, 1, "en", "hello-world", "event", 42, true, true, nil, now))

	res, err := NewResolver(db).Resolve(context.Background(), 1, "en", "hello-world")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if res.EntityType != EntityEvent || res.EntityID != 42 ||
		res.CanonicalSlug != "hello-world" || res.Redirected {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_RedirectHop(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+site_id`).
		WithArgs(uint64(1), "en", "old-title").
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(5, 1, "en", "old-title", "event", 42, false, true, 9, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+id`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(9, 1, "en", "new-title", "event", 42, true, true, nil, now))

	res, err := NewResolver(db).Resolve(context.Background(), 1, "en", "old-title")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !res.Redirected || res.CanonicalSlug != "new-title" || res.EntityID != 42 {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestResolve_Missing(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+site_id`).
		WithArgs(uint64(1), "en", "ghost").
		WillReturnRows(sqlmock.NewRows(slugCols))

	_, err := NewResolver(db).Resolve(context.Background(), 1, "en", "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_DeactivatedTarget(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	// The source row is active, but the record it redirects to was
	// deactivated.  That is a broken redirect, not a fallback case.
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+site_id`).
		WithArgs(uint64(1), "en", "old-title").
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(5, 1, "en", "old-title", "event", 42, false, true, 9, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+id`).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(9, 1, "en", "new-title", "event", 42, true, false, nil, now))

	_, err := NewResolver(db).Resolve(context.Background(), 1, "en", "old-title")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_RefusesSecondHop(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	// Target itself redirects: a chain longer than one hop is corrupt data.
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+site_id`).
		WithArgs(uint64(1), "en", "oldest").
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(3, 1, "en", "oldest", "event", 42, false, true, 5, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+id`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(5, 1, "en", "old", "event", 42, false, true, 9, now))

	_, err := NewResolver(db).Resolve(context.Background(), 1, "en", "oldest")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
