// internal/slug/sweep_test.go
//
// Unit-tests for the integrity sweep using sqlmock.

package slug

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSweep_DemotesDuplicatePrimaries(t *testing.T) {
	db, mock := newMockDB(t)
	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	// Entity 42 has two primaries (drift); entity 43 is healthy.  Rows
	// arrive grouped, newest first, matching the query's ORDER BY.
	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+is_primary = TRUE`).
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(9, 1, "en", "jazz-night", "event", 42, true, true, nil, newer).
			AddRow(5, 1, "en", "jazz-evening", "event", 42, true, true, nil, older).
			AddRow(6, 1, "en", "wine-fair", "event", 43, true, true, nil, older))
	// Only the older duplicate is demoted, and only is_primary changes.
	mock.ExpectExec(`(?s)UPDATE entity_slug\s+SET\s+is_primary = FALSE\s+WHERE\s+id`).
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := NewSweeper(db).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.GroupsScanned != 2 {
		t.Fatalf("GroupsScanned = %d, want 2", report.GroupsScanned)
	}
	if len(report.Corrections) != 1 {
		t.Fatalf("Corrections = %d, want 1", len(report.Corrections))
	}
	c := report.Corrections[0]
	if c.Kept != "jazz-night" || len(c.Demoted) != 1 || c.Demoted[0] != "jazz-evening" {
		t.Fatalf("unexpected correction: %+v", c)
	}
	if c.EntityID != 42 || c.EntityType != EntityEvent {
		t.Fatalf("correction names wrong entity: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSweep_CleanStoreReportsNothing(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+is_primary = TRUE`).
		WillReturnRows(sqlmock.NewRows(slugCols).
			AddRow(9, 1, "en", "jazz-night", "event", 42, true, true, nil, now))

	report, err := NewSweeper(db).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.GroupsScanned != 1 || len(report.Corrections) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSweep_ScopedToSite(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`(?s)SELECT .+ FROM\s+entity_slug\s+WHERE\s+is_primary = TRUE.+site_id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(slugCols))

	report, err := NewSweeper(db).Run(context.Background(), &Scope{SiteID: 7})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.GroupsScanned != 0 {
		t.Fatalf("GroupsScanned = %d, want 0", report.GroupsScanned)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
