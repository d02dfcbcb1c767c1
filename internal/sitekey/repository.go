// internal/sitekey/repository.go
//
// Query helpers for the `site_key` table.
//
// The helpers accept sqlx.ExtContext so they run against either the shared
// pool or an open transaction.  Row absence surfaces as sql.ErrNoRows; the
// resolver translates that into ErrNotFound.

package sitekey

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const keyColumns = `id, scope_id, language, public_key, site_id,
               is_active, redirect_to, created_at, updated_at`

// ByKey fetches the active key row for (language, publicKey).
func ByKey(ctx context.Context, q sqlx.QueryerContext, language, publicKey string) (*Record, error) {
	const query = `
        SELECT ` + keyColumns + `
        FROM   site_key
        WHERE  language   = ?
          AND  public_key = ?
          AND  is_active  = TRUE
        LIMIT  1`
	var rec Record
	if err := sqlx.GetContext(ctx, q, &rec, query, language, publicKey); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ByID fetches one row by primary key regardless of active state; redirect
// dereferencing checks the flags itself so it can tell “missing” from
// “present but dead”.
func ByID(ctx context.Context, q sqlx.QueryerContext, id uint64) (*Record, error) {
	const query = `
        SELECT ` + keyColumns + `
        FROM   site_key
        WHERE  id = ?
        LIMIT  1`
	var rec Record
	if err := sqlx.GetContext(ctx, q, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Rename provisions newKey for the site currently reachable through the row
// oldID, inside one transaction:
//
//  1. Insert the new active row (same scope, language, and site).
//  2. Point the old row, and any row already redirecting at it, to the new
//     id.  Repointing keeps every chain at exactly one hop.
//
// The old row stays active so bookmarked URLs resolve as redirects.  A
// duplicate-key failure on step 1 means another active key owns the name
// and maps to ErrConflict.
func Rename(ctx context.Context, db *sqlx.DB, oldID uint64, newKey string) (*Record, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	old, err := ByID(ctx, tx, oldID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	const insert = `
        INSERT INTO site_key
               (scope_id, language, public_key, site_id, is_active)
        VALUES (?, ?, ?, ?, TRUE)`
	res, err := tx.ExecContext(ctx, insert, old.ScopeID, old.Language, newKey, old.SiteID)
	if isDuplicate(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	const repoint = `
        UPDATE site_key
        SET    redirect_to = ?
        WHERE  id = ? OR redirect_to = ?`
	if _, err := tx.ExecContext(ctx, repoint, newID, oldID, oldID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return ByID(ctx, db, uint64(newID))
}

// isDuplicate reports whether err is a MySQL unique-index violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
