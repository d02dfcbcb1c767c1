// internal/slug/repository.go
//
// Query helpers for the `entity_slug` table.
//
// The helpers accept sqlx.ExtContext so the writer can run them inside a
// transaction and the resolver against the shared pool.  Row absence
// surfaces as sql.ErrNoRows; callers translate.

package slug

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const slugColumns = `id, site_id, language, slug, entity_type, entity_id,
               is_primary, is_active, redirect_to, created_at`

// bySlug fetches the active row for (siteID, language, slug), whoever owns
// it.  The unique index guarantees at most one.
func bySlug(ctx context.Context, q sqlx.QueryerContext, siteID uint64, language, s string) (*Record, error) {
	const query = `
        SELECT ` + slugColumns + `
        FROM   entity_slug
        WHERE  site_id   = ?
          AND  language  = ?
          AND  slug      = ?
          AND  is_active = TRUE
        LIMIT  1`
	var rec Record
	if err := sqlx.GetContext(ctx, q, &rec, query, siteID, language, s); err != nil {
		return nil, err
	}
	return &rec, nil
}

// byID fetches one row by primary key regardless of flags; redirect
// dereferencing inspects the flags itself.
func byID(ctx context.Context, q sqlx.QueryerContext, id uint64) (*Record, error) {
	const query = `
        SELECT ` + slugColumns + `
        FROM   entity_slug
        WHERE  id = ?
        LIMIT  1`
	var rec Record
	if err := sqlx.GetContext(ctx, q, &rec, query, id); err != nil {
		return nil, err
	}
	return &rec, nil
}

// primaryFor fetches the active primary row of one entity in one language.
func primaryFor(ctx context.Context, q sqlx.QueryerContext, siteID uint64, language string, et EntityType, entityID uint64) (*Record, error) {
	const query = `
        SELECT ` + slugColumns + `
        FROM   entity_slug
        WHERE  entity_type = ?
          AND  entity_id   = ?
          AND  site_id     = ?
          AND  language    = ?
          AND  is_primary  = TRUE
          AND  is_active   = TRUE
        ORDER  BY created_at DESC, id DESC
        LIMIT  1`
	var rec Record
	if err := sqlx.GetContext(ctx, q, &rec, query, et, entityID, siteID, language); err != nil {
		return nil, err
	}
	return &rec, nil
}

// insert creates one new row and returns its id.  Duplicate-key failures
// pass through for the writer's conflict handling; see isDuplicate.
func insert(ctx context.Context, q sqlx.ExtContext, rec *Record) (uint64, error) {
	const query = `
        INSERT INTO entity_slug
               (site_id, language, slug, entity_type, entity_id,
                is_primary, is_active, created_at)
        VALUES (?, ?, ?, ?, ?, ?, TRUE, NOW())`
	res, err := q.ExecContext(ctx, query,
		rec.SiteID, rec.Language, rec.Slug, rec.EntityType, rec.EntityID, rec.IsPrimary)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// demoteOthers flips is_primary off on every row of the entity+language
// group except keepID.  Pass keepID = 0 to demote the whole group.
func demoteOthers(ctx context.Context, q sqlx.ExtContext, siteID uint64, language string, et EntityType, entityID, keepID uint64) error {
	const query = `
        UPDATE entity_slug
        SET    is_primary = FALSE
        WHERE  entity_type = ?
          AND  entity_id   = ?
          AND  site_id     = ?
          AND  language    = ?
          AND  id         <> ?`
	_, err := q.ExecContext(ctx, query, et, entityID, siteID, language, keepID)
	return err
}

// redirect demotes row id and points it at targetID.  The row stays active
// so old links keep resolving.
func redirect(ctx context.Context, q sqlx.ExtContext, id, targetID uint64) error {
	const query = `
        UPDATE entity_slug
        SET    is_primary = FALSE, redirect_to = ?
        WHERE  id = ?`
	_, err := q.ExecContext(ctx, query, targetID, id)
	return err
}

// repoint retargets every row that redirects at oldID onto newID, keeping
// chains at exactly one hop after a second rename.
func repoint(ctx context.Context, q sqlx.ExtContext, oldID, newID uint64) error {
	const query = `
        UPDATE entity_slug
        SET    redirect_to = ?
        WHERE  redirect_to = ?`
	_, err := q.ExecContext(ctx, query, newID, oldID)
	return err
}

// restorePrimary re-asserts a row as the canonical slug: primary, active,
// and not redirecting.  Used for idempotent repair on no-op updates and for
// reviving a previously demoted row the entity renamed back to.
func restorePrimary(ctx context.Context, q sqlx.ExtContext, id uint64) error {
	const query = `
        UPDATE entity_slug
        SET    is_primary = TRUE, is_active = TRUE, redirect_to = NULL
        WHERE  id = ?`
	_, err := q.ExecContext(ctx, query, id)
	return err
}

// isDuplicate reports whether err is a MySQL unique-index violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
