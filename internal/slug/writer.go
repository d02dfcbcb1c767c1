// internal/slug/writer.go
//
// Slug Writer: creates and maintains slug records when entity titles change.
//
// Context
// -------
// Entity services call Create after first persisting an entity and Update
// on every title change; they never touch `entity_slug` directly.  The
// writer computes candidates through slugify, resolves cross-entity
// collisions per the chosen conflict mode, and keeps the single-primary
// bookkeeping: a rename demotes the old primary into a one-hop redirect
// instead of deleting it.
//
// Concurrency
// -----------
// The conflict check and the insert are separate statements, so two
// writers can race past the check with the same candidate.  The unique
// index on (site_id, language, slug) is the real arbiter: the insert is
// prepared to fail with a duplicate-key error, which maps to ErrConflict
// in reject mode and to the next suffix in auto-suffix mode.  Create and
// Update both run each language inside one transaction to keep the window
// of a violated single-primary invariant small; the integrity sweep
// repairs whatever slips through.

package slug

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/veresdaniel/hellolocal/internal/metrics"
	"github.com/veresdaniel/hellolocal/internal/slugify"
)

// Writer maintains slug records for entities.  Safe for concurrent use.
type Writer struct {
	db *sqlx.DB
}

// NewWriter binds a writer to a pool.
func NewWriter(db *sqlx.DB) *Writer {
	return &Writer{db: db}
}

// Create computes and inserts one primary slug per language.  Collisions
// with other entities are auto-suffixed or rejected per mode.  Re-creating
// a slug the entity already owns is a no-op repair, not a conflict.  Each
// language runs in its own transaction.
func (w *Writer) Create(ctx context.Context, siteID uint64, et EntityType, entityID uint64, titles []LocalizedTitle, mode string) error {
	for _, lt := range titles {
		base, err := baseCandidate(et, entityID, lt)
		if err != nil {
			return err
		}
		if err := w.createOne(ctx, siteID, et, entityID, lt.Language, base, mode); err != nil {
			return err
		}
	}
	return nil
}

// createOne places the candidate and demotes any other primary the entity
// holds in the language.  The demote matters on the repair path: placing a
// slug the entity already owns as a demoted row revives that row, and an
// unrelated primary from an earlier save must not survive next to it.
func (w *Writer) createOne(ctx context.Context, siteID uint64, et EntityType, entityID uint64, language, base, mode string) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, _, err := w.place(ctx, tx, siteID, et, entityID, language, base, mode)
	if err != nil {
		return err
	}
	if err := demoteOthers(ctx, tx, siteID, language, et, entityID, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Update recomputes slugs after a title change.  Per language:
//
//   - no existing primary        → behaves like Create,
//   - candidate == current slug  → idempotent repair of the primary flags,
//   - candidate is an old slug the entity still owns → revive that row and
//     flip the current primary into a redirect at it,
//   - fresh candidate            → insert the new primary, then demote the
//     old one to a redirect (kept active, so old links resolve).
//
// Each language runs in its own transaction.
func (w *Writer) Update(ctx context.Context, siteID uint64, et EntityType, entityID uint64, titles []LocalizedTitle, mode string) error {
	for _, lt := range titles {
		base, err := baseCandidate(et, entityID, lt)
		if err != nil {
			return err
		}
		if err := w.updateOne(ctx, siteID, et, entityID, lt.Language, base, mode); err != nil {
			return err
		}
	}
	return nil
}

// baseCandidate normalizes Override (preferred) or Title, substituting the
// "<type>-<id>" fallback when normalization yields nothing.
func baseCandidate(et EntityType, entityID uint64, lt LocalizedTitle) (string, error) {
	if lt.Language == "" {
		return "", fmt.Errorf("missing language for entity %s/%d: %w", et, entityID, ErrInvalidInput)
	}
	src := lt.Title
	if lt.Override != "" {
		src = lt.Override
	}
	cand := slugify.Make(src)
	if cand == "" {
		cand = slugify.Fallback(string(et), entityID)
	}
	if cand == "" {
		// Unreachable while EntityType constants are plain ASCII; guarded
		// so a future type addition cannot produce empty slugs silently.
		return "", fmt.Errorf("empty slug for entity %s/%d: %w", et, entityID, ErrInvalidInput)
	}
	return cand, nil
}

func conflictErr(cand, language string) error {
	return fmt.Errorf("slug %q already active in language %q: %w", cand, language, ErrConflict)
}

// place finds a free candidate and inserts it as the primary slug.  The
// loop re-checks after every attempt: a freshly suffixed candidate can
// itself collide, and a concurrent writer can take a candidate between the
// check and the insert (surfacing as a duplicate-key error).  A row the
// entity already owns short-circuits into a repair.
func (w *Writer) place(ctx context.Context, q sqlx.ExtContext, siteID uint64, et EntityType, entityID uint64, language, base, mode string) (uint64, string, error) {
	cand := base
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			cand = fmt.Sprintf("%s-%d", base, attempt)
			metrics.SlugConflictRetryTotal.Inc()
		}

		owner, err := bySlug(ctx, q, siteID, language, cand)
		if err == nil {
			if owner.EntityType == et && owner.EntityID == entityID {
				if err := restorePrimary(ctx, q, owner.ID); err != nil {
					return 0, "", err
				}
				return owner.ID, cand, nil
			}
			if mode == ConflictReject {
				return 0, "", conflictErr(cand, language)
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, "", err
		}

		id, err := insert(ctx, q, &Record{
			SiteID:     siteID,
			Language:   language,
			Slug:       cand,
			EntityType: et,
			EntityID:   entityID,
			IsPrimary:  true,
		})
		if isDuplicate(err) {
			// Lost the race for this candidate.
			if mode == ConflictReject {
				return 0, "", conflictErr(cand, language)
			}
			continue
		}
		if err != nil {
			return 0, "", err
		}
		return id, cand, nil
	}
}

func (w *Writer) updateOne(ctx context.Context, siteID uint64, et EntityType, entityID uint64, language, base, mode string) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	cur, err := primaryFor(ctx, tx, siteID, language, et, entityID)
	if errors.Is(err, sql.ErrNoRows) {
		if _, _, err := w.place(ctx, tx, siteID, et, entityID, language, base, mode); err != nil {
			return err
		}
		return tx.Commit()
	}
	if err != nil {
		return err
	}

	// Find where the candidate lands: free, owned by this entity, or owned
	// by another entity (conflict).  Cross-entity collisions suffix or
	// reject; own rows are never conflicts.
	var (
		cand     = base
		existing *Record // this entity's own row already bearing cand
		newID    uint64
	)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			cand = fmt.Sprintf("%s-%d", base, attempt)
			metrics.SlugConflictRetryTotal.Inc()
		}

		owner, err := bySlug(ctx, tx, siteID, language, cand)
		if err == nil {
			if owner.EntityType == et && owner.EntityID == entityID {
				existing = owner
				break
			}
			if mode == ConflictReject {
				return conflictErr(cand, language)
			}
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		id, err := insert(ctx, tx, &Record{
			SiteID:     siteID,
			Language:   language,
			Slug:       cand,
			EntityType: et,
			EntityID:   entityID,
			IsPrimary:  true,
		})
		if isDuplicate(err) {
			if mode == ConflictReject {
				return conflictErr(cand, language)
			}
			continue
		}
		if err != nil {
			return err
		}
		newID = id
		break
	}

	switch {
	case existing != nil && existing.ID == cur.ID:
		// Unchanged title.  No structural change; re-assert the flags so a
		// re-save repairs any earlier drift.
		if err := restorePrimary(ctx, tx, cur.ID); err != nil {
			return err
		}
		if err := demoteOthers(ctx, tx, siteID, language, et, entityID, cur.ID); err != nil {
			return err
		}

	case existing != nil:
		// Renamed back to a slug this entity still owns as a redirect.
		if err := demoteOthers(ctx, tx, siteID, language, et, entityID, existing.ID); err != nil {
			return err
		}
		if err := restorePrimary(ctx, tx, existing.ID); err != nil {
			return err
		}
		if err := redirect(ctx, tx, cur.ID, existing.ID); err != nil {
			return err
		}
		if err := repoint(ctx, tx, cur.ID, existing.ID); err != nil {
			return err
		}
		zap.L().Debug("slug revived",
			zap.String("entity", string(et)),
			zap.Uint64("entity_id", entityID),
			zap.String("slug", cand),
			zap.String("was", cur.Slug))

	default:
		// Fresh slug inserted above; flip the old primary into a redirect
		// and keep every older alias at one hop.
		if err := demoteOthers(ctx, tx, siteID, language, et, entityID, newID); err != nil {
			return err
		}
		if err := redirect(ctx, tx, cur.ID, newID); err != nil {
			return err
		}
		if err := repoint(ctx, tx, cur.ID, newID); err != nil {
			return err
		}
		zap.L().Debug("slug renamed",
			zap.String("entity", string(et)),
			zap.Uint64("entity_id", entityID),
			zap.String("slug", cand),
			zap.String("was", cur.Slug))
	}

	return tx.Commit()
}
