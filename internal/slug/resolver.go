// internal/slug/resolver.go
//
// Slug Resolver: (site, language, slug) → entity.
//
// Context
// -------
// Runs after the Key Resolver has produced a site id.  Follows at most one
// redirect hop; a target that is missing, inactive, or itself redirecting
// is corrupt data, logged and answered with ErrNotFound rather than
// followed.  Language fallback is the caller's policy: issue a second
// Resolve with the fallback language.

package slug

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/veresdaniel/hellolocal/internal/metrics"
)

// Resolver answers read-only slug lookups.  Safe for concurrent use.
type Resolver struct {
	db *sqlx.DB
}

// NewResolver binds a resolver to a pool.
func NewResolver(db *sqlx.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve maps (siteID, language, slug) to the entity it names.
// Side-effect free.
func (r *Resolver) Resolve(ctx context.Context, siteID uint64, language, s string) (*Resolution, error) {
	rec, err := bySlug(ctx, r.db, siteID, language, s)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.SlugResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("slug %q (site %d, %s): %w", s, siteID, language, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if rec.RedirectTo == nil {
		metrics.SlugResolveTotal.WithLabelValues("hit").Inc()
		return &Resolution{
			EntityType:    rec.EntityType,
			EntityID:      rec.EntityID,
			CanonicalSlug: rec.Slug,
		}, nil
	}

	target, err := byID(ctx, r.db, *rec.RedirectTo)
	if errors.Is(err, sql.ErrNoRows) {
		zap.L().Warn("slug redirect target missing",
			zap.Uint64("slug_id", rec.ID),
			zap.Uint64("target_id", *rec.RedirectTo))
		metrics.SlugResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("slug %q redirect target: %w", s, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !target.IsActive || target.RedirectTo != nil {
		// Broken redirect: do not silently fall back, and never follow a
		// second hop.
		zap.L().Warn("slug redirect target unusable",
			zap.Uint64("slug_id", rec.ID),
			zap.Uint64("target_id", target.ID),
			zap.Bool("target_active", target.IsActive),
			zap.Bool("target_redirects", target.RedirectTo != nil))
		metrics.SlugResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("slug %q redirect target: %w", s, ErrNotFound)
	}

	metrics.SlugResolveTotal.WithLabelValues("redirect").Inc()
	return &Resolution{
		EntityType:    target.EntityType,
		EntityID:      target.EntityID,
		CanonicalSlug: target.Slug,
		Redirected:    true,
	}, nil
}
