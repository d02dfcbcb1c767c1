// internal/sitekey/resolver.go
//
// Key Resolver: (language, optional public key) → internal site.
//
// Context
// -------
// Public requests name a site either explicitly, with a key in the URL, or
// implicitly in single-site deployments, where the default key is injected
// at construction.  Both modes share one read path: fetch the active row,
// dereference at most one redirect hop, and report whether a hop happened
// so the HTTP layer can emit the canonical key.
//
// A redirect target that is missing, inactive, or itself redirecting is
// corrupt data.  We log it and answer ErrNotFound rather than follow the
// chain.

package sitekey

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/veresdaniel/hellolocal/internal/metrics"
)

// Config carries the resolver's deployment-level defaults.  DefaultKey may
// be empty, in which case key-less lookups fail with ErrNotFound.
type Config struct {
	DefaultKey string
}

// Resolver answers read-only key lookups.  Safe for concurrent use.
type Resolver struct {
	db  *sqlx.DB
	cfg Config
}

// NewResolver binds a resolver to a pool and its deployment defaults.
func NewResolver(db *sqlx.DB, cfg Config) *Resolver {
	return &Resolver{db: db, cfg: cfg}
}

// Resolve maps (language, publicKey) to a site.  An empty publicKey selects
// the configured default site.  Side-effect free.
func (r *Resolver) Resolve(ctx context.Context, language, publicKey string) (*Resolution, error) {
	key := publicKey
	if key == "" {
		if r.cfg.DefaultKey == "" {
			metrics.KeyResolveTotal.WithLabelValues("miss").Inc()
			return nil, fmt.Errorf("no key given and no default site configured: %w", ErrNotFound)
		}
		key = r.cfg.DefaultKey
	}

	rec, err := ByKey(ctx, r.db, language, key)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.KeyResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("key %q (%s): %w", key, language, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if rec.RedirectTo == nil {
		metrics.KeyResolveTotal.WithLabelValues("hit").Inc()
		return &Resolution{SiteID: rec.SiteID, CanonicalKey: rec.PublicKey}, nil
	}

	target, err := ByID(ctx, r.db, *rec.RedirectTo)
	if errors.Is(err, sql.ErrNoRows) {
		zap.L().Warn("site key redirect target missing",
			zap.Uint64("key_id", rec.ID),
			zap.Uint64("target_id", *rec.RedirectTo))
		metrics.KeyResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("key %q redirect target: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !target.IsActive || target.RedirectTo != nil {
		// One hop only.  Anything deeper is a data bug, not a case to serve.
		zap.L().Warn("site key redirect target unusable",
			zap.Uint64("key_id", rec.ID),
			zap.Uint64("target_id", target.ID),
			zap.Bool("target_active", target.IsActive),
			zap.Bool("target_redirects", target.RedirectTo != nil))
		metrics.KeyResolveTotal.WithLabelValues("miss").Inc()
		return nil, fmt.Errorf("key %q redirect target: %w", key, ErrNotFound)
	}

	metrics.KeyResolveTotal.WithLabelValues("redirect").Inc()
	return &Resolution{
		SiteID:       target.SiteID,
		CanonicalKey: target.PublicKey,
		Redirected:   true,
	}, nil
}
