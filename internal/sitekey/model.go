// internal/sitekey/model.go
//
// Public site-key records and resolution results.
//
// Context
// -------
// A site key is the public-facing identifier of a site (tenant), distinct
// from per-entity slugs.  Renaming a site inserts a NEW active row and flips
// the old row into a one-hop redirect, so bookmarked URLs keep working.
// Rows are never reused, which is why the plain unique index on
// (scope_id, language, public_key) is enough for the active-row uniqueness
// rule.  ScopeID is 0 in single-site mode rather than NULL: MySQL unique
// indexes treat NULLs as distinct, so a NULL scope would exempt default-mode
// keys from the index entirely.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package sitekey

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent, inactive, or points at a
// dead redirect target.
var ErrNotFound = errors.New("site key not found")

// ErrConflict is returned when a rename collides with an existing active key.
var ErrConflict = errors.New("site key already taken")

// Record mirrors one row in the persistent `site_key` table.
type Record struct {
	ID         uint64    `db:"id"`
	ScopeID    uint64    `db:"scope_id"` // 0 in single-site default mode
	Language   string    `db:"language"`
	PublicKey  string    `db:"public_key"`
	SiteID     uint64    `db:"site_id"`
	IsActive   bool      `db:"is_active"`
	RedirectTo *uint64   `db:"redirect_to"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// Resolution is the outcome of a key lookup.  CanonicalKey is the key that
// should appear in links going forward; Redirected reports whether the
// request arrived on a renamed key.
type Resolution struct {
	SiteID       uint64 `json:"site_id"`
	CanonicalKey string `json:"canonical_key"`
	Redirected   bool   `json:"redirected"`
}
