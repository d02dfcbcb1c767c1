// internal/slug/model.go
//
// Slug records, resolution results, and writer inputs.
//
// Context
// -------
// A slug is the public path segment of one entity in one language within
// one site.  Renames never delete rows: the old slug stays active and
// gains a one-hop redirect to its replacement, so bookmarked links keep
// resolving.  Exactly one row per (site, language, entity) should carry
// is_primary = TRUE; that invariant is procedural, and the integrity sweep
// repairs drift.

package slug

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a slug is absent, inactive, or points at a
// dead redirect target.
var ErrNotFound = errors.New("slug not found")

// ErrConflict is returned in reject mode when a candidate collides with a
// slug owned by a different entity.
var ErrConflict = errors.New("slug already taken")

// ErrInvalidInput guards inputs no fallback can name, e.g. a missing
// language code.
var ErrInvalidInput = errors.New("invalid slug input")

// EntityType enumerates the entity kinds slugs can point at.
type EntityType string

const (
	EntityPlace EntityType = "place"
	EntityEvent EntityType = "event"
	EntityPage  EntityType = "page"
)

// Conflict handling modes for the writer.
const (
	ConflictAutoSuffix = "auto-suffix"
	ConflictReject     = "reject"
)

// Record mirrors one row in the persistent `entity_slug` table.
type Record struct {
	ID         uint64     `db:"id"`
	SiteID     uint64     `db:"site_id"`
	Language   string     `db:"language"`
	Slug       string     `db:"slug"`
	EntityType EntityType `db:"entity_type"`
	EntityID   uint64     `db:"entity_id"`
	IsPrimary  bool       `db:"is_primary"`
	IsActive   bool       `db:"is_active"`
	RedirectTo *uint64    `db:"redirect_to"`
	CreatedAt  time.Time  `db:"created_at"`
}

// Resolution is the outcome of a slug lookup.
type Resolution struct {
	EntityType    EntityType `json:"entity_type"`
	EntityID      uint64     `json:"entity_id"`
	CanonicalSlug string     `json:"canonical_slug"`
	Redirected    bool       `json:"redirected"`
}

// LocalizedTitle is one per-language writer input.  Override, when set,
// wins over Title as the slug source; both go through normalization.
type LocalizedTitle struct {
	Language string
	Title    string
	Override string
}
