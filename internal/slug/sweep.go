// internal/slug/sweep.go
//
// Integrity sweep: restores the single-primary invariant.
//
// Context
// -------
// The writer demotes competing primaries inside its transaction, but that
// re-assertion is not atomic against concurrent writers of the same
// entity, so two primaries can coexist for a while.  This batch routine is
// the backstop: it scans active primary rows grouped by (site, language,
// entity type, entity id), keeps the most recently created row per group,
// and demotes the rest.  Demotion never touches is_active, so the losing
// slugs keep resolving as aliases.
//
// Violations are expected, not exceptional: the sweep logs and repairs
// them, and reports every correction for operator review.

package slug

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/veresdaniel/hellolocal/internal/metrics"
)

// Scope optionally narrows a sweep to one site.
type Scope struct {
	SiteID uint64
}

// Correction records one repaired group.
type Correction struct {
	SiteID     uint64     `json:"site_id"`
	Language   string     `json:"language"`
	EntityType EntityType `json:"entity_type"`
	EntityID   uint64     `json:"entity_id"`
	Kept       string     `json:"kept"`
	Demoted    []string   `json:"demoted"`
}

// RepairReport summarizes one sweep run.
type RepairReport struct {
	GroupsScanned int          `json:"groups_scanned"`
	Corrections   []Correction `json:"corrections"`
	StartedAt     time.Time    `json:"started_at"`
	FinishedAt    time.Time    `json:"finished_at"`
}

// Sweeper runs the integrity sweep.  Not on the request path; run it from
// cron via cmd/sweep.
type Sweeper struct {
	db *sqlx.DB
}

// NewSweeper binds a sweeper to a pool.
func NewSweeper(db *sqlx.DB) *Sweeper {
	return &Sweeper{db: db}
}

// Run scans active primary rows and demotes every duplicate primary but
// the newest per group (created_at, then id, descending).  It returns the
// full repair report; violations never surface as errors.
func (s *Sweeper) Run(ctx context.Context, scope *Scope) (*RepairReport, error) {
	report := &RepairReport{StartedAt: time.Now()}

	query := `
        SELECT ` + slugColumns + `
        FROM   entity_slug
        WHERE  is_primary = TRUE
          AND  is_active  = TRUE`
	args := []any{}
	if scope != nil && scope.SiteID != 0 {
		query += `
          AND  site_id = ?`
		args = append(args, scope.SiteID)
	}
	query += `
        ORDER  BY site_id, language, entity_type, entity_id,
                  created_at DESC, id DESC`

	var rows []Record
	if err := sqlx.SelectContext(ctx, s.db, &rows, query, args...); err != nil {
		return nil, err
	}

	var (
		cur     *Correction
		curKey  groupKey
		keptRow Record
	)
	flush := func() {
		if cur != nil && len(cur.Demoted) > 0 {
			report.Corrections = append(report.Corrections, *cur)
		}
		cur = nil
	}

	for i := range rows {
		rec := rows[i]
		key := groupKey{rec.SiteID, rec.Language, rec.EntityType, rec.EntityID}
		if cur == nil || key != curKey {
			flush()
			report.GroupsScanned++
			metrics.SweepGroupsTotal.Inc()
			curKey = key
			keptRow = rec // newest row of the group, by the ORDER BY
			cur = &Correction{
				SiteID:     rec.SiteID,
				Language:   rec.Language,
				EntityType: rec.EntityType,
				EntityID:   rec.EntityID,
				Kept:       rec.Slug,
			}
			continue
		}

		// Duplicate primary.  Demote, keep is_active untouched.
		const demote = `
        UPDATE entity_slug
        SET    is_primary = FALSE
        WHERE  id = ?`
		if _, err := s.db.ExecContext(ctx, demote, rec.ID); err != nil {
			return nil, err
		}
		cur.Demoted = append(cur.Demoted, rec.Slug)
		metrics.SweepDemotionsTotal.Inc()
		zap.L().Info("sweep demoted duplicate primary",
			zap.Uint64("site", rec.SiteID),
			zap.String("language", rec.Language),
			zap.String("entity", string(rec.EntityType)),
			zap.Uint64("entity_id", rec.EntityID),
			zap.String("kept", keptRow.Slug),
			zap.String("demoted", rec.Slug))
	}
	flush()

	report.FinishedAt = time.Now()
	zap.L().Info("sweep finished",
		zap.Int("groups", report.GroupsScanned),
		zap.Int("corrections", len(report.Corrections)))
	return report, nil
}

type groupKey struct {
	siteID     uint64
	language   string
	entityType EntityType
	entityID   uint64
}
