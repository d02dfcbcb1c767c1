// Package metrics holds Prometheus instruments shared across the resolution
// core.  All collectors register with the global registry, so importing this
// package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	KeyResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitekey_resolve_total",
			Help: "Site-key resolutions by outcome (hit, redirect, miss).",
		},
		[]string{"outcome"})

	KeyCacheHitTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitekey_cache_hit_total",
			Help: "Key resolutions served from the in-memory cache.",
		})

	KeyCacheMissTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sitekey_cache_miss_total",
			Help: "Key resolutions that had to hit the store.",
		})

	SlugResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_resolve_total",
			Help: "Slug resolutions by outcome (hit, redirect, miss).",
		},
		[]string{"outcome"})

	SlugConflictRetryTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "slug_conflict_retry_total",
			Help: "Suffix retries performed by the slug writer.",
		})

	SweepGroupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_groups_total",
			Help: "Primary-slug groups scanned by the integrity sweep.",
		})

	SweepDemotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_demotions_total",
			Help: "Duplicate primaries demoted by the integrity sweep.",
		})
)

func init() {
	prometheus.MustRegister(
		KeyResolveTotal,
		KeyCacheHitTotal,
		KeyCacheMissTotal,
		SlugResolveTotal,
		SlugConflictRetryTotal,
		SweepGroupsTotal,
		SweepDemotionsTotal,
	)
}
