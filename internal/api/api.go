// internal/api/api.go
//
// Public JSON resolve endpoints.
//
// Context
// -------
// The platform frontend calls these to turn a public URL into an entity
// reference before fetching the entity itself:
//
//	GET /resolve/{language}?key=…        → site resolution
//	GET /resolve/{language}/{slug}?key=… → site + entity resolution
//
// An absent ?key selects the deployment's default site.  Responses carry
// the canonical key and slug plus a `redirected` flag, so the frontend
// can issue its own 301 to the canonical URL.  Language fallback is the
// caller's policy: retry with another language if 404.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/veresdaniel/hellolocal/internal/sitekey"
	"github.com/veresdaniel/hellolocal/internal/slug"
)

// KeySource resolves public site keys; satisfied by *sitekey.Cache.
type KeySource interface {
	Get(ctx context.Context, language, publicKey string) (*sitekey.Resolution, error)
}

// SlugSource resolves entity slugs; satisfied by *slug.Resolver.
type SlugSource interface {
	Resolve(ctx context.Context, siteID uint64, language, s string) (*slug.Resolution, error)
}

// Handler serves the resolve endpoints.
type Handler struct {
	keys  KeySource
	slugs SlugSource
}

// New wires a handler to its resolvers.
func New(keys KeySource, slugs SlugSource) *Handler {
	return &Handler{keys: keys, slugs: slugs}
}

// Routes mounts the resolve endpoints on a fresh chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/resolve/{language}", h.resolveSite)
	r.Get("/resolve/{language}/{slug}", h.resolveEntity)
	return r
}

func (h *Handler) resolveSite(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	key := r.URL.Query().Get("key")

	res, err := h.keys.Get(r.Context(), language, key)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type entityResponse struct {
	Site       *sitekey.Resolution `json:"site"`
	Entity     *slug.Resolution    `json:"entity"`
	Redirected bool                `json:"redirected"`
}

func (h *Handler) resolveEntity(w http.ResponseWriter, r *http.Request) {
	language := chi.URLParam(r, "language")
	key := r.URL.Query().Get("key")
	s := chi.URLParam(r, "slug")

	site, err := h.keys.Get(r.Context(), language, key)
	if err != nil {
		h.fail(w, err)
		return
	}
	entity, err := h.slugs.Resolve(r.Context(), site.SiteID, language, s)
	if err != nil {
		h.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &entityResponse{
		Site:       site,
		Entity:     entity,
		Redirected: site.Redirected || entity.Redirected,
	})
}

// fail maps resolver errors onto HTTP statuses.  A missing mapping is a
// client-visible 404; anything else is a store failure.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, sitekey.ErrNotFound) || errors.Is(err, slug.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	zap.L().Error("resolve failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("response encode failed", zap.Error(err))
	}
}
