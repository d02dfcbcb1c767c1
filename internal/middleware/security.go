// internal/middleware/security.go
//
// Security-header middleware for the JSON resolve API.
//
// Injects industry-standard headers on every response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • X-Content-Type-Options     –  MIME-sniffing defence
//   • X-Frame-Options            –  click-jacking defence
//   • Referrer-Policy            –  drops path/query from Referer
//
// Notes
// -----
// • Headers are set *before* next.ServeHTTP: the JSON handlers call
//   WriteHeader themselves, and anything added after that is discarded.
// • The service normally sits behind a TLS-terminating proxy; HSTS is
//   still useful because browsers see the public domain as HTTPS.

package middleware

import "net/http"

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	const (
		hsts  = "max-age=63072000; includeSubDomains; preload"
		nosn  = "nosniff"
		xfo   = "DENY"
		refer = "strict-origin-when-cross-origin"
	)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("X-Frame-Options", xfo)
		h.Set("Referrer-Policy", refer)

		next.ServeHTTP(w, r)
	})
}
