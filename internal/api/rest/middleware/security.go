package middleware

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// RequestSizeLimit limits the maximum size of request bodies
func RequestSizeLimit(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related HTTP headers. The service only ever
// serves JSON, so the CSP denies everything and responses carrying applicant
// data are marked uncacheable.
func SecurityHeaders() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Strict Transport Security (HSTS) - only if HTTPS
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			csp := "default-src 'none'; frame-ancestors 'none'"
			if cspEnv := os.Getenv("CSP_POLICY"); cspEnv != "" {
				csp = cspEnv
			}
			w.Header().Set("Content-Security-Policy", csp)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			// Onboarding payloads hold identity documents and tax IDs;
			// intermediaries must not cache them
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Cache-Control", "no-store")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetMaxRequestSize returns the maximum request size from environment or default
func GetMaxRequestSize() int64 {
	const defaultMaxSize = 10 * 1024 * 1024 // 10MB

	if maxSizeEnv := os.Getenv("MAX_REQUEST_SIZE_MB"); maxSizeEnv != "" {
		if maxSizeMB, err := strconv.ParseInt(maxSizeEnv, 10, 64); err == nil {
			return maxSizeMB * 1024 * 1024
		}
	}

	return defaultMaxSize
}
