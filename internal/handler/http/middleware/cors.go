package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds the CORS policy. Origins are checked through the
// pluggable Validator; the remaining fields map directly onto the response
// headers.
type CORSConfig struct {
	// AllowedOrigins is the raw whitelist the Validator was built from.
	// Kept for introspection; validation goes through Validator.
	AllowedOrigins []string

	// AllowedMethods go into Access-Control-Allow-Methods on preflight.
	AllowedMethods []string

	// AllowedHeaders go into Access-Control-Allow-Headers on preflight.
	AllowedHeaders []string

	// AllowCredentials permits cookies and Authorization headers on
	// cross-origin requests.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int

	// Validator decides whether an Origin is allowed.
	Validator OriginValidator

	// Logger receives policy violations and preflight traces. Nil disables
	// CORS logging.
	Logger CORSLogger
}

// CORS returns middleware enforcing the given policy. Same-origin requests
// (no Origin header) pass through untouched. Disallowed origins get no CORS
// headers, which makes the browser block the response. Allowed OPTIONS
// requests are answered with 204 and never reach the next handler.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !config.Validator.IsAllowed(origin) {
				if config.Logger != nil {
					config.Logger.Warn("CORS: origin not allowed", map[string]interface{}{
						"origin":      origin,
						"path":        r.URL.Path,
						"method":      r.Method,
						"remote_addr": r.RemoteAddr,
					})
				}
				next.ServeHTTP(w, r)
				return
			}

			// Echo the request origin; a wildcard is invalid with
			// credentials enabled.
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))

				if config.Logger != nil {
					config.Logger.Debug("CORS: preflight request", map[string]interface{}{
						"origin":            origin,
						"requested_method":  r.Header.Get("Access-Control-Request-Method"),
						"requested_headers": r.Header.Get("Access-Control-Request-Headers"),
					})
				}

				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
