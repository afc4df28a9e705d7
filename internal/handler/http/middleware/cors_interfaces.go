package middleware

// OriginValidator decides whether an Origin header value may make
// cross-origin requests. The whitelist implementation does exact matching;
// pattern or IP based strategies can be swapped in behind the same
// interface.
type OriginValidator interface {
	// IsAllowed reports whether the origin is permitted. Comparison is
	// case-sensitive and an empty origin is never allowed.
	IsAllowed(origin string) bool

	// GetAllowedOrigins returns the configured origins (or patterns) for
	// logging. Implementations return a copy, not internal state.
	GetAllowedOrigins() []string
}

// ConfigSource loads the CORS policy from some backing store. The default
// is environment variables; file or remote sources plug in behind the same
// interface.
type ConfigSource interface {
	// LoadOrigins returns the allowed origins. Loaders fail closed: no
	// valid origins is an error, never an empty policy.
	LoadOrigins() ([]string, error)

	// LoadMethods returns the allowed HTTP verbs, defaulting to the full
	// set when unconfigured. Unknown verbs are an error.
	LoadMethods() ([]string, error)

	// LoadHeaders returns the allowed request headers, with a sensible
	// default when unconfigured. Header names are case-insensitive on the
	// wire.
	LoadHeaders() ([]string, error)

	// LoadMaxAge returns the preflight cache lifetime in seconds. Zero
	// disables caching; negative values are an error.
	LoadMaxAge() (int, error)
}

// CORSLogger receives CORS policy events. Injecting it keeps the middleware
// testable without a real slog handler.
type CORSLogger interface {
	// Info logs configuration and lifecycle events.
	Info(msg string, fields map[string]interface{})

	// Warn logs policy violations such as rejected origins.
	Warn(msg string, fields map[string]interface{})

	// Debug logs per-request detail such as preflight processing.
	Debug(msg string, fields map[string]interface{})
}
