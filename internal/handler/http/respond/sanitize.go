package respond

import (
	"regexp"
)

var (
	// Graph provider API keys travel in query strings and headers and can
	// surface in wrapped transport errors.
	apiKeyParamPattern  = regexp.MustCompile(`(?i)(api[_-]?key=)[^&\s]+`)
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(X-API-Key:\s*)\S+`)

	// Database passwords inside a DSN.
	dbPasswordPattern = regexp.MustCompile(`://([^:/]+):([^@]+)@`)
)

// SanitizeError returns the error message with credentials masked. Used for
// log output of internal errors; the HTTP body never carries them at all.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = apiKeyParamPattern.ReplaceAllString(msg, "${1}****")
	msg = apiKeyHeaderPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
