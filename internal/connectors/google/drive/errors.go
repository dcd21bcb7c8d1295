package drive

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tablekeep/loresync/internal/core/domain"
)

// APIError represents a non-success Drive API response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("drive: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// isThrottleResponse reports whether a response indicates throttling.
// Drive signals throttling with 429, or with 403 carrying a rate or quota
// reason in the body. The body is only available here, so this is the one
// place message text is inspected; the resulting error carries a typed kind
// from then on.
func isThrottleResponse(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status != http.StatusForbidden {
		return false
	}

	s := strings.ToLower(string(body))
	for _, marker := range throttleMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// throttleMarkers are the reason strings Drive embeds in 403 bodies when the
// request was rejected for pacing rather than permissions.
var throttleMarkers = []string{
	"ratelimitexceeded",
	"userratelimitexceeded",
	"rate limit",
	"dailylimitexceeded",
	"quotaexceeded",
	"quota exceeded",
	"automated queries",
}

// throttleKind distinguishes quota exhaustion from rate limiting.
// Both back off and retry; only the diagnostic kind differs.
func throttleKind(body []byte) domain.ErrorKind {
	s := strings.ToLower(string(body))
	if strings.Contains(s, "dailylimitexceeded") || strings.Contains(s, "quota") {
		return domain.KindQuota
	}
	return domain.KindRateLimit
}
