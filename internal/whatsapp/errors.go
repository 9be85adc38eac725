package whatsapp

import (
	"net/http"
	"strconv"
)

// DefaultRetryAfter is used when a rate-limited response carries no
// retry-after header.
const DefaultRetryAfter = 60 // seconds

// Provider error codes, per the Cloud API error reference.
var (
	invalidPhoneCodes = map[int]bool{
		131026: true, // message undeliverable
		131030: true, // recipient not in allowed list
	}
	templateErrorCodes = map[int]bool{
		132000: true, // parameter count mismatch
		132001: true, // template does not exist
		132005: true, // hydrated text too long
		132007: true, // format character policy violated
		132012: true, // parameter format mismatch
		132015: true, // template paused
		132016: true, // template disabled
	}
	rateLimitCodes = map[int]bool{
		4:      true, // app rate limit
		80007:  true, // WABA rate limit
		130429: true, // cloud api throughput
		131048: true, // spam rate limit
	}
)

// classify maps a provider HTTP status and error code onto the result's
// category and retry fields. retryAfterHeader is the raw retry-after header
// value in seconds, if any.
func classify(status, code int, retryAfterHeader string) (category ErrorCategory, shouldRetry bool, retryAfter int) {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuthentication, false, 0

	case status == http.StatusTooManyRequests || rateLimitCodes[code]:
		retryAfter = DefaultRetryAfter
		if secs, err := strconv.Atoi(retryAfterHeader); err == nil && secs > 0 {
			retryAfter = secs
		}
		return ErrRateLimit, true, retryAfter

	case status == http.StatusBadRequest && invalidPhoneCodes[code]:
		return ErrInvalidPhone, false, 0

	case status == http.StatusBadRequest && templateErrorCodes[code]:
		return ErrTemplate, false, 0

	case status == http.StatusBadRequest:
		return ErrPolicyViolation, false, 0

	case status >= 500:
		return ErrNetwork, true, 0

	default:
		return ErrUnknown, status >= 500, 0
	}
}
