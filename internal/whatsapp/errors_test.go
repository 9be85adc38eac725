package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		code        int
		retryAfter  string
		category    ErrorCategory
		shouldRetry bool
		wait        int
	}{
		{"unauthorized", 401, 190, "", ErrAuthentication, false, 0},
		{"forbidden", 403, 0, "", ErrAuthentication, false, 0},
		{"rate limited with header", 429, 0, "30", ErrRateLimit, true, 30},
		{"rate limited without header", 429, 0, "", ErrRateLimit, true, 60},
		{"rate limit code on 400", 400, 130429, "", ErrRateLimit, true, 60},
		{"undeliverable", 400, 131026, "", ErrInvalidPhone, false, 0},
		{"recipient not allowed", 400, 131030, "", ErrInvalidPhone, false, 0},
		{"template missing", 400, 132001, "", ErrTemplate, false, 0},
		{"template param mismatch", 400, 132000, "", ErrTemplate, false, 0},
		{"other 400", 400, 100, "", ErrPolicyViolation, false, 0},
		{"server error", 500, 0, "", ErrNetwork, true, 0},
		{"bad gateway", 502, 0, "", ErrNetwork, true, 0},
		{"teapot", 418, 0, "", ErrUnknown, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, shouldRetry, wait := classify(tt.status, tt.code, tt.retryAfter)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.shouldRetry, shouldRetry)
			assert.Equal(t, tt.wait, wait)
		})
	}
}
