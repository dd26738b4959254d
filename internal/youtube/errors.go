package youtube

import (
	"context"
	"errors"

	"google.golang.org/api/googleapi"
)

// Sentinel errors for the resolver/fetcher error taxonomy.
var (
	// ErrChannelNotFound means resolution failed; callers may proceed with a
	// degraded estimate instead of aborting.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrQuotaExceeded means the daily API quota is spent. Fatal, not retryable.
	ErrQuotaExceeded = errors.New("youtube api quota exceeded")
)

// IsRetryable classifies an API error as transient (rate limit, 5xx) or
// fatal (bad key, not found, quota). Context errors are never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrChannelNotFound) || errors.Is(err, ErrQuotaExceeded) {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503, 504:
			return true
		case 403:
			// 403 covers both rateLimitExceeded (transient) and
			// quotaExceeded (fatal until the daily reset).
			return hasReason(gerr, "rateLimitExceeded", "userRateLimitExceeded")
		}
		return false
	}

	// Transport-level failures (timeouts, resets) are worth retrying.
	return true
}

// Classify maps a raw API error onto the sentinel taxonomy where possible.
func Classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 403 && hasReason(gerr, "quotaExceeded", "dailyLimitExceeded") {
			return ErrQuotaExceeded
		}
		if gerr.Code == 404 {
			return ErrChannelNotFound
		}
	}
	return err
}

func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		for _, r := range reasons {
			if item.Reason == r {
				return true
			}
		}
	}
	return false
}
