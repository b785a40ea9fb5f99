package utils

import (
	"context"
	"strings"
	"time"
)

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	if cut, ok := TruncateRunes(s, limit); ok {
		return cut + "..."
	}
	return s
}

// TruncateRunes returns the first limit runes of s. The second value reports
// whether anything was cut off.
func TruncateRunes(s string, limit int) (string, bool) {
	if limit < 0 {
		limit = 0
	}
	count := 0
	for idx := range s {
		if count == limit {
			return s[:idx], true
		}
		count++
	}
	return s, false
}
