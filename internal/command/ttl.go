package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/serroba/shorter/internal/shortener"
	"github.com/xhit/go-str2duration/v2"
)

// ParseTTL converts a time-to-live such as "90m", "1h30m", "2d" or "1w" into a duration.
// An empty string means no expiration and yields zero.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: ttl %q is not a duration", shortener.ErrInvalidInput, s)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: ttl %q must be positive", shortener.ErrInvalidInput, s)
	}

	return d, nil
}
