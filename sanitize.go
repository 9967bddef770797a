package trendline

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/trendline/pkg/domain"
)

var (
	// DefaultMaxQuerySize is 4KB (conservative default)
	DefaultMaxQuerySize = 4096
	// EnvMaxQuerySize is the environment variable to override the default
	EnvMaxQuerySize = "TRENDLINE_MAX_QUERY_SIZE"
)

// Query rejections. Both wrap domain.ErrInvalidInput.
var (
	ErrQueryTooLarge = fmt.Errorf("%w: query exceeds maximum allowed size", domain.ErrInvalidInput)
	ErrInvalidUTF8   = fmt.Errorf("%w: query contains invalid UTF-8 sequences", domain.ErrInvalidInput)
)

// SanitizeQuery enforces the size limit, validates UTF-8 and strips control
// characters from a query label. Surrounding whitespace is trimmed.
// The query ends up in logs, lock keys and stored reports.
func SanitizeQuery(input string) (string, error) {
	limit := maxQuerySize()
	if len(input) > limit {
		// Rejected rather than truncated so the stored label is what the caller sent.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrQueryTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// ANSI escapes, NUL and BEL poison logs and terminals.
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(clean), nil
}

func maxQuerySize() int {
	if val := os.Getenv(EnvMaxQuerySize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxQuerySize
}
