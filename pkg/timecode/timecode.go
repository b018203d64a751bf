// Package timecode converts colon-delimited time literals such as "5:00",
// "32:00" or "1:21:30" to whole seconds and back.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
)

// Parse converts an M:SS, MM:SS or H:MM:SS literal to seconds.
//
// The leading component may have any number of digits; the remaining ones
// have one or two digits and must be below 60.
func Parse(literal string) (int, error) {
	if literal == "" {
		return 0, apperrors.MalformedTimestamp(literal, "empty literal")
	}
	for _, r := range literal {
		if (r < '0' || r > '9') && r != ':' {
			return 0, apperrors.MalformedTimestamp(literal, fmt.Sprintf("unexpected character %q", r))
		}
	}

	parts := strings.Split(literal, ":")
	switch {
	case len(parts) < 2:
		return 0, apperrors.MalformedTimestamp(literal, "missing ':' separator")
	case len(parts) > 3:
		return 0, apperrors.MalformedTimestamp(literal, "more than three components")
	}

	total := 0
	for i, part := range parts {
		if part == "" {
			return 0, apperrors.MalformedTimestamp(literal, "empty component")
		}
		if i > 0 && len(part) > 2 {
			return 0, apperrors.MalformedTimestamp(literal, fmt.Sprintf("component %q has more than two digits", part))
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, apperrors.MalformedTimestamp(literal, err.Error())
		}
		if i > 0 && n >= 60 {
			return 0, apperrors.MalformedTimestamp(literal, fmt.Sprintf("component %q out of range", part))
		}
		if i == 0 && n >= math.MaxInt/leadingScale(len(parts)) {
			return 0, apperrors.MalformedTimestamp(literal, fmt.Sprintf("component %q out of range", part))
		}
		total = total*60 + n
	}
	return total, nil
}

// leadingScale is the number of seconds one unit of the leading component
// is worth
func leadingScale(components int) int {
	scale := 1
	for i := 1; i < components; i++ {
		scale *= 60
	}
	return scale
}

// ParseDuration is Parse for part durations: it also tolerates surrounding
// whitespace and a bare number of seconds ("3725"), the form some feeds use
// for itunes:duration.
func ParseDuration(literal string) (int, error) {
	literal = strings.TrimSpace(literal)
	if literal != "" && !strings.Contains(literal, ":") {
		n, err := strconv.Atoi(literal)
		if err != nil || n < 0 {
			return 0, apperrors.MalformedTimestamp(literal, "not a number of seconds")
		}
		return n, nil
	}
	return Parse(literal)
}

// Format renders seconds as H:MM:SS, or M:SS below one hour.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
