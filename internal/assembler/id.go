package assembler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/killallgit/coffeebreak-api/internal/models"
)

var (
	partIDPattern = regexp.MustCompile(`(?i)^\s*ep\s?(\d+)(?:_([a-z]+))?`)
	numberPattern = regexp.MustCompile(`(?i)^\s*(?:ep\s?)?(\d+)\s*$`)
	titlePrefix   = regexp.MustCompile(`(?i)^\s*ep\s?\d{1,4}(?:_[a-z]+)?\s*:\s*`)
)

// ParseEpisodeID splits a part identifier such as "Ep500_B" into the
// zero-padded episode number and the upper-cased part suffix.
func ParseEpisodeID(id string) (number, suffix string, ok bool) {
	m := partIDPattern.FindStringSubmatch(id)
	if m == nil {
		return "", "", false
	}
	number, ok = padNumber(m[1])
	return number, strings.ToUpper(m[2]), ok
}

// NormalizeNumber accepts "7", "007" or "Ep7" and returns "007"
func NormalizeNumber(s string) (string, bool) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return padNumber(m[1])
}

func padNumber(digits string) (string, bool) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return "", false
	}
	return fmt.Sprintf("%03d", n), true
}

// StripTitlePrefix removes a leading "Ep500_B: " style identifier
func StripTitlePrefix(title string) string {
	stripped := titlePrefix.ReplaceAllString(title, "")
	if strings.TrimSpace(stripped) == "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(stripped)
}

// parseCalendarDate reads the dataset's DD/MM/YYYY form first so that
// day-first dates are never read month-first, then anything dateparse knows.
func parseCalendarDate(s string) (models.CalendarDate, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{models.CalendarDateLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewCalendarDate(t), nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return models.CalendarDate{}, err
	}
	return models.NewCalendarDate(t), nil
}

func parseTimestamp(s string) (models.Timestamp, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return models.Timestamp{}, err
	}
	return models.Timestamp{Time: t}, nil
}
