// Package videotime converts textual video durations to seconds and
// classifies videos as short-form or long-form.
package videotime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ShortsCutoff is the date the platform extended the short-form limit from
// 60 to 180 seconds. Videos published on or after it use the larger threshold.
var ShortsCutoff = time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC)

const (
	legacyShortMaxSeconds   = 60
	extendedShortMaxSeconds = 180
)

// ParseSeconds converts a duration string to total seconds. Accepted forms:
// colon-separated "HH:MM:SS" / "MM:SS" / "SS", and ISO-8601 "PTnHnMnS".
func ParseSeconds(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.HasPrefix(s, "PT") || strings.HasPrefix(s, "P") {
		return parseISO8601(s)
	}
	return parseColonSeparated(s)
}

func parseColonSeparated(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total = total*60 + n
	}
	return total, nil
}

func parseISO8601(s string) (int, error) {
	rest := strings.TrimPrefix(s, "P")
	rest = strings.TrimPrefix(rest, "T")
	if rest == "" {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	total := 0
	num := strings.Builder{}
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'T':
			// date/time separator inside PnDTnHnMnS
			continue
		case r == 'D' || r == 'H' || r == 'M' || r == 'S':
			if num.Len() == 0 {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			n, err := strconv.Atoi(num.String())
			if err != nil {
				return 0, fmt.Errorf("invalid duration %q", s)
			}
			switch r {
			case 'D':
				total += n * 86400
			case 'H':
				total += n * 3600
			case 'M':
				total += n * 60
			case 'S':
				total += n
			}
			num.Reset()
		default:
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}
	if num.Len() != 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return total, nil
}

// ClassifyInput carries the signals used to decide short vs long form.
type ClassifyInput struct {
	DurationSeconds int
	PublishedAt     time.Time
	URL             string
	OfficialArtist  bool
}

// IsShort reports whether a video counts as short-form.
//
// The primary signal is a /shorts/ URL path hint; the duration threshold is
// date-dependent (60s before ShortsCutoff, 180s on or after). Official artist
// channels are the exception: anything over 60s is long-form regardless of
// the URL hint. Without a URL hint the flat 60s threshold applies.
func IsShort(in ClassifyInput) bool {
	hinted := strings.Contains(in.URL, "/shorts/")

	if in.OfficialArtist {
		return in.DurationSeconds > 0 && in.DurationSeconds <= legacyShortMaxSeconds
	}

	if hinted {
		limit := legacyShortMaxSeconds
		if !in.PublishedAt.Before(ShortsCutoff) {
			limit = extendedShortMaxSeconds
		}
		return in.DurationSeconds <= limit
	}

	return in.DurationSeconds > 0 && in.DurationSeconds <= legacyShortMaxSeconds
}
