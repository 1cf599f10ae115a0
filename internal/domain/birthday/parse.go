package birthday

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Custom parse errors. Both are user-facing and non-fatal.
var ErrDateUnparsable = errors.New("the birthday date cannot be parsed")
var ErrDateInFuture = errors.New("the birthday date lies in the future")

// dateRule pairs an anchored pattern with the Go layout used to interpret the
// matched prefix. Rules carrying no year validate against the current year
// only; the returned year stays nil.
type dateRule struct {
	pattern *regexp.Regexp
	layout  string
	hasYear bool
}

// dateRules is an ordered disambiguation policy: unambiguous, more specific
// layouts (4-digit ISO year first) precede shorter ones, so "01-02" resolves
// as month-day instead of accidentally hitting a looser rule. The first rule
// whose pattern matches the trimmed input wins; no backtracking across rules.
// Families: ISO (y-m-d), dotted European (d.m.y), slashed US (m/d/y).
var dateRules = []dateRule{
	{regexp.MustCompile(`^\d\d\d\d-[01]?\d-[0123]?\d`), "2006-1-2", true},
	{regexp.MustCompile(`^\d\d-[01]?\d-[0123]?\d`), "06-1-2", true},
	{regexp.MustCompile(`^[01]?\d-[0123]?\d`), "1-2", false},
	{regexp.MustCompile(`^[0123]?\d\.[01]?\d\.\d\d\d\d`), "2.1.2006", true},
	{regexp.MustCompile(`^[0123]?\d\.[01]?\d\.\d\d`), "2.1.06", true},
	{regexp.MustCompile(`^[0123]?\d\.[01]?\d`), "2.1", false},
	{regexp.MustCompile(`^[0123]?\d\.[01]?\d\.`), "2.1.", false},
	{regexp.MustCompile(`^[01]?\d/[0123]?\d/\d\d\d\d`), "1/2/2006", true},
	{regexp.MustCompile(`^[01]?\d/[0123]?\d/\d\d`), "1/2/06", true},
	{regexp.MustCompile(`^[01]?\d/[0123]?\d`), "1/2", false},
}

// ParseDate turns free-text input into a validated calendar date with an
// optional year. A nil year means the user did not disclose one; the caller
// must never persist a fabricated year in its place.
func ParseDate(text string) (year *int, month, day int, err error) {
	return ParseDateAt(text, time.Now())
}

// ParseDateAt is ParseDate with an explicit "now", so that leap-year and
// future-date validation stay deterministic under test.
func ParseDateAt(text string, now time.Time) (year *int, month, day int, err error) {
	trimmed := strings.TrimSpace(text)

	var matched string
	var rule dateRule
	for _, r := range dateRules {
		if m := r.pattern.FindString(trimmed); m != "" {
			matched = m
			rule = r
			break
		}
	}
	if matched == "" {
		return nil, 0, 0, ErrDateUnparsable
	}

	if !rule.hasYear {
		// Substitute the current year for range validation only (e.g. Feb 29
		// is rejected outside leap years). The omission of the year is a
		// feature of the input, not a loss of precision.
		date, parseErr := time.Parse(rule.layout+" 2006", matched+" "+strconv.Itoa(now.Year()))
		if parseErr != nil {
			return nil, 0, 0, ErrDateUnparsable
		}
		return nil, int(date.Month()), date.Day(), nil
	}

	date, parseErr := time.Parse(rule.layout, matched)
	if parseErr != nil {
		return nil, 0, 0, ErrDateUnparsable
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return nil, 0, 0, ErrDateInFuture
	}

	y := date.Year()
	return &y, int(date.Month()), date.Day(), nil
}
