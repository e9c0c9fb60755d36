package resolve

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tripsearch/internal/domain"
)

var (
	ordinalRe = regexp.MustCompile(`(?i)(\d+)(st|nd|rd|th)`)
	dayWordRe = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)$`)
	isoHeadRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

type dateFormat struct {
	layout  string
	hasYear bool
}

// Order matters: ambiguous numeric inputs resolve to the first layout that parses.
var dateFormats = []dateFormat{
	{"2006-1-2", true},
	{"2 January 2006", true},
	{"2 Jan 2006", true},
	{"2 January", false},
	{"2 Jan", false},
	{"2-1-2006", true},
	{"2/1/2006", true},
	{"2 1 2006", true},
	{"2006/1/2", true},
}

var monthNames = []string{
	"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december",
}

// NormalizeDate turns a human date expression into a canonical date.
// ref supplies the year for year-less inputs; such dates roll forward one
// year when they fall strictly before ref's calendar day.
func NormalizeDate(text string, ref time.Time) (domain.CalendarDate, bool) {
	s := cleanDate(text)
	if s == "" {
		return "", false
	}
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	for _, f := range dateFormats {
		t, err := time.Parse(f.layout, s)
		if err != nil {
			continue
		}
		if f.hasYear {
			return domain.DateOf(t), true
		}
		return inferYear(int(t.Month()), t.Day(), today)
	}

	if m := dayWordRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthFromWord(m[2])
		if month == 0 {
			return "", false
		}
		return inferYear(month, day, today)
	}

	if head := isoHeadRe.FindString(s); head != "" {
		if t, err := time.Parse(domain.DateLayout, head); err == nil {
			return domain.DateOf(t), true
		}
	}
	return "", false
}

// cleanDate drops ordinal suffixes and commas, then collapses whitespace.
// Commas are removed, not spaced: "25 September,2025" stays unparseable.
func cleanDate(text string) string {
	s := ordinalRe.ReplaceAllString(strings.TrimSpace(text), "$1")
	s = strings.ReplaceAll(s, ",", "")
	return strings.Join(strings.Fields(s), " ")
}

func inferYear(month, day int, today time.Time) (domain.CalendarDate, bool) {
	year := today.Year()
	t, ok := civil(year, month, day)
	if ok && t.Before(today) {
		year++
		t, ok = civil(year, month, day)
	}
	if !ok {
		return "", false
	}
	return domain.DateOf(t), true
}

// civil builds a UTC date and rejects days that do not exist in that year.
func civil(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// monthFromWord matches full names, abbreviations and prefixes of at least
// three letters ("Sept"), case-insensitively. Returns 0 when nothing matches.
func monthFromWord(w string) int {
	w = strings.ToLower(w)
	if len(w) < 3 {
		return 0
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, w) {
			return i + 1
		}
	}
	return 0
}
