package domain

import (
	"fmt"
	"strings"
	"time"
)

// Weekday tokens in schedule order. Stored as a comma-joined string at the
// SQL boundary only; code always works with WeekdaySet.
var weekdayNames = []string{
	"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY",
}

// WeekdaySet is an ordered, deduplicated set of weekday tokens.
type WeekdaySet struct {
	days [7]bool
}

// ParseWeekdaySet builds a set from weekday tokens (case-insensitive).
// Unknown tokens are an error; empty input yields the empty set.
func ParseWeekdaySet(tokens []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, tok := range tokens {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		idx := -1
		for i, name := range weekdayNames {
			if name == tok {
				idx = i
				break
			}
		}
		if idx < 0 {
			return WeekdaySet{}, fmt.Errorf("invalid weekday %q", tok)
		}
		s.days[idx] = true
	}
	return s, nil
}

// ParseWeekdayString splits the storage form ("MONDAY,TUESDAY").
func ParseWeekdayString(joined string) (WeekdaySet, error) {
	if strings.TrimSpace(joined) == "" {
		return WeekdaySet{}, nil
	}
	return ParseWeekdaySet(strings.Split(joined, ","))
}

// Tokens returns the member tokens in schedule order.
func (s WeekdaySet) Tokens() []string {
	out := make([]string, 0, 7)
	for i, on := range s.days {
		if on {
			out = append(out, weekdayNames[i])
		}
	}
	return out
}

// String returns the comma-joined storage form.
func (s WeekdaySet) String() string {
	return strings.Join(s.Tokens(), ",")
}

func (s WeekdaySet) IsEmpty() bool {
	for _, on := range s.days {
		if !on {
			continue
		}
		return false
	}
	return true
}

// Contains reports whether the set includes the given time's weekday.
func (s WeekdaySet) Contains(t time.Time) bool {
	// time.Weekday starts at Sunday; our order starts at Monday.
	idx := (int(t.Weekday()) + 6) % 7
	return s.days[idx]
}

// WeekdayToken returns the storage token for the given time's weekday.
func WeekdayToken(t time.Time) string {
	return weekdayNames[(int(t.Weekday())+6)%7]
}
