package domain

import (
	"testing"
	"time"
)

func TestWeekdaySetRoundTrip(t *testing.T) {
	s, err := ParseWeekdaySet([]string{"tuesday", "MONDAY", "Monday"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := s.String(); got != "MONDAY,TUESDAY" {
		t.Fatalf("expected MONDAY,TUESDAY, got %q", got)
	}
	back, err := ParseWeekdayString(s.String())
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if back != s {
		t.Fatalf("round trip mismatch: %v vs %v", back, s)
	}
}

func TestWeekdaySetInvalidToken(t *testing.T) {
	if _, err := ParseWeekdaySet([]string{"FUNDAY"}); err == nil {
		t.Fatal("expected error for unknown weekday")
	}
}

func TestWeekdaySetEmpty(t *testing.T) {
	s, err := ParseWeekdayString("")
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if !s.IsEmpty() {
		t.Fatal("expected empty set")
	}
	if s.Contains(time.Now()) {
		t.Fatal("empty set should contain no day")
	}
}

func TestWeekdaySetContains(t *testing.T) {
	// 2024-01-01 was a Monday.
	monday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s, _ := ParseWeekdaySet([]string{"MONDAY"})
	if !s.Contains(monday) {
		t.Fatal("MONDAY set should contain a Monday")
	}
	if s.Contains(monday.AddDate(0, 0, 1)) {
		t.Fatal("MONDAY set should not contain a Tuesday")
	}
	if tok := WeekdayToken(monday); tok != "MONDAY" {
		t.Fatalf("expected MONDAY token, got %q", tok)
	}
	sunday := monday.AddDate(0, 0, 6)
	if tok := WeekdayToken(sunday); tok != "SUNDAY" {
		t.Fatalf("expected SUNDAY token, got %q", tok)
	}
}
