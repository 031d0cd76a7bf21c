package service

import (
	"testing"
)

func TestParseShopRowsAliases(t *testing.T) {
	rows := [][]string{
		{"Shop Name", "Location", "Phone", "Due"},
		{"Corner Store", "Main Road", "9876543210", "1,250.50"},
	}
	parsed := ParseShopRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 row, got %d", len(parsed))
	}
	row := parsed[0]
	if row.Name != "Corner Store" {
		t.Fatalf("name: %q", row.Name)
	}
	if row.Address == nil || *row.Address != "Main Road" {
		t.Fatalf("address: %v", row.Address)
	}
	if row.Mobile == nil || *row.Mobile != "9876543210" {
		t.Fatalf("mobile: %v", row.Mobile)
	}
	if row.Due == nil || *row.Due != 1250.50 {
		t.Fatalf("due: %v", row.Due)
	}
}

func TestParseShopRowsAbsentColumnsStayNil(t *testing.T) {
	rows := [][]string{
		{"Name"},
		{"Just A Name"},
	}
	parsed := ParseShopRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 row, got %d", len(parsed))
	}
	row := parsed[0]
	if row.Address != nil || row.Mobile != nil || row.Due != nil {
		t.Fatalf("absent columns must stay nil: %+v", row)
	}
}

func TestParseShopRowsBlankCellsStayNil(t *testing.T) {
	// mixed sheet: each row fills a different subset of the columns; blank
	// cells must behave like absent columns so they never reach COALESCE
	rows := [][]string{
		{"Name", "Due", "Address", "Mobile"},
		{"A", "100", "", ""},
		{"B", "", "X St", "  "},
	}
	parsed := ParseShopRows(rows)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(parsed))
	}
	a, b := parsed[0], parsed[1]
	if a.Due == nil || *a.Due != 100 {
		t.Fatalf("row A due: %v", a.Due)
	}
	if a.Address != nil || a.Mobile != nil {
		t.Fatalf("row A blank cells must stay nil: address=%v mobile=%v", a.Address, a.Mobile)
	}
	if b.Address == nil || *b.Address != "X St" {
		t.Fatalf("row B address: %v", b.Address)
	}
	if b.Due != nil || b.Mobile != nil {
		t.Fatalf("row B blank cells must stay nil: due=%v mobile=%v", b.Due, b.Mobile)
	}
}

func TestParseShopRowsSkipsUnnamed(t *testing.T) {
	rows := [][]string{
		{"Name", "Address"},
		{"", "Orphan Address"},
		{"   ", "Another"},
		{"Real Shop", "Street"},
	}
	parsed := ParseShopRows(rows)
	if len(parsed) != 1 || parsed[0].Name != "Real Shop" {
		t.Fatalf("expected only the named row, got %+v", parsed)
	}
}

func TestParseShopRowsGarbledDueIgnored(t *testing.T) {
	rows := [][]string{
		{"Name", "Due Amount"},
		{"Shop", "abc"},
	}
	parsed := ParseShopRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 row, got %d", len(parsed))
	}
	if parsed[0].Due != nil {
		t.Fatalf("unparsable due must stay nil, got %v", *parsed[0].Due)
	}
}

func TestParseShopRowsHeaderOnly(t *testing.T) {
	if parsed := ParseShopRows([][]string{{"Name"}}); parsed != nil {
		t.Fatalf("header-only sheet should yield nothing, got %+v", parsed)
	}
}

func TestParseDueRows(t *testing.T) {
	rows := [][]string{
		{"Shop Name", "Due"},
		{"Alpha", "100"},
		{"Beta", "not a number"},
		{"", "50"},
		{"Gamma", "-25.5"},
	}
	parsed := ParseDueRows(rows)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 rows, got %d (%+v)", len(parsed), parsed)
	}
	if parsed[0].Name != "Alpha" || parsed[0].Due != 100 {
		t.Fatalf("row 0: %+v", parsed[0])
	}
	if parsed[1].Name != "Gamma" || parsed[1].Due != -25.5 {
		t.Fatalf("row 1: %+v", parsed[1])
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{" 1,000.25 ", 1000.25, true},
		{"-42", -42, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseAmount(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseAmount(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
