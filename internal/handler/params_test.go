package handler

import (
	"net/http/httptest"
	"testing"
	"time"

	"inkpress/internal/model"
)

func TestParseFeedParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/post", nil)

	params := parseFeedParams(r)

	if params.PageNumber != 1 {
		t.Errorf("pageNumber = %d, want 1", params.PageNumber)
	}
	if params.OrderBy != model.SortByDate {
		t.Errorf("orderBy = %v, want date", params.OrderBy)
	}
	if params.Ascending {
		t.Error("default order must be descending")
	}
	if params.StartDate.Unix() != 0 {
		t.Errorf("startDate = %v, want epoch start", params.StartDate)
	}
	if time.Since(params.EndDate) > time.Minute {
		t.Errorf("endDate = %v, want roughly now", params.EndDate)
	}
	if params.EndDateSet {
		t.Error("defaulted endDate must not count as an explicit bound")
	}
	if len(params.Tags) != 0 || len(params.Usernames) != 0 || params.Keywords != "" {
		t.Errorf("filters should default empty: %+v", params)
	}
}

func TestParseFeedParamsFull(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/post?pageNumber=3&tags=Go,%20Databases&keywords=indexes&usernames=alice,bob"+
			"&startDate=2025-01-01&endDate=2025-06-01T12:00:00Z&orderBy=likes&asc=true", nil)

	params := parseFeedParams(r)

	if params.PageNumber != 3 {
		t.Errorf("pageNumber = %d", params.PageNumber)
	}
	if len(params.Tags) != 2 || params.Tags[0] != "go" || params.Tags[1] != "databases" {
		t.Errorf("tags = %v, want lowercased [go databases]", params.Tags)
	}
	if params.Keywords != "indexes" {
		t.Errorf("keywords = %q", params.Keywords)
	}
	if len(params.Usernames) != 2 || params.Usernames[1] != "bob" {
		t.Errorf("usernames = %v", params.Usernames)
	}
	if params.StartDate != time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("startDate = %v", params.StartDate)
	}
	if params.EndDate != time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) {
		t.Errorf("endDate = %v", params.EndDate)
	}
	if !params.EndDateSet {
		t.Error("explicit endDate must be flagged as set")
	}
	if params.OrderBy != model.SortByLikes {
		t.Errorf("orderBy = %v", params.OrderBy)
	}
	if !params.Ascending {
		t.Error("asc=true not parsed")
	}
}

func TestParseFeedParamsMalformedFallsBack(t *testing.T) {
	r := httptest.NewRequest("GET", "/post?pageNumber=zero&startDate=tomorrow&asc=yes&orderBy=magic", nil)

	params := parseFeedParams(r)

	if params.PageNumber != 1 {
		t.Errorf("malformed pageNumber should fall back to 1, got %d", params.PageNumber)
	}
	if params.StartDate.Unix() != 0 {
		t.Errorf("malformed startDate should fall back to epoch, got %v", params.StartDate)
	}
	if params.Ascending {
		t.Error("asc must only accept the literal true")
	}
	if params.OrderBy != model.SortByDate {
		t.Errorf("unknown orderBy should fall back to date, got %v", params.OrderBy)
	}
}

func TestParseFeedParamsMalformedEndDateNotFlagged(t *testing.T) {
	r := httptest.NewRequest("GET", "/post?endDate=yesterday", nil)

	params := parseFeedParams(r)

	if params.EndDateSet {
		t.Error("unparseable endDate falls back to now and must not count as a bound")
	}
	if time.Since(params.EndDate) > time.Minute {
		t.Errorf("endDate = %v, want roughly now", params.EndDate)
	}
}

func TestParsePositiveInt(t *testing.T) {
	cases := []struct {
		in       string
		fallback int
		want     int
	}{
		{"5", 1, 5},
		{"", 1, 1},
		{"0", 1, 1},
		{"-3", 1, 1},
		{"abc", 7, 7},
		{" 12 ", 1, 12},
	}
	for _, tc := range cases {
		if got := parsePositiveInt(tc.in, tc.fallback); got != tc.want {
			t.Errorf("parsePositiveInt(%q, %d) = %d, want %d", tc.in, tc.fallback, got, tc.want)
		}
	}
}

func TestParseCSV(t *testing.T) {
	if got := parseCSV("a, b , ,c"); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("parseCSV = %v", got)
	}
	if got := parseCSV("  "); got != nil {
		t.Errorf("blank input = %v, want nil", got)
	}
}
