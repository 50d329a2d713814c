package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkpress/internal/model"
	"inkpress/internal/service"
)

// parsePositiveInt parses s as a positive integer, returning fallback
// for empty, malformed or non-positive values.
func parsePositiveInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseCSV splits a comma-separated query value into trimmed non-empty
// parts.
func parseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates. The
// second return reports whether a value was actually parsed, as opposed
// to the fallback being used.
func parseDate(s string, fallback time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return fallback, false
}

// parseFeedParams builds the feed query parameters from the request.
// Malformed values fall back to defaults rather than failing the
// request: the window defaults to all time, page to 1, order to newest
// first.
func parseFeedParams(r *http.Request) model.FeedParams {
	q := r.URL.Query()

	startDate, _ := parseDate(q.Get("startDate"), time.Unix(0, 0))
	endDate, endDateSet := parseDate(q.Get("endDate"), time.Now())

	params := model.FeedParams{
		PageNumber: parsePositiveInt(q.Get("pageNumber"), 1),
		Keywords:   strings.TrimSpace(q.Get("keywords")),
		Usernames:  parseCSV(q.Get("usernames")),
		StartDate:  startDate,
		EndDate:    endDate,
		EndDateSet: endDateSet,
		OrderBy:    service.ParseFeedSort(q.Get("orderBy")),
		Ascending:  q.Get("asc") == "true",
	}

	// Tags are matched case-insensitively; lowercase once here.
	for _, tag := range parseCSV(q.Get("tags")) {
		params.Tags = append(params.Tags, strings.ToLower(tag))
	}

	return params
}
