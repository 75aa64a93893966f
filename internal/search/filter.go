package search

import (
	"strings"

	"campusevents/internal/domain"
)

// Matches checks if an event matches the filter query.
// The query matches against event name, location name, organization name
// and every category name, case-insensitively. Absent fields never match.
func Matches(e domain.Event, query string) bool {
	if query == "" {
		return true
	}
	return matchesLower(e, strings.ToLower(query))
}

func matchesLower(e domain.Event, q string) bool {
	if strings.Contains(strings.ToLower(e.Name), q) {
		return true
	}
	if e.Location != nil && strings.Contains(strings.ToLower(e.Location.Name), q) {
		return true
	}
	if e.Organization != nil && strings.Contains(strings.ToLower(e.Organization.Name), q) {
		return true
	}
	for _, c := range e.Categories {
		if strings.Contains(strings.ToLower(c.Name), q) {
			return true
		}
	}
	return false
}

// Filter returns the events matching query in their original order.
// An empty query returns events unchanged.
func Filter(events []domain.Event, query string) []domain.Event {
	if query == "" {
		return events
	}
	q := strings.ToLower(query)
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if matchesLower(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// Span is a byte range [Start, End) of text matching the query
type Span struct {
	Start int
	End   int
}

// Highlight finds every non-overlapping case-insensitive occurrence of query in text.
// Spans index into text and are only valid when lowercasing keeps byte lengths.
func Highlight(text, query string) []Span {
	if query == "" || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	q := strings.ToLower(query)
	if len(lower) != len(text) {
		return nil
	}
	var spans []Span
	for from := 0; from < len(lower); {
		i := strings.Index(lower[from:], q)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, Span{Start: start, End: start + len(q)})
		from = start + len(q)
	}
	return spans
}
