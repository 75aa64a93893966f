package search

import (
	"campusevents/internal/domain"
)

// View is the filtered, read-only event list handed to the renderer
type View struct {
	Events       []domain.Event // subsequence of the collection, original order
	Query        string         // query the view was computed with
	Total        int            // size of the unfiltered collection
	Computations int            // how many times the index has recomputed
}

// Filtered reports whether the view was narrowed by a query
func (v View) Filtered() bool {
	return v.Query != ""
}

// Empty reports whether there is nothing to show
func (v View) Empty() bool {
	return len(v.Events) == 0
}
