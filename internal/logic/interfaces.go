package logic

import (
	"context"
	"errors"

	"campusevents/internal/domain"
)

// EventSource assembles the full upcoming-events collection
type EventSource interface {
	FetchAll(ctx context.Context, existing []domain.Event, reset bool) ([]domain.Event, error)
}

// ErrSuperseded is returned to a caller whose fetch cycle was replaced by a
// newer one before it finished; its result was not published.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// FailureMessage is the user-facing text for a failed fetch
const FailureMessage = "Unable to load events. Please check connection and try again."

// Snapshot is a read-only view of the feed store
type Snapshot struct {
	Events  []domain.Event
	State   domain.LoadState
	Err     error
	Message string // human-readable error message, "" unless State is StateFailed
	Epoch   uint64
}

// Loaded reports whether at least one cycle completed successfully
func (s Snapshot) Loaded() bool {
	return s.State == domain.StateLoaded
}
