package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"campusevents/internal/domain"
	"campusevents/internal/engage"
)

// DefaultPageSize is the number of events requested per page
const DefaultPageSize = 100

// PageSource returns one page of upcoming events
type PageSource interface {
	SearchEvents(ctx context.Context, p engage.SearchParams) ([]domain.Event, error)
}

// ErrorKind classifies a page failure
type ErrorKind int

const (
	PageRequestFailed ErrorKind = iota
	MalformedResponse
)

func (k ErrorKind) String() string {
	if k == MalformedResponse {
		return "malformed response"
	}
	return "page request failed"
}

// PageError aborts a fetch cycle. It records the offset that failed.
type PageError struct {
	Offset int
	Kind   ErrorKind
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *PageError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s at offset %d (status %d): %v", e.Kind, e.Offset, e.Status, e.Err)
	}
	return fmt.Sprintf("%s at offset %d: %v", e.Kind, e.Offset, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Stats describes a completed cycle
type Stats struct {
	Pages      int
	Received   int
	Duplicates int
}

// Fetcher retrieves every upcoming event by paging through the source
type Fetcher struct {
	Source         PageSource
	PageSize       int
	RequestTimeout time.Duration // per page; 0 disables
	Now            func() time.Time
	Logger         *zap.Logger
}

// New creates a Fetcher with default page size and clock
func New(source PageSource, requestTimeout time.Duration, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		Source:         source,
		PageSize:       DefaultPageSize,
		RequestTimeout: requestTimeout,
		Now:            time.Now,
		Logger:         logger,
	}
}

// FetchAll pages through the source until a page comes back shorter than
// PageSize. When reset is false paging continues at len(existing) and the
// result extends existing; otherwise it starts at offset 0 from scratch.
// Records already seen (by ID) are skipped. The first failing page aborts the
// cycle with a *PageError and no partial result.
func (f *Fetcher) FetchAll(ctx context.Context, existing []domain.Event, reset bool) ([]domain.Event, error) {
	result, _, err := f.FetchAllWithStats(ctx, existing, reset)
	return result, err
}

// FetchAllWithStats is FetchAll plus page/duplicate counts
func (f *Fetcher) FetchAllWithStats(ctx context.Context, existing []domain.Event, reset bool) ([]domain.Event, Stats, error) {
	var stats Stats
	if f.Source == nil {
		return nil, stats, errors.New("fetcher has no page source")
	}
	take := f.PageSize
	if take <= 0 {
		take = DefaultPageSize
	}
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var collection []domain.Event
	if !reset {
		collection = append(collection, existing...)
	}
	seen := make(map[int64]struct{}, len(collection))
	for _, e := range collection {
		seen[e.ID] = struct{}{}
	}

	endsAfter := now()
	offset := len(collection)
	for {
		page, err := f.fetchPage(ctx, engage.SearchParams{EndsAfter: endsAfter, Take: take, Skip: offset})
		if err != nil {
			logger.Warn("page fetch failed", zap.Int("offset", offset), zap.Error(err))
			return nil, stats, classify(offset, err)
		}
		stats.Pages++
		stats.Received += len(page)

		for _, e := range page {
			if _, dup := seen[e.ID]; dup {
				stats.Duplicates++
				continue
			}
			seen[e.ID] = struct{}{}
			collection = append(collection, e)
		}

		if len(page) < take {
			break
		}
		offset += len(page)
	}

	if collection == nil {
		collection = []domain.Event{}
	}
	logger.Info("fetch complete",
		zap.Int("pages", stats.Pages),
		zap.Int("received", stats.Received),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("events", len(collection)))
	return collection, stats, nil
}

func (f *Fetcher) fetchPage(ctx context.Context, p engage.SearchParams) ([]domain.Event, error) {
	if f.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.RequestTimeout)
		defer cancel()
	}
	return f.Source.SearchEvents(ctx, p)
}

func classify(offset int, err error) *PageError {
	pe := &PageError{Offset: offset, Kind: PageRequestFailed, Err: err}
	var apiErr *engage.APIError
	if errors.As(err, &apiErr) {
		pe.Status = apiErr.Status
	}
	var decodeErr *engage.DecodeError
	if errors.As(err, &decodeErr) {
		pe.Kind = MalformedResponse
	}
	return pe
}
