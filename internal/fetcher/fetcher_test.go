package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"campusevents/internal/domain"
	"campusevents/internal/engage"
)

// fakeSource serves pre-built pages by call order and records requests
type fakeSource struct {
	mu       sync.Mutex
	pages    [][]domain.Event
	failAt   int // call index that fails, -1 for none
	failErr  error
	requests []engage.SearchParams
}

func (s *fakeSource) SearchEvents(ctx context.Context, p engage.SearchParams) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := len(s.requests)
	s.requests = append(s.requests, p)
	if call == s.failAt {
		return nil, s.failErr
	}
	if call >= len(s.pages) {
		return []domain.Event{}, nil
	}
	return s.pages[call], nil
}

func (s *fakeSource) offsets() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.requests {
		out = append(out, r.Skip)
	}
	return out
}

func makePage(fromID, n int) []domain.Event {
	page := make([]domain.Event, 0, n)
	for i := 0; i < n; i++ {
		id := int64(fromID + i)
		page = append(page, domain.Event{ID: id, Name: fmt.Sprintf("event-%d", id)})
	}
	return page
}

func ids(events []domain.Event) []int64 {
	out := make([]int64, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func newTestFetcher(t *testing.T, src PageSource) *Fetcher {
	f := New(src, time.Second, zaptest.NewLogger(t))
	f.Now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestFetchAllStopsAfterShortPage(t *testing.T) {
	for _, lastPage := range []int{37, 0} {
		src := &fakeSource{failAt: -1, pages: [][]domain.Event{
			makePage(0, 100), makePage(100, 100), makePage(200, lastPage),
		}}
		f := newTestFetcher(t, src)

		events, err := f.FetchAll(context.Background(), nil, true)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 100, 200}, src.offsets(), "last page %d", lastPage)
		assert.Len(t, events, 200+lastPage)
	}
}

func TestFetchAllRequestParameters(t *testing.T) {
	src := &fakeSource{failAt: -1, pages: [][]domain.Event{makePage(0, 3)}}
	f := newTestFetcher(t, src)

	_, err := f.FetchAll(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, src.requests, 1)
	assert.Equal(t, 100, src.requests[0].Take)
	assert.True(t, src.requests[0].EndsAfter.Equal(time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)))
}

func TestFetchAllDeduplicatesAcrossPages(t *testing.T) {
	// page 2 repeats ids 98 and 99 from page 1, as if two events were inserted upstream
	page2 := append(makePage(98, 2), makePage(100, 98)...)
	src := &fakeSource{failAt: -1, pages: [][]domain.Event{
		makePage(0, 100), page2, makePage(198, 10),
	}}
	f := newTestFetcher(t, src)

	events, stats, err := f.FetchAllWithStats(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Duplicates)
	assert.Equal(t, 3, stats.Pages)

	got := ids(events)
	require.Len(t, got, 208)
	seen := map[int64]bool{}
	for i, id := range got {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
		assert.Equal(t, int64(i), id, "first-seen order")
	}
}

func TestFetchAllContinuesFromExisting(t *testing.T) {
	existing := makePage(0, 100)
	src := &fakeSource{failAt: -1, pages: [][]domain.Event{
		append(makePage(99, 1), makePage(100, 20)...),
	}}
	f := newTestFetcher(t, src)

	events, err := f.FetchAll(context.Background(), existing, false)
	require.NoError(t, err)
	assert.Equal(t, []int{100}, src.offsets())
	assert.Len(t, events, 120)
	assert.Equal(t, int64(0), events[0].ID)
	assert.Equal(t, int64(119), events[119].ID)
}

func TestFetchAllResetIgnoresExisting(t *testing.T) {
	src := &fakeSource{failAt: -1, pages: [][]domain.Event{makePage(500, 2)}}
	f := newTestFetcher(t, src)

	events, err := f.FetchAll(context.Background(), makePage(0, 50), true)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, src.offsets())
	assert.Equal(t, []int64{500, 501}, ids(events))
}

func TestFetchAllEmptyServer(t *testing.T) {
	src := &fakeSource{failAt: -1}
	f := newTestFetcher(t, src)

	events, err := f.FetchAll(context.Background(), nil, true)
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
	assert.Equal(t, []int{0}, src.offsets())
}

func TestFetchAllAbortsOnPageFailure(t *testing.T) {
	src := &fakeSource{
		failAt:  1,
		failErr: &engage.APIError{Status: 502, Body: "bad gateway"},
		pages:   [][]domain.Event{makePage(0, 100), makePage(100, 100), makePage(200, 5)},
	}
	f := newTestFetcher(t, src)

	events, err := f.FetchAll(context.Background(), nil, true)
	require.Error(t, err)
	assert.Nil(t, events)
	assert.Equal(t, []int{0, 100}, src.offsets(), "no request after the failing page")

	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 100, pe.Offset)
	assert.Equal(t, 502, pe.Status)
	assert.Equal(t, PageRequestFailed, pe.Kind)
	assert.Contains(t, pe.Error(), "offset 100")
}

func TestFetchAllMalformedResponse(t *testing.T) {
	src := &fakeSource{failAt: 0, failErr: &engage.DecodeError{Err: errors.New("invalid character '<'")}}
	f := newTestFetcher(t, src)

	_, err := f.FetchAll(context.Background(), nil, true)
	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, MalformedResponse, pe.Kind)
	assert.Equal(t, 0, pe.Offset)
}

type blockingSource struct{}

func (blockingSource) SearchEvents(ctx context.Context, p engage.SearchParams) ([]domain.Event, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchAllPerPageTimeout(t *testing.T) {
	f := New(blockingSource{}, 20*time.Millisecond, nil)

	_, err := f.FetchAll(context.Background(), nil, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetchAllCancelled(t *testing.T) {
	f := New(blockingSource{}, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchAll(ctx, nil, true)
	assert.True(t, errors.Is(err, context.Canceled))
}
