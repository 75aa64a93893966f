package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"campusevents/internal/eventbus"
	"campusevents/internal/logic"
	"campusevents/internal/search"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingSender) count(match func(tea.Msg) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if match(m) {
			n++
		}
	}
	return n
}

func TestAttachForwardsUpdates(t *testing.T) {
	logger := zaptest.NewLogger(t)
	bus := eventbus.New(logger)
	defer bus.Close()

	src := &stubSource{events: sampleEvents()}
	store := logic.NewFeedStore(src, nil, logger)
	idx := search.NewIndex(0, nil, logger)
	defer idx.Close()

	sender := &recordingSender{}
	detach := Attach(sender, store, idx, bus, logger)

	require.NoError(t, store.Refresh(context.Background(), true))
	idx.SetEvents(store.Snapshot().Events)
	bus.Publish(eventbus.ErrorEvent{Message: "boom"})

	isFeed := func(m tea.Msg) bool { _, ok := m.(FeedMsg); return ok }
	isView := func(m tea.Msg) bool { _, ok := m.(ViewMsg); return ok }
	isEvent := func(m tea.Msg) bool { _, ok := m.(EventMsg); return ok }

	// started + completed
	require.Eventually(t, func() bool { return sender.count(isFeed) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return sender.count(isView) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return sender.count(isEvent) == 1 }, time.Second, 5*time.Millisecond)

	detach()
	require.NoError(t, store.Refresh(context.Background(), true))
	assert.Never(t, func() bool { return sender.count(isFeed) > 2 }, 50*time.Millisecond, 5*time.Millisecond)
}

// blockingSender stands in for a program whose event loop is busy
type blockingSender struct {
	release chan struct{}
}

func (b *blockingSender) Send(tea.Msg) { <-b.release }

func TestAttachNeverBlocksTheStore(t *testing.T) {
	logger := zaptest.NewLogger(t)
	store := logic.NewFeedStore(&stubSource{events: sampleEvents()}, nil, logger)
	sender := &blockingSender{release: make(chan struct{})}
	defer close(sender.release)

	detach := Attach(sender, store, nil, nil, logger)
	defer detach()

	done := make(chan error, 1)
	go func() { done <- store.Refresh(context.Background(), true) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("refresh blocked on a busy program")
	}
}
