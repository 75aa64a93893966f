package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"campusevents/internal/eventbus"
	"campusevents/internal/logic"
	"campusevents/internal/search"
)

// Sender is the part of tea.Program the bridge needs
type Sender interface {
	Send(msg tea.Msg)
}

// FeedSubscriber is implemented by logic.FeedStore
type FeedSubscriber interface {
	Subscribe(fn func(logic.Snapshot)) func()
}

// ViewSubscriber is implemented by search.Index
type ViewSubscriber interface {
	Subscribe(fn func(search.View)) func()
}

// Attach forwards store snapshots, search views and error events into the
// running program. Returns a function that detaches every subscription.
//
// Subscribers never block the notifier: the store and the index may notify
// from inside Update, where a blocking Send would wait on its own event loop.
// Sends may therefore arrive out of order and the model drops stale ones.
func Attach(p Sender, feed FeedSubscriber, index ViewSubscriber, bus eventbus.EventBus, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	var detach []func()

	if feed != nil {
		detach = append(detach, feed.Subscribe(func(s logic.Snapshot) {
			go p.Send(FeedMsg{Snapshot: s})
		}))
	}
	if index != nil {
		detach = append(detach, index.Subscribe(func(v search.View) {
			go p.Send(ViewMsg{View: v})
		}))
	}
	if bus != nil {
		detach = append(detach, bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
			logger.Debug("forwarding error event to ui")
			p.Send(EventMsg{Event: e})
		}))
	}

	return func() {
		for _, fn := range detach {
			fn()
		}
	}
}
