package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Bus is an in-process publish/subscribe fan-out. Handlers run on the
// publisher's goroutine; they must not block.
type Bus struct {
	mu   sync.Mutex
	subs map[string][]subscription
	log  *zap.Logger
}

type subscription struct {
	ctx     context.Context
	handler func(Event)
}

func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		subs: map[string][]subscription{},
		log:  log,
	}
}

// Publish fans the event out to the stream's live subscribers. Subscriptions
// whose context is done are dropped here, so cancelled handlers do not
// accumulate over the life of the process.
func (b *Bus) Publish(_ context.Context, stream string, event Event) error {
	b.mu.Lock()
	live := b.subs[stream][:0]
	for _, s := range b.subs[stream] {
		if s.ctx.Err() == nil {
			live = append(live, s)
		}
	}
	b.subs[stream] = live

	handlers := make([]func(Event), len(live))
	for i, s := range live {
		handlers[i] = s.handler
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
	b.log.Debug("event published", zap.String("stream", stream), zap.String("type", event.Type))
	return nil
}

// Subscribe registers a handler until ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, stream string, handler func(Event)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs[stream] = append(b.subs[stream], subscription{ctx: ctx, handler: handler})
	return nil
}
