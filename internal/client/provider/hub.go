package provider

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/campushub/internal/logging"
)

const subscriptionQueueSize = 64

// hub fans auth events out to subscriptions.
type hub struct {
	mu     sync.Mutex
	subs   map[uint64]*subscription
	next   uint64
	logger logging.Logger
}

func newHub(l logging.Logger) *hub {
	return &hub{subs: make(map[uint64]*subscription), logger: l}
}

type subscription struct {
	h        *hub
	id       uint64
	listener Listener
	queue    chan AuthEvent
	done     chan struct{}
	once     sync.Once
}

// add registers listener. The subscription goroutine first delivers the
// event built by initial, then everything published afterwards.
func (h *hub) add(listener Listener, initial func() AuthEvent) *subscription {
	h.mu.Lock()
	h.next++
	s := &subscription{
		h:        h,
		id:       h.next,
		listener: listener,
		queue:    make(chan AuthEvent, subscriptionQueueSize),
		done:     make(chan struct{}),
	}
	h.subs[s.id] = s
	h.mu.Unlock()

	go s.run(initial)
	return s
}

func (h *hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

func (h *hub) publish(ev AuthEvent) {
	h.mu.Lock()
	subs := make([]*subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		select {
		case s.queue <- ev:
		case <-s.done:
		}
	}
}

func (h *hub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *subscription) run(initial func() AuthEvent) {
	ev := initial()
	if !s.deliver(ev) {
		return
	}
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.queue:
			if !s.deliver(ev) {
				return
			}
		}
	}
}

// deliver calls the listener unless the subscription is already released.
// A panicking listener is logged and does not kill the subscription.
func (s *subscription) deliver(ev AuthEvent) (ok bool) {
	select {
	case <-s.done:
		return false
	default:
	}

	ok = true
	defer func() {
		if p := recover(); p != nil {
			s.h.logger.Error(context.Background(), "auth listener panicked", "event", ev.Type, "panic", p)
		}
	}()
	s.listener(ev)
	return ok
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.h.remove(s.id)
		close(s.done)
	})
}
