package transport

import (
	"context"
	"sync"
)

/*
Transport

Peers talk over a topic-based publish/subscribe bus. Each peer publishes its
own states on one topic and subscribes to the topics of every other peer.
The bus must deliver messages of one topic in publish order; duplicates are
tolerated by the receiver.

Two implementations:
	Local  - in-process bus over a watermill GoChannel (tests, `simulate`)
	Client - networked bus talking to a Broker over gRPC (`play`)

Handlers run on a receiving goroutine owned by the subscription, one message
at a time. A handler must not publish: with acknowledged delivery the
publisher waits for every subscriber, so a publishing handler could wait on
itself.
*/

// Handler processes one received message
type Handler func(ctx context.Context, topic string, payload []byte) error

// Bus is the contract the peer needs from the transport
type Bus interface {
	// Publish sends payload on topic
	Publish(ctx context.Context, topic string, payload []byte) error
	// Subscribe starts delivering messages on topic to handler. It returns
	// once the subscription is live; delivery stops when ctx is cancelled,
	// on Unsubscribe or on Close.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	// Unsubscribe stops delivery for topic. Unknown topics are ignored.
	Unsubscribe(topic string) error
	// Close drops every subscription and releases the connection
	Close() error
}

// subscriptions tracks the cancel func of every live subscription of one bus handle
type subscriptions struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
}

func newSubscriptions() *subscriptions {
	return &subscriptions{cancels: make(map[string]context.CancelFunc)}
}

// add registers cancel for topic, replacing (and cancelling) a previous subscription
func (s *subscriptions) add(topic string, cancel context.CancelFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		cancel()
		return ErrClosed
	}
	if old, ok := s.cancels[topic]; ok {
		old()
	}
	s.cancels[topic] = cancel
	return nil
}

func (s *subscriptions) remove(topic string) bool {
	s.mu.Lock()
	cancel, ok := s.cancels[topic]
	delete(s.cancels, topic)
	s.mu.Unlock()

	if ok {
		cancel()
	}
	return ok
}

func (s *subscriptions) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// closeAll cancels every subscription. It returns false if already closed.
func (s *subscriptions) closeAll() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	cancels := s.cancels
	s.cancels = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return true
}
