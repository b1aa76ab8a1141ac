package transport

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
)

// Hub is an in-process message bus shared by every peer of a simulation and
// by the broker's fan-out. Publish blocks until every current subscriber
// acknowledged the message, which keeps messages of one topic in order.
type Hub struct {
	ch *gochannel.GoChannel
}

// NewHub creates an empty in-memory hub
func NewHub() *Hub {
	ch := gochannel.NewGoChannel(
		gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		},
		watermillLogger{},
	)
	return &Hub{ch: ch}
}

func (h *Hub) publish(topic string, payload []byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := h.ch.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", topic, err)
	}
	return nil
}

func (h *Hub) subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if topic == "" {
		return nil, ErrInvalidTopic
	}
	msgs, err := h.ch.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	return msgs, nil
}

// Connect returns a bus handle for one peer. Handles share the hub but keep
// their own subscriptions, so one peer unsubscribing doesn't affect another.
func (h *Hub) Connect() *Local {
	return &Local{hub: h, subs: newSubscriptions()}
}

// Close shuts the hub down and ends every subscription on it
func (h *Hub) Close() error {
	return h.ch.Close()
}

// Local is a Bus backed by a Hub
type Local struct {
	hub  *Hub
	subs *subscriptions
}

var _ Bus = (*Local)(nil)

// Publish implements Bus
func (l *Local) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if l.subs.isClosed() {
		return ErrClosed
	}
	return l.hub.publish(topic, payload)
}

// Subscribe implements Bus
func (l *Local) Subscribe(ctx context.Context, topic string, handler Handler) error {
	subCtx, cancel := context.WithCancel(ctx)
	msgs, err := l.hub.subscribe(subCtx, topic)
	if err != nil {
		cancel()
		return err
	}
	if err := l.subs.add(topic, cancel); err != nil {
		return err
	}

	go deliver(subCtx, topic, msgs, handler)
	return nil
}

// Unsubscribe implements Bus
func (l *Local) Unsubscribe(topic string) error {
	l.subs.remove(topic)
	return nil
}

// Close implements Bus. The hub itself stays open for the other handles.
func (l *Local) Close() error {
	l.subs.closeAll()
	return nil
}

// deliver runs handler for every message until the subscription channel closes.
// Messages are always acked: a payload the handler rejects would come back
// forever on a Nack.
func deliver(ctx context.Context, topic string, msgs <-chan *message.Message, handler Handler) {
	for msg := range msgs {
		if err := handler(ctx, topic, msg.Payload); err != nil {
			logger.Debugf("handler failed on %s (msg %s): %v", topic, msg.UUID, err)
		}
		msg.Ack()
	}
}

// watermillLogger routes watermill's own logging into the logger package
type watermillLogger struct {
	fields watermill.LogFields
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	logger.Errorf("watermill: %s: %v%s", msg, err, formatFields(w.fields.Add(fields)))
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	logger.Debugf("watermill: %s%s", msg, formatFields(w.fields.Add(fields)))
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	logger.Debugf("watermill: %s%s", msg, formatFields(w.fields.Add(fields)))
}

// Trace is dropped; gochannel traces every single message.
func (w watermillLogger) Trace(string, watermill.LogFields) {}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return watermillLogger{fields: w.fields.Add(fields)}
}

func formatFields(fields watermill.LogFields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	return b.String()
}
