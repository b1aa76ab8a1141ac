package transport

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
)

// Client is a Bus backed by a remote Broker
type Client struct {
	target string
	conn   *grpc.ClientConn
	subs   *subscriptions
}

var _ Bus = (*Client)(nil)

// Dial creates a client for the broker at target. The connection is
// established lazily on first use.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	if target == "" {
		return nil, fmt.Errorf("%w: empty broker address", ErrInvalidAddress)
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker %s: %w", target, err)
	}
	return &Client{
		target: target,
		conn:   conn,
		subs:   newSubscriptions(),
	}, nil
}

// Publish implements Bus
func (c *Client) Publish(ctx context.Context, topic string, payload []byte) error {
	if c.subs.isClosed() {
		return ErrClosed
	}
	if topic == "" {
		return ErrInvalidTopic
	}
	if err := validPayload(payload); err != nil {
		return err
	}

	out := new(emptypb.Empty)
	if err := c.conn.Invoke(ctx, publishMethod, newEnvelope(topic, payload), out); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", topic, err)
	}
	return nil
}

// Subscribe implements Bus. It returns once the broker confirmed the
// subscription, so nothing published afterwards is missed.
func (c *Client) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	subCtx, cancel := context.WithCancel(ctx)
	stream, err := c.conn.NewStream(subCtx, &brokerServiceDesc.Streams[0], subscribeMethod)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to open subscription to %s: %w", topic, err)
	}
	if err := stream.SendMsg(wrapperspb.String(topic)); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	if err := stream.CloseSend(); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	// Wait for the broker to register the subscription
	if _, err := stream.Header(); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	if err := c.subs.add(topic, cancel); err != nil {
		return err
	}

	go c.receive(subCtx, topic, stream, handler)
	return nil
}

func (c *Client) receive(ctx context.Context, topic string, stream grpc.ClientStream, handler Handler) {
	for {
		env := new(structpb.Struct)
		if err := stream.RecvMsg(env); err != nil {
			if status.Code(err) != codes.Canceled && !errors.Is(err, context.Canceled) {
				logger.Warnf("subscription to %s ended: %v", topic, err)
			}
			return
		}
		_, payload := openEnvelope(env)
		if err := handler(ctx, topic, payload); err != nil {
			logger.Debugf("handler failed on %s: %v", topic, err)
		}
	}
}

// Unsubscribe implements Bus
func (c *Client) Unsubscribe(topic string) error {
	c.subs.remove(topic)
	return nil
}

// Close implements Bus
func (c *Client) Close() error {
	if !c.subs.closeAll() {
		return nil
	}
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection to %s: %w", c.target, err)
	}
	return nil
}
