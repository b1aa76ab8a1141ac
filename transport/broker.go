package transport

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/adamgarcia4/goLearning/turnsync/logger"
)

// Broker is the networked message bus peers connect to with Client.
// Messages are fanned out through a Hub, so per-topic order and
// acknowledged delivery are the same as on the in-process bus.
type Broker struct {
	addr string
	srv  *grpc.Server
	hub  *Hub

	mu  sync.Mutex
	lis net.Listener
}

// NewBroker creates a broker that will listen on addr (host:port)
func NewBroker(addr string) (*Broker, error) {
	if addr == "" || !strings.Contains(addr, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	b := &Broker{
		addr: addr,
		srv:  grpc.NewServer(),
		hub:  NewHub(),
	}
	b.srv.RegisterService(&brokerServiceDesc, &brokerService{hub: b.hub})

	// Register reflection service for gRPC tools (grpcurl, grpcui, etc.)
	reflection.Register(b.srv)
	return b, nil
}

// Start binds the listener synchronously, so a port already in use is
// reported here, then serves in a background goroutine.
func (b *Broker) Start() error {
	lis, err := net.Listen("tcp", b.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	b.Serve(lis)
	return nil
}

// Serve serves on an existing listener in a background goroutine
func (b *Broker) Serve(lis net.Listener) {
	b.mu.Lock()
	b.lis = lis
	b.mu.Unlock()

	go func() {
		if err := b.srv.Serve(lis); err != nil {
			logger.Errorf("broker stopped serving: %v", err)
		}
	}()
	logger.Printf("Broker listening on %s", lis.Addr())
}

// Addr returns the bound address, or the configured one before Start
func (b *Broker) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lis != nil {
		return b.lis.Addr().String()
	}
	return b.addr
}

// Stop closes every subscription stream and the listener
func (b *Broker) Stop() error {
	// Subscriptions never end on their own, GracefulStop would wait forever
	b.srv.Stop()
	if err := b.hub.Close(); err != nil {
		return fmt.Errorf("failed to close hub: %w", err)
	}
	return nil
}

type brokerService struct {
	hub *Hub
}

func (s *brokerService) Publish(ctx context.Context, env *structpb.Struct) (*emptypb.Empty, error) {
	topic, payload := openEnvelope(env)
	if topic == "" {
		return nil, status.Error(codes.InvalidArgument, ErrInvalidTopic.Error())
	}
	if err := s.hub.publish(topic, payload); err != nil {
		return nil, status.Error(codes.Unavailable, err.Error())
	}
	return &emptypb.Empty{}, nil
}

func (s *brokerService) Subscribe(req *wrapperspb.StringValue, stream grpc.ServerStream) error {
	topic := req.GetValue()
	if topic == "" {
		return status.Error(codes.InvalidArgument, ErrInvalidTopic.Error())
	}

	ctx := stream.Context()
	msgs, err := s.hub.subscribe(ctx, topic)
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	// Tell the client the subscription is registered
	if err := stream.SendHeader(metadata.Pairs(subscribedHeader, topic)); err != nil {
		return err
	}

	for msg := range msgs {
		err := stream.SendMsg(newEnvelope(topic, msg.Payload))
		// Ack either way so the publisher is not held up by a dead stream
		msg.Ack()
		if err != nil {
			return err
		}
	}
	return nil
}

func validPayload(payload []byte) error {
	if !utf8.Valid(payload) {
		return ErrInvalidPayload
	}
	return nil
}
