package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

/*
Broker service

	service Broker {
	  rpc Publish(google.protobuf.Struct) returns (google.protobuf.Empty);
	  rpc Subscribe(google.protobuf.StringValue) returns (stream google.protobuf.Struct);
	}

An envelope Struct carries two string fields, "topic" and "payload". The
service only uses well-known protobuf types so the descriptor below is all
the generated code it needs.
*/

const (
	brokerServiceName = "turnsync.broker.v1.Broker"
	publishMethod     = "/" + brokerServiceName + "/Publish"
	subscribeMethod   = "/" + brokerServiceName + "/Subscribe"

	envelopeTopic   = "topic"
	envelopePayload = "payload"

	// subscribedHeader is sent once the broker registered a subscription
	subscribedHeader = "x-turnsync-subscribed"
)

// brokerServer is the server side of the Broker service
type brokerServer interface {
	Publish(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	Subscribe(*wrapperspb.StringValue, grpc.ServerStream) error
}

func publishHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(brokerServer).Publish(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: publishMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(brokerServer).Publish(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func subscribeHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(wrapperspb.StringValue)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(brokerServer).Subscribe(in, stream)
}

var brokerServiceDesc = grpc.ServiceDesc{
	ServiceName: brokerServiceName,
	HandlerType: (*brokerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Publish",
			Handler:    publishHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
	Metadata: "turnsync/broker/v1/broker.proto",
}

func newEnvelope(topic string, payload []byte) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			envelopeTopic:   structpb.NewStringValue(topic),
			envelopePayload: structpb.NewStringValue(string(payload)),
		},
	}
}

func openEnvelope(env *structpb.Struct) (topic string, payload []byte) {
	fields := env.GetFields()
	topic = fields[envelopeTopic].GetStringValue()
	payload = []byte(fields[envelopePayload].GetStringValue())
	return topic, payload
}
