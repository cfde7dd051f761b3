// Package chatbotpb declares the chatbot.v1 gRPC service over protobuf well-known types.
// Requests and replies are google.protobuf.StringValue and google.protobuf.Struct,
// so no generated code is needed on either side.
package chatbotpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName           = "chatbot.v1.ChatbotService"
	AskFullMethodName     = "/" + ServiceName + "/Ask"
	SuggestFullMethodName = "/" + ServiceName + "/Suggest"
)

type ChatbotServiceServer interface {
	Ask(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	Suggest(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterChatbotServiceServer(s grpc.ServiceRegistrar, srv ChatbotServiceServer) {
	s.RegisterService(&ChatbotServiceDesc, srv)
}

var ChatbotServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChatbotServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ask", Handler: askHandler},
		{MethodName: "Suggest", Handler: suggestHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chatbot/v1/chatbot.proto",
}

func askHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatbotServiceServer).Ask(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AskFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatbotServiceServer).Ask(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func suggestHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChatbotServiceServer).Suggest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SuggestFullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ChatbotServiceServer).Suggest(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
