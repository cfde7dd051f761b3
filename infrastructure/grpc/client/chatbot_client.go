package client

import (
	"chatbot-lab/infrastructure/grpc/chatbotpb"
	"chatbot-lab/search"
	"chatbot-lab/services"
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChatbotClient calls a remote chatbot.v1.ChatbotService.
// When a token is set it is sent as a bearer authorization header on every call.
type ChatbotClient struct {
	conn  grpc.ClientConnInterface
	token string
}

func NewChatbotClient(conn grpc.ClientConnInterface, token string) *ChatbotClient {
	return &ChatbotClient{conn: conn, token: token}
}

func (c *ChatbotClient) Ask(ctx context.Context, text string, opts ...grpc.CallOption) (services.Reply, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), chatbotpb.AskFullMethodName, wrapperspb.String(text), out, opts...); err != nil {
		return services.Reply{}, err
	}
	return chatbotpb.DecodeReply(out)
}

func (c *ChatbotClient) Suggest(ctx context.Context, text string, limit int, opts ...grpc.CallOption) ([]search.Suggestion, error) {
	in, err := chatbotpb.EncodeSuggestRequest(text, limit)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(c.outgoing(ctx), chatbotpb.SuggestFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return chatbotpb.DecodeSuggestions(out)
}

func (c *ChatbotClient) outgoing(ctx context.Context) context.Context {
	if c.token == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
}
