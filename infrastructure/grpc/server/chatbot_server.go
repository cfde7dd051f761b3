package server

import (
	"chatbot-lab/errors"
	"chatbot-lab/infrastructure/grpc/chatbotpb"
	"chatbot-lab/services"
	"context"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ChatbotServer struct {
	chatService     services.IChatService
	log             *slog.Logger
	suggestionLimit int
}

// NewChatbotServer exposes the chat service over gRPC.
// suggestionLimit caps how many suggestions a single call may return.
func NewChatbotServer(log *slog.Logger, chatService services.IChatService, suggestionLimit int) *ChatbotServer {
	return &ChatbotServer{chatService: chatService, log: log, suggestionLimit: suggestionLimit}
}

func (s *ChatbotServer) Ask(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	reply, err := s.chatService.Ask(ctx, req.GetValue())
	if err != nil {
		s.log.Debug("Ask rejected", "error", err)
		return nil, errors.MapToGRPCError(err)
	}
	out, err := chatbotpb.EncodeReply(reply)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding reply: %v", err)
	}
	return out, nil
}

func (s *ChatbotServer) Suggest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, limit := chatbotpb.DecodeSuggestRequest(req)
	if limit <= 0 || limit > s.suggestionLimit {
		limit = s.suggestionLimit
	}
	suggestions, err := s.chatService.Suggest(ctx, text, limit)
	if err != nil {
		s.log.Warn("Suggest failed", "error", err)
		return nil, errors.MapToGRPCError(err)
	}
	out, err := chatbotpb.EncodeSuggestions(suggestions)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding suggestions: %v", err)
	}
	return out, nil
}
