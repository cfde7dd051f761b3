package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RolesKey   contextKey = "roles"
)

// UnaryInterceptor rejects calls without a valid bearer token.
// It lets everything through when the manager has no secret.
func UnaryInterceptor(tokens TokenManager) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !tokens.Enabled() {
			return handler(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "metadata is missing")
		}
		values := md.Get("authorization")
		if len(values) == 0 {
			return nil, status.Error(codes.Unauthenticated, "authorization token is missing")
		}

		// Expecting the standard "Bearer <token>" format
		tokenStr := strings.TrimPrefix(values[0], "Bearer ")
		claims, err := tokens.Validate(tokenStr)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid or expired token")
		}

		ctx = context.WithValue(ctx, SubjectKey, claims.Subject)
		ctx = context.WithValue(ctx, RolesKey, claims.Roles)
		return handler(ctx, req)
	}
}
