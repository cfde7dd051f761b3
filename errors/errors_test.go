package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMapToGRPCError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"empty message", ErrEmptyMessage, codes.InvalidArgument},
		{"wrapped too long", fmt.Errorf("ask: %w", ErrMessageTooLong), codes.InvalidArgument},
		{"artifacts", fmt.Errorf("%w: model", ErrArtifactLoad), codes.Unavailable},
		{"unknown", fmt.Errorf("boom"), codes.Internal},
		{"already a status", status.Error(codes.NotFound, "missing"), codes.NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			st, ok := status.FromError(MapToGRPCError(tt.err))
			req.True(ok)
			req.Equal(tt.code, st.Code())
		})
	}
}

func TestMapToGRPCError_Nil(t *testing.T) {
	require.NoError(t, MapToGRPCError(nil))
}
