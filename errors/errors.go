package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrResourceUnavailable = fmt.Errorf("lexical resource unavailable")
	ErrArtifactLoad        = fmt.Errorf("artifact load failure")
	ErrArtifactMismatch    = fmt.Errorf("artifacts do not belong to the same training run")
	ErrNoTrainingRun       = fmt.Errorf("no training run has been persisted")
	ErrEmptyCorpus         = fmt.Errorf("corpus is empty")
	ErrInvalidCorpus       = fmt.Errorf("corpus does not match the expected schema")
	ErrPatternProcessing   = fmt.Errorf("pattern could not be processed")
	ErrEmptyMessage        = fmt.Errorf("message is empty")
	ErrMessageTooLong      = fmt.Errorf("message is too long")
)

// MapToGRPCError translates domain errors into gRPC status errors.
// Errors already carrying a status are returned untouched.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, ErrEmptyMessage), stderrors.Is(err, ErrMessageTooLong):
		return status.Error(codes.InvalidArgument, err.Error())
	case stderrors.Is(err, ErrArtifactLoad), stderrors.Is(err, ErrResourceUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "an error occurred processing your request")
	}
}
