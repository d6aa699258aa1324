package impl

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/visionex-project/pdftrans/pkg/pipeline"
)

// toStatus maps a pipeline error to a gRPC status. Internal errors are logged and their
// details are not returned to the caller.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, pipeline.ErrResourceNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, pipeline.ErrExtractionFailure):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	log.Printf("Failed to handle request: %v", err)
	return status.Errorf(codes.Internal, codes.Internal.String())
}
