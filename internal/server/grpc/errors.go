package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/postbox/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors to gRPC status errors. Anything not
// recognised is logged and reported as codes.Internal.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrMissingArgument),
		errors.Is(err, common.ErrInvalidArgument),
		errors.Is(err, common.ErrReceiverNotFound),
		errors.Is(err, common.ErrSelfSend):
		return status.Error(codes.InvalidArgument, err.Error())

	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "username or email already taken")

	case errors.Is(err, common.ErrTokenExpired):
		return status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())

	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.Unauthenticated, err.Error())

	case errors.Is(err, common.ErrAlreadyAuthenticated):
		return status.Error(codes.FailedPrecondition, err.Error())

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	s.logger.Error(ctx, "unhandled error", "error", err)
	return status.Error(codes.Internal, err.Error())
}
