package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus converts a service error into a gRPC status error. Known
// sentinels keep their message so FromStatus can restore them.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	for _, e := range knownErrors {
		if errors.Is(err, e) {
			return status.Error(codeFor(e), e.Error())
		}
	}
	return status.Error(codes.Internal, ErrInternal.Error())
}

func codeFor(err error) codes.Code {
	switch err {
	case ErrInvalidCredentials, ErrInvalidToken, ErrTokenExpired, ErrNotAuthenticated:
		return codes.Unauthenticated
	case ErrEmailNotConfirmed:
		return codes.FailedPrecondition
	case ErrEmailTaken:
		return codes.AlreadyExists
	case ErrInvalidOTP, ErrOTPExpired, ErrInvalidInput:
		return codes.InvalidArgument
	case ErrNotFound:
		return codes.NotFound
	case ErrUnavailable:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

// FromStatus maps a gRPC error back to a sentinel. Transport failures become
// ErrUnavailable; unknown statuses are wrapped as rpc errors.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}
	if known := ErrorFromMessage(st.Message()); known != nil {
		return known
	}
	return fmt.Errorf("rpc error: %w", err)
}
