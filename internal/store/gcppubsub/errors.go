package gcppubsub

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NissesSenap/interest-sync/internal/reconciler"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// classifyError maps Pub/Sub errors onto the reconciler taxonomy.
//
// Transient (ErrRemoteUnavailable):
//   - gRPC UNAVAILABLE, RESOURCE_EXHAUSTED, DEADLINE_EXCEEDED, ABORTED, INTERNAL
//   - HTTP 429, 500, 502, 503, 504
//   - messages mentioning timeouts, resets, refused connections or broken pipes
//
// Not found (ErrNotFound): gRPC NOT_FOUND, HTTP 404.
// Invalid (ErrInvalidInterest): gRPC INVALID_ARGUMENT, HTTP 400.
//
// Context errors and anything unrecognised are returned unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	// Never reclassify context cancellation
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
			return wrap(reconciler.ErrRemoteUnavailable, err)
		case codes.NotFound:
			return wrap(reconciler.ErrNotFound, err)
		case codes.InvalidArgument:
			return wrap(reconciler.ErrInvalidInterest, err)
		case codes.Canceled:
			return wrap(context.Canceled, err)
		case codes.PermissionDenied, codes.Unauthenticated:
			return err
		}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return wrap(reconciler.ErrRemoteUnavailable, err)
		case 404:
			return wrap(reconciler.ErrNotFound, err)
		case 400:
			return wrap(reconciler.ErrInvalidInterest, err)
		default:
			return err
		}
	}

	errMsg := strings.ToLower(err.Error())
	transientIndicators := []string{
		"timeout",
		"timed out",
		"temporary",
		"connection reset",
		"connection refused",
		"broken pipe",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errMsg, indicator) {
			return wrap(reconciler.ErrRemoteUnavailable, err)
		}
	}

	return err
}

func wrap(kind, err error) error {
	return fmt.Errorf("%w: %w", kind, err)
}
