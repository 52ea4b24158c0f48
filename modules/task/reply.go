package task

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/task-tracker-demo/domain/task"
	"github.com/go-monolith/mono"
)

// replying adapts a handler so failures travel back in the reply envelope.
// The framework sends no reply at all when a handler returns an error.
func replying[Req, Resp any](h func(context.Context, Req, *mono.Msg) (Resp, error)) func(context.Context, Req, *mono.Msg) (Reply[Resp], error) {
	return func(ctx context.Context, req Req, msg *mono.Msg) (Reply[Resp], error) {
		resp, err := h(ctx, req, msg)
		return replyOf(resp, err), nil
	}
}

func replyOf[T any](resp T, err error) Reply[T] {
	if err != nil {
		return Reply[T]{Error: newServiceError(err)}
	}
	return Reply[T]{Data: &resp}
}

func newServiceError(err error) *ServiceError {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return &ServiceError{Code: ErrorCodeValidation, Field: verr.Field, Message: verr.Reason}
	case errors.Is(err, domain.ErrNotFound):
		return &ServiceError{Code: ErrorCodeNotFound, Message: domain.ErrNotFound.Error()}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return &ServiceError{Code: ErrorCodeStoreUnavailable, Message: domain.ErrStoreUnavailable.Error()}
	default:
		return &ServiceError{Code: ErrorCodeInternal, Message: err.Error()}
	}
}

// Err converts e back into the domain error it was built from.
func (e *ServiceError) Err() error {
	switch e.Code {
	case ErrorCodeValidation:
		return domain.NewValidationError(e.Field, e.Message)
	case ErrorCodeNotFound:
		return domain.ErrNotFound
	case ErrorCodeStoreUnavailable:
		return domain.ErrStoreUnavailable
	default:
		return fmt.Errorf("task service: %s", e.Message)
	}
}
