package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wraith-app/wraith/internal/deeplink"
	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/updater"
)

// toStatus maps a domain error onto a gRPC status whose message is the
// human-readable reason.
func toStatus(err error) error {
	var (
		uerr *updater.Error
		lerr *deeplink.Error
		nerr *eventbus.NotificationError
	)
	code := codes.Internal
	switch {
	case errors.As(err, &uerr):
		code = codes.FailedPrecondition
		if uerr.Kind == updater.AlreadyInProgress {
			code = codes.Aborted
		}
	case errors.As(err, &lerr):
		code = codes.InvalidArgument
		if lerr.Kind == deeplink.RegistrationFailed || errors.Is(err, deeplink.ErrNotRegistered) {
			code = codes.FailedPrecondition
		}
	case errors.Is(err, eventbus.ErrEmptyNotification):
		code = codes.InvalidArgument
	case errors.As(err, &nerr):
		code = codes.FailedPrecondition
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Error(code, err.Error())
}
