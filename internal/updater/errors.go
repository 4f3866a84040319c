package updater

import (
	"errors"
	"fmt"
)

// ErrorKind classifies update failures.
type ErrorKind int

const (
	CheckFailed ErrorKind = iota
	DownloadFailed
	InstallFailed
	AlreadyInProgress
)

func (k ErrorKind) String() string {
	switch k {
	case CheckFailed:
		return "update check failed"
	case DownloadFailed:
		return "update download failed"
	case InstallFailed:
		return "update install failed"
	case AlreadyInProgress:
		return "an update operation is already in progress"
	default:
		return "update failed"
	}
}

// Error is returned by Manager operations. Its message is the
// human-readable reason shown to the user.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == kind
}
