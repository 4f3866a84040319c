package eventbus

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gen2brain/beeep"
	log "github.com/sirupsen/logrus"
)

// ErrEmptyNotification is returned when both title and body are empty.
var ErrEmptyNotification = errors.New("notification has no title or body")

// NotificationError reports a notification that could not be shown.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("show notification failed: %v", e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Notifier surfaces native notifications.
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier shows notifications through the OS notification center.
type DesktopNotifier struct {
	enabled atomic.Bool
	icon    string
	notify  func(title, body, icon string) error
}

// NewDesktopNotifier creates a notifier. icon is an optional path to an image.
func NewDesktopNotifier(icon string, enabled bool) *DesktopNotifier {
	n := &DesktopNotifier{
		icon: icon,
		notify: func(title, body, icon string) error {
			return beeep.Notify(title, body, icon)
		},
	}
	n.enabled.Store(enabled)
	return n
}

// SetEnabled toggles delivery. Disabled notifications are skipped without error.
func (n *DesktopNotifier) SetEnabled(enabled bool) {
	n.enabled.Store(enabled)
}

// Notify shows a notification. Failures are returned, never escalated.
func (n *DesktopNotifier) Notify(title, body string) error {
	if title == "" && body == "" {
		return &NotificationError{Err: ErrEmptyNotification}
	}
	if !n.enabled.Load() {
		log.Debugf("[notify] Notifications disabled, skipping %q", title)
		return nil
	}
	if err := n.notify(title, body, n.icon); err != nil {
		return &NotificationError{Err: err}
	}
	return nil
}
