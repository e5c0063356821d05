// Package notify raises desktop notifications for emails that need the
// user's attention right away.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
)

// Notifier delivers an attention-grabbing message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop sends notifications through the operating system's notification
// service.
type Desktop struct{}

// NewDesktop creates a desktop notifier.
func NewDesktop() *Desktop {
	return &Desktop{}
}

// Notify raises a desktop notification.
func (d *Desktop) Notify(title, message string) error {
	if err := beeep.Notify(title, message, ""); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Noop discards notifications. Used in tests and headless environments.
type Noop struct{}

// Notify does nothing.
func (Noop) Notify(title, message string) error {
	return nil
}
