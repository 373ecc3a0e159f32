package alert

import "context"

// Notifier defines the interface for raising operational alerts, e.g.
// when a user record carries a setup stage this service does not
// understand. This abstraction allows swapping the mock with the real
// email integration without refactoring.
type Notifier interface {
	Publish(ctx context.Context, subject, message string) error
}
