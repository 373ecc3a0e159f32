package alert

import (
	"context"
	"log"
)

// MockNotifier implements the Notifier interface by logging alerts to
// stdout. Used in tests and when Resend is not configured.
type MockNotifier struct{}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Publish(_ context.Context, subject, message string) error {
	log.Printf("🚨 [MockAlert] %s: %s", subject, message)
	return nil
}
