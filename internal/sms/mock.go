package sms

import (
	"context"
	"log"
	"sync"
)

type Message struct {
	To   string
	Body string
}

// MockSender implements the Sender interface by logging messages and
// recording them in memory. Used in tests and when Twilio credentials
// are not configured.
type MockSender struct {
	mu       sync.Mutex
	messages []Message
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Message{To: to, Body: body})
	log.Printf("📨 [MockSMS] To %s: %s", to, body)
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockSender) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// SentTo returns the bodies of every message sent to a phone number.
func (m *MockSender) SentTo(phone string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bodies []string
	for _, msg := range m.messages {
		if msg.To == phone {
			bodies = append(bodies, msg.Body)
		}
	}
	return bodies
}

// Reset clears the recorded messages.
func (m *MockSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}
