package sms

import "context"

// Sender defines the interface for sending a text message to a phone
// number. This abstraction allows swapping the mock with the real
// Twilio client without refactoring. Delivery failures are returned
// only when the provider rejects the request up front; asynchronous
// delivery status is not tracked here.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}
