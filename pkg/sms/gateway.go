package sms

// Gateway sends short text messages to visitors, primarily per-visit gate
// codes. Implementations must be safe for concurrent use.
type Gateway interface {
	Send(phone, message string) error
}
