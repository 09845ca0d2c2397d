package model

// Notifier delivers alert notifications to an external channel (email,
// webhook, ...).
type Notifier interface {
	Send(subject, body string) error
}
