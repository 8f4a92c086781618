package port

import "context"

// Message is a fully rendered outbound email.
type Message struct {
	To      string
	Subject string
	HTML    []byte
}

// Mailer renders named templates and hands finished messages to the outbound
// transport.
type Mailer interface {
	Render(template string, data any) ([]byte, error)
	Send(ctx context.Context, msg Message) error
}
