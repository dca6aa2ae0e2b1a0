package mail

import "context"

// Mailer delivers a single HTML message to one recipient. Implementations
// return an error on transport failure; callers decide whether that matters.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
