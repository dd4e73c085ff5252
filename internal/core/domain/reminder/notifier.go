package reminder

import "context"

// Notifier delivers a text message to a recipient identity. Delivery is
// best-effort, there is no acknowledgment or retry contract.
type Notifier interface {
	Send(ctx context.Context, to Owner, text string) error
}
