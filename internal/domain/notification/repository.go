package notification

import "context"

// Sink hands events to recipient resolution and push delivery.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
