package application

import "context"

// Worker is a long-running background loop.
// Start blocks until ctx is canceled or Stop is called; Stop waits for
// in-flight work to finish.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
