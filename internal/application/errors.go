package application

import "errors"

// Errors returned by repository implementations. The application layer
// translates them into domain errors before they reach callers.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForeignKey = errors.New("foreign key violation")
)

// ErrTickBusy is returned by a synchronous tick request while another tick
// is running, here or in another process sharing the tick lock.
var ErrTickBusy = errors.New("tick already running")
