// Package browser manages remote Chrome sessions for portals that render
// their tender listings with JavaScript. Sessions are leased from a shared
// DevTools grid and bounded by a semaphore so a scan cycle can never exhaust
// the grid's node capacity.
package browser

import "errors"

var (
	// ErrGridUnavailable is returned when the DevTools grid does not answer
	// its health endpoint.
	ErrGridUnavailable = errors.New("browser grid unavailable")

	// ErrPoolClosed is returned when a session is requested after Close.
	ErrPoolClosed = errors.New("browser pool closed")

	// ErrSessionFailed is returned when a session could not be created after
	// the configured number of attempts.
	ErrSessionFailed = errors.New("browser session creation failed")
)
