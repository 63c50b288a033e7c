package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and notifiers return these
// (optionally wrapped) so the service can translate them into domain errors.
//
//   - ErrNotFound: no row exists for the requested member id
//   - ErrClosed: the shared handle was already shut down
//   - ErrCorrupt: a stored row holds a value the domain cannot represent
//
// Validation failures use pkg/domain-errors directly.
var (
	ErrNotFound = errors.New("not found")
	ErrClosed   = errors.New("closed")
	ErrCorrupt  = errors.New("corrupt stored value")
)
