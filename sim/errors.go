package sim

import "errors"

// Error classes surfaced by the simulator. Callers classify failures with errors.Is;
// both classes are fatal at the point of detection.
var (
	// ErrConfig marks invalid processor, policy, or engine configuration.
	ErrConfig = errors.New("configuration error")
	// ErrStorage marks a missing, unreadable, or malformed workload file.
	ErrStorage = errors.New("storage error")
)
