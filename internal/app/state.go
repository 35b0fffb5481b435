package app

// searchState tracks the lifecycle of the current scan. The shell moves
// Idle -> Running -> (Completed | Cancelled | Failed) -> Idle.
type searchState int

const (
	stateIdle searchState = iota
	stateRunning
	stateCompleted
	stateCancelled
	stateFailed
)

func (s searchState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRunning:
		return "running"
	case stateCompleted:
		return "completed"
	case stateCancelled:
		return "cancelled"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}
