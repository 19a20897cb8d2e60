package poller

// State is the stage of the poll loop.
//
//	IDLE → FETCHING → VALIDATING → DIFFING → NOTIFYING → SLEEPING → FETCHING …
//
// An iteration can jump to SLEEPING from any stage on error or when there is
// nothing to notify.
type State int32

const (
	StateIdle State = iota
	StateFetching
	StateValidating
	StateDiffing
	StateNotifying
	StateSleeping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateValidating:
		return "validating"
	case StateDiffing:
		return "diffing"
	case StateNotifying:
		return "notifying"
	case StateSleeping:
		return "sleeping"
	default:
		return "unknown"
	}
}
