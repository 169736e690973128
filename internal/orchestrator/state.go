package orchestrator

import "fmt"

type State int

const (
	Idle State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// validTransitions lists where each state may go next. A finished
// orchestrator can start another run.
var validTransitions = map[State][]State{
	Idle:      {Running},
	Running:   {Completed, Failed},
	Completed: {Running},
	Failed:    {Running},
}

func canTransition(from, to State) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
