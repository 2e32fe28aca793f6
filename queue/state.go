package queue

// State is where an added emoji is in the approval flow.
type State int

const (
	// NoQueue means the emoji was left alone.
	NoQueue State = iota
	Pending
	Approved
	Denied
	TimedOut
)

func (s State) String() string {
	switch s {
	case NoQueue:
		return "no queue"
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	case TimedOut:
		return "timed out"
	}

	return "unknown"
}

// Terminal reports whether the flow is over for the emoji.
func (s State) Terminal() bool {
	return s != Pending
}
