package daemon

// State is the daemon lifecycle state. The zero value is not meaningful;
// a new daemon starts in StateStopped.
type State string

const (
	StateStopped  State = "stopped"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateStopping State = "stopping"
)

func (s State) String() string { return string(s) }
