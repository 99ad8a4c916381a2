package link

// State is the link status seen by the scheduler. Anything that is not
// verified reachable counts as Disconnected.
type State int

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	switch s {
	case Connected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}
