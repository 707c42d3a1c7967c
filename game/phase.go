package game

// Phase is the protocol's coarse connection lifecycle stage. It gates which
// packet ids are valid and only ever moves forward, except that a disconnect
// from any phase lands in Closed.
type Phase int32

const (
	PhaseHandshake Phase = iota
	PhaseStatus
	PhaseLogin
	PhasePlay
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseHandshake:
		return "handshake"
	case PhaseStatus:
		return "status"
	case PhaseLogin:
		return "login"
	case PhasePlay:
		return "play"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}
