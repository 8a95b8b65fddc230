package playback

// State is the three-valued playback mode, encoded as a byte tag that the
// Controller keeps in an atomic 32-bit word (State32). Unknown byte values
// decode as Live so a torn or stale read never produces an undefined state.
type State uint8

const (
	Live State = iota
	Paused
	TimeShifted
)

// FromByte decodes a raw atomic byte into a State, falling back to Live for
// any value outside the known range.
func FromByte(b uint8) State {
	switch b {
	case uint8(Paused):
		return Paused
	case uint8(TimeShifted):
		return TimeShifted
	default:
		return Live
	}
}

// Label returns the human-readable name shown in the status line.
func (s State) Label() string {
	switch s {
	case Paused:
		return "PAUSED"
	case TimeShifted:
		return "TIME-SHIFTED"
	default:
		return "LIVE"
	}
}

// Symbol returns the short glyph shown next to Label in the status line.
func (s State) Symbol() string {
	switch s {
	case Paused:
		return "||"
	case TimeShifted:
		return "> "
	default:
		return ">>"
	}
}
