package sentinel

// Phase is the lifecycle state of a session.
type Phase int

const (
	// PhaseArming is the grace period before the reference frame is captured.
	PhaseArming Phase = iota
	// PhaseObserving compares incoming frames against the reference.
	PhaseObserving
	// PhaseSafe is terminal: the observation window ended without motion.
	PhaseSafe
	// PhaseAlarmed is terminal: motion was detected.
	PhaseAlarmed
)

// String returns a lower-case name suitable for logs.
func (p Phase) String() string {
	switch p {
	case PhaseArming:
		return "arming"
	case PhaseObserving:
		return "observing"
	case PhaseSafe:
		return "safe"
	case PhaseAlarmed:
		return "alarmed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions can happen.
func (p Phase) IsTerminal() bool {
	return p == PhaseSafe || p == PhaseAlarmed
}
