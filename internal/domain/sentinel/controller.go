package sentinel

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/oshokin/redlight-sentinel/internal/domain/motion"
)

const (
	// DefaultArmingDuration is the grace period before the reference frame is captured.
	DefaultArmingDuration = 5 * time.Second
	// DefaultObservationDuration is the window during which motion is watched for.
	DefaultObservationDuration = 5 * time.Second
)

// ErrInvalidConfiguration is returned when controller settings are not positive.
var ErrInvalidConfiguration = errors.New("invalid phase configuration")

// Settings holds the phase deadlines of a session.
type Settings struct {
	// ArmingDuration is the time from session start until the reference is captured.
	ArmingDuration time.Duration
	// ObservationDuration is the time after capture during which motion raises the alarm.
	ObservationDuration time.Duration
}

// DefaultSettings returns 5s of arming followed by 5s of observation.
func DefaultSettings() Settings {
	return Settings{
		ArmingDuration:      DefaultArmingDuration,
		ObservationDuration: DefaultObservationDuration,
	}
}

// Validate checks that both durations are positive.
func (s Settings) Validate() error {
	if s.ArmingDuration <= 0 {
		return fmt.Errorf("%w: arming duration must be positive, got %s", ErrInvalidConfiguration, s.ArmingDuration)
	}

	if s.ObservationDuration <= 0 {
		return fmt.Errorf("%w: observation duration must be positive, got %s",
			ErrInvalidConfiguration, s.ObservationDuration)
	}

	return nil
}

// ActionKind tells the caller what to do with the frame passed to Advance.
type ActionKind int

const (
	// ActionIgnore means the session is over and the frame is not used.
	ActionIgnore ActionKind = iota
	// ActionAwaitArming means the arming countdown is still running.
	ActionAwaitArming
	// ActionReferenceCaptured means the frame became the reference.
	ActionReferenceCaptured
	// ActionAnalyze means the frame must be compared against Action.Reference.
	ActionAnalyze
)

// String returns a lower-case name suitable for logs.
func (k ActionKind) String() string {
	switch k {
	case ActionIgnore:
		return "ignore"
	case ActionAwaitArming:
		return "await_arming"
	case ActionReferenceCaptured:
		return "reference_captured"
	case ActionAnalyze:
		return "analyze"
	default:
		return "unknown"
	}
}

// Action is the per-frame decision returned by Advance.
type Action struct {
	// Kind selects what the caller should do.
	Kind ActionKind
	// Remaining is the time left in the current phase (AwaitArming and Analyze only).
	// It may be zero or negative for Analyze when the caller is late.
	Remaining time.Duration
	// Reference is the captured reference frame (Analyze only). It must not be modified.
	Reference *image.Gray
}

// OutcomeKind is the result of recording a verdict.
type OutcomeKind int

const (
	// OutcomeContinue keeps the session observing.
	OutcomeContinue OutcomeKind = iota
	// OutcomeSafe ends the session without motion.
	OutcomeSafe
	// OutcomeAlarmed ends the session because motion was detected.
	OutcomeAlarmed
)

// String returns a lower-case name suitable for logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContinue:
		return "continue"
	case OutcomeSafe:
		return "safe"
	case OutcomeAlarmed:
		return "alarmed"
	default:
		return "unknown"
	}
}

// Outcome is returned by RecordVerdict.
type Outcome struct {
	// Kind is the session decision.
	Kind OutcomeKind
	// Regions holds the motion regions that raised the alarm (Alarmed only).
	Regions []motion.Region
}

// Controller owns the phase, the deadlines and the reference frame of one session.
// It is not safe for concurrent use.
type Controller struct {
	settings         Settings
	phase            Phase
	sessionStart     time.Time
	observationStart time.Time
	reference        *image.Gray
	alarmRegions     []motion.Region
}

// NewController starts a session at start in PhaseArming.
func NewController(start time.Time, settings Settings) (*Controller, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Controller{
		settings:     settings,
		phase:        PhaseArming,
		sessionStart: start,
	}, nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Reference returns the captured reference frame, or nil while arming.
func (c *Controller) Reference() *image.Gray {
	return c.reference
}

// Advance decides what to do with the frame observed at now.
func (c *Controller) Advance(now time.Time, frame *image.Gray) Action {
	switch c.phase {
	case PhaseArming:
		remaining := c.settings.ArmingDuration - now.Sub(c.sessionStart)
		// A missing frame cannot become the reference; wait for the next one.
		if remaining > 0 || frame == nil {
			return Action{
				Kind:      ActionAwaitArming,
				Remaining: max(remaining, 0),
			}
		}

		c.reference = cloneGray(frame)
		c.observationStart = now
		c.phase = PhaseObserving

		return Action{Kind: ActionReferenceCaptured}
	case PhaseObserving:
		return Action{
			Kind:      ActionAnalyze,
			Remaining: c.observationRemaining(now),
			Reference: c.reference,
		}
	default:
		return Action{Kind: ActionIgnore}
	}
}

// RecordVerdict applies the verdict of the frame observed at now.
// Motion wins over an expired window. Outside PhaseObserving no transition
// happens: arming yields Continue and terminal phases repeat their outcome.
func (c *Controller) RecordVerdict(verdict motion.Verdict, now time.Time) Outcome {
	if c.phase != PhaseObserving {
		return c.settledOutcome()
	}

	if verdict.IsMotion() {
		c.phase = PhaseAlarmed
		c.alarmRegions = verdict.Regions

		return Outcome{Kind: OutcomeAlarmed, Regions: verdict.Regions}
	}

	if c.observationRemaining(now) <= 0 {
		c.phase = PhaseSafe
		return Outcome{Kind: OutcomeSafe}
	}

	return Outcome{Kind: OutcomeContinue}
}

// settledOutcome reports the outcome matching a phase that is not observing.
func (c *Controller) settledOutcome() Outcome {
	switch c.phase {
	case PhaseSafe:
		return Outcome{Kind: OutcomeSafe}
	case PhaseAlarmed:
		return Outcome{Kind: OutcomeAlarmed, Regions: c.alarmRegions}
	default:
		return Outcome{Kind: OutcomeContinue}
	}
}

func (c *Controller) observationRemaining(now time.Time) time.Duration {
	return c.settings.ObservationDuration - now.Sub(c.observationStart)
}

// cloneGray copies img so later writes to the caller's buffer cannot change the reference.
func cloneGray(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := img.Pix[img.PixOffset(bounds.Min.X, y):]
		dst := out.Pix[out.PixOffset(bounds.Min.X, y):]
		copy(dst[:bounds.Dx()], src[:bounds.Dx()])
	}

	return out
}
