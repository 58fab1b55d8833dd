package sentinel

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/oshokin/redlight-sentinel/internal/config"
	"github.com/oshokin/redlight-sentinel/internal/domain/motion"
	domain "github.com/oshokin/redlight-sentinel/internal/domain/sentinel"
	"github.com/oshokin/redlight-sentinel/internal/logger"
	"github.com/oshokin/redlight-sentinel/internal/overlay"
	"github.com/oshokin/redlight-sentinel/internal/preprocess"
	"github.com/oshokin/redlight-sentinel/internal/repository/snapshot"
)

// Result summarizes a finished session.
type Result struct {
	// Phase is the phase the session ended in; non-terminal when stopped early.
	Phase domain.Phase
	// Regions holds the regions that raised the alarm.
	Regions []motion.Region
	// Files lists the frames written on alarm.
	Files []string
}

// Alarmed reports whether the session ended with motion.
func (r *Result) Alarmed() bool {
	return r.Phase == domain.PhaseAlarmed
}

// session is the synchronous frame loop of one run.
// One frame is read, judged and rendered before the next is requested.
type session struct {
	source      FrameSource
	display     Display
	store       snapshot.Repository
	normalizer  *preprocess.Normalizer
	controller  *domain.Controller
	detection   motion.Options
	observation time.Duration
	safeHold    time.Duration
	now         func() time.Time

	// reference is the colour frame captured together with the grayscale reference.
	reference image.Image
}

// newSession starts the phase controller at now().
// A nil display runs the loop headless.
func newSession(
	cfg *config.Config,
	source FrameSource,
	display Display,
	store snapshot.Repository,
	now func() time.Time,
) (*session, error) {
	detection := cfg.MotionOptions()
	if err := detection.Validate(); err != nil {
		return nil, err
	}

	controller, err := domain.NewController(now(), cfg.PhaseSettings())
	if err != nil {
		return nil, err
	}

	return &session{
		source:      source,
		display:     display,
		store:       store,
		normalizer:  preprocess.New(cfg.PreprocessOptions()),
		controller:  controller,
		detection:   detection,
		observation: cfg.Phases.Observation,
		safeHold:    cfg.Display.SafeHold,
		now:         now,
	}, nil
}

// run loops until the session reaches a terminal phase, the user quits or ctx is canceled.
func (s *session) run(ctx context.Context) (*Result, error) {
	result := new(Result)

	for {
		if ctx.Err() != nil {
			logger.Info(ctx, "Session interrupted")

			result.Phase = s.controller.Phase()

			return result, nil
		}

		frame, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}

			return nil, fmt.Errorf("read frame: %w", err)
		}

		done, err := s.handleFrame(ctx, frame, result)
		if err != nil {
			return nil, err
		}

		if done {
			result.Phase = s.controller.Phase()
			return result, nil
		}
	}
}

// handleFrame runs one frame through the controller and reports whether the loop must stop.
func (s *session) handleFrame(ctx context.Context, frame image.Image, result *Result) (bool, error) {
	now := s.now()
	gray := s.normalizer.Normalize(frame)
	action := s.controller.Advance(now, gray)

	switch action.Kind {
	case domain.ActionAwaitArming:
		return s.show(ctx, frame, overlay.Annotation{
			Lines: []overlay.Line{overlay.ArmingCountdown(action.Remaining)},
		})
	case domain.ActionReferenceCaptured:
		s.reference = frame

		logger.InfoKV(ctx, "Reference frame captured",
			"width", gray.Bounds().Dx(), "height", gray.Bounds().Dy())

		return s.show(ctx, frame, overlay.Annotation{
			Lines: []overlay.Line{overlay.ObservationCountdown(s.observation)},
		})
	case domain.ActionAnalyze:
		return s.observe(ctx, now, frame, gray, action, result)
	default:
		return true, nil
	}
}

// observe compares the frame with the reference and applies the verdict.
func (s *session) observe(
	ctx context.Context,
	now time.Time,
	frame image.Image,
	gray *image.Gray,
	action domain.Action,
	result *Result,
) (bool, error) {
	verdict, err := motion.Analyze(action.Reference, gray, s.detection)
	if err != nil {
		return false, fmt.Errorf("analyze frame: %w", err)
	}

	outcome := s.controller.RecordVerdict(verdict, now)

	annotation := overlay.Annotation{
		Lines: []overlay.Line{
			overlay.ObservationCountdown(action.Remaining),
			overlay.MotionStatus(verdict.IsMotion()),
		},
		Regions: verdict.Regions,
		Scale:   s.normalizer.Scale(frame.Bounds()),
	}

	switch outcome.Kind {
	case domain.OutcomeAlarmed:
		result.Regions = outcome.Regions

		annotated, err := overlay.Annotate(frame, annotation)
		if err != nil {
			return false, fmt.Errorf("annotate frame: %w", err)
		}

		files, err := s.persist(ctx, now, annotated)
		if err != nil {
			return false, err
		}

		result.Files = files

		logger.WarnKV(ctx, "Motion detected! Saved reference and motion frames",
			"regions", len(outcome.Regions), "largest_area", largestArea(outcome.Regions), "files", files)

		if s.display != nil {
			s.display.Show(annotated)
		}

		return true, nil
	case domain.OutcomeSafe:
		logger.Info(ctx, "No movement detected, safe")

		if s.display != nil {
			annotation.Lines = append(annotation.Lines, overlay.SafeBanner())

			annotated, err := overlay.Annotate(frame, annotation)
			if err != nil {
				return false, fmt.Errorf("annotate frame: %w", err)
			}

			s.display.Show(annotated)
			s.display.Hold(s.safeHold)
		}

		return true, nil
	default:
		logger.DebugKV(ctx, "Frame observed", "remaining", action.Remaining.String())

		return s.show(ctx, frame, annotation)
	}
}

// persist writes the colour reference and the annotated motion frame under the same key.
func (s *session) persist(ctx context.Context, key time.Time, motionFrame image.Image) ([]string, error) {
	frames := []struct {
		kind snapshot.Kind
		img  image.Image
	}{
		{kind: snapshot.KindReference, img: s.reference},
		{kind: snapshot.KindMotion, img: motionFrame},
	}

	files := make([]string, 0, len(frames))

	for _, f := range frames {
		path, err := s.store.Save(ctx, key, f.kind, f.img)
		if err != nil {
			return files, fmt.Errorf("save %s: %w", f.kind, err)
		}

		files = append(files, path)
	}

	return files, nil
}

// show renders the annotated frame and reports whether the user asked to quit.
func (s *session) show(ctx context.Context, frame image.Image, annotation overlay.Annotation) (bool, error) {
	if s.display == nil {
		return false, nil
	}

	annotated, err := overlay.Annotate(frame, annotation)
	if err != nil {
		return false, fmt.Errorf("annotate frame: %w", err)
	}

	if !s.display.Show(annotated) {
		return false, nil
	}

	logger.InfoKV(ctx, "Stopped by user", "phase", s.controller.Phase().String())

	return true, nil
}

func largestArea(regions []motion.Region) int {
	largest := 0
	for _, r := range regions {
		largest = max(largest, r.Area)
	}

	return largest
}
