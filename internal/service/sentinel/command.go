package sentinel

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/redlight-sentinel/internal/config"
	"github.com/oshokin/redlight-sentinel/internal/logger"
	"github.com/oshokin/redlight-sentinel/internal/repository/snapshot"
	"github.com/oshokin/redlight-sentinel/internal/service/common"
)

// FrameSource yields colour frames, one per call.
type FrameSource interface {
	Read(ctx context.Context) (image.Image, error)
	Close() error
}

// Display shows annotated frames.
type Display interface {
	// Show renders img and reports whether the user asked to quit.
	Show(img image.Image) bool
	// Hold keeps the last frame visible for d.
	Hold(d time.Duration)
	Close() error
}

// SourceOpener opens the frame source for a device string.
type SourceOpener func(device string) (FrameSource, error)

// DisplayOpener opens a preview window with the given title.
type DisplayOpener func(title string) (Display, error)

// Options controls a sentinel run.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Device overrides the camera device from the settings.
	Device string
	// OutputDir overrides the directory for alarm frames.
	OutputDir string
	// LogLevel overrides the log level from the settings.
	LogLevel string
	// Headless disables the preview window.
	Headless bool
	// OpenSource opens the camera.
	OpenSource SourceOpener
	// OpenDisplay opens the preview window; unused when headless.
	OpenDisplay DisplayOpener
}

var (
	// ErrMotionDetected is returned when the session ends because something moved.
	ErrMotionDetected = errors.New("motion detected")
	// errSourceOpenerRequired is returned when Options has no camera opener.
	errSourceOpenerRequired = errors.New("frame source opener must be provided")
)

// Run plays one session and blocks until it is safe, alarmed, stopped by the
// user or canceled through ctx. It returns ErrMotionDetected when alarmed.
//
//nolint:funlen // Linear wiring of the collaborators reads best in one place.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "redlight-sentinel")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	if opts.OpenSource == nil {
		return errSourceOpenerRequired
	}

	// Two sentinels cannot share one camera.
	if err = common.EnsureSingleInstance(ctx, common.ExecutableName()); err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "session_id", uuid.NewString())

	if operator, detectErr := common.DetectOperator(); detectErr == nil {
		ctx = logger.WithKV(ctx, "operator", operator.String())
	} else {
		logger.WarnKV(ctx, "Could not detect operator", "error", detectErr)
	}

	source, err := opts.OpenSource(cfg.Camera.Device)
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}

	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to release camera", "error", closeErr)
		}
	}()

	var display Display

	if cfg.Display.Enabled && opts.OpenDisplay != nil {
		display, err = opts.OpenDisplay(cfg.Display.WindowTitle)
		if err != nil {
			return fmt.Errorf("open display: %w", err)
		}

		defer func() {
			if closeErr := display.Close(); closeErr != nil {
				logger.WarnKV(ctx, "Failed to close preview window", "error", closeErr)
			}
		}()
	}

	store := snapshot.NewFileRepository(cfg.Output.Directory, cfg.Output.JPEGQuality)

	s, err := newSession(cfg, source, display, store, time.Now)
	if err != nil {
		return fmt.Errorf("initialise session: %w", err)
	}

	logger.InfoKV(ctx, "Session started",
		"device", cfg.Camera.Device,
		"arming", cfg.Phases.Arming.String(),
		"observation", cfg.Phases.Observation.String(),
		"min_region_area", cfg.Detection.MinRegionArea,
		"output_dir", store.Dir(),
		"display", display != nil,
	)

	result, err := s.run(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Session finished", "phase", result.Phase.String(), "files", result.Files)

	if result.Alarmed() {
		return ErrMotionDetected
	}

	return nil
}

// loadConfig reads the settings file, applies command line overrides and
// validates the result once.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Read(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.Device != "" {
		cfg.Camera.Device = opts.Device
	}

	if opts.OutputDir != "" {
		cfg.Output.Directory = opts.OutputDir
	}

	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	if opts.Headless {
		cfg.Display.Enabled = false
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}
