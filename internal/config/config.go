package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/redlight-sentinel/internal/domain/motion"
	"github.com/oshokin/redlight-sentinel/internal/domain/sentinel"
	"github.com/oshokin/redlight-sentinel/internal/logger"
	"github.com/oshokin/redlight-sentinel/internal/preprocess"
	"github.com/oshokin/redlight-sentinel/internal/repository/snapshot"
)

// Config holds every setting of a sentinel run.
type Config struct {
	// Camera selects and normalizes the video source.
	Camera Camera `yaml:"camera"`
	// Phases sets the arming and observation windows.
	Phases Phases `yaml:"phases"`
	// Detection tunes the frame comparison.
	Detection Detection `yaml:"detection"`
	// Output controls where alarm frames are written.
	Output Output `yaml:"output"`
	// Display controls the preview window.
	Display Display `yaml:"display"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Camera describes the video source and the preprocessing applied to each frame.
type Camera struct {
	// Device is a camera index ("0"), a video file path or a stream URL.
	Device string `yaml:"device"`
	// FrameWidth is the analysis width in pixels; 0 keeps the native size.
	FrameWidth int `yaml:"frame_width"`
	// BlurSigma is the Gaussian blur sigma; 0 disables blurring.
	BlurSigma float32 `yaml:"blur_sigma"`
}

// Phases holds the session deadlines.
type Phases struct {
	// Arming is the grace period before the reference frame is captured.
	Arming time.Duration `yaml:"arming"`
	// Observation is the window during which motion raises the alarm.
	Observation time.Duration `yaml:"observation"`
}

// Detection holds the motion analyzer knobs.
type Detection struct {
	// DifferenceThreshold is the per-pixel intensity delta (1..254).
	DifferenceThreshold int `yaml:"difference_threshold"`
	// MinRegionArea is the pixel area a region must exceed.
	MinRegionArea int `yaml:"min_region_area"`
	// DilationIterations is the number of 3x3 dilation passes.
	DilationIterations int `yaml:"dilation_iterations"`
}

// Output describes alarm frame persistence.
type Output struct {
	// Directory receives the reference and motion frames.
	Directory string `yaml:"directory"`
	// JPEGQuality is the encoder quality (1..100).
	JPEGQuality int `yaml:"jpeg_quality"`
}

// Display configures the preview window.
type Display struct {
	// Enabled opens a preview window; disable for headless runs.
	Enabled bool `yaml:"enabled"`
	// WindowTitle is the preview window caption.
	WindowTitle string `yaml:"window_title"`
	// SafeHold keeps the final safe frame on screen before exiting.
	SafeHold time.Duration `yaml:"safe_hold"`
}

const (
	// DefaultConfigFilename is the settings file looked up when no path is given.
	DefaultConfigFilename = "redlight-sentinel.yaml"
	// DefaultDevice is the first camera of the system.
	DefaultDevice = "0"
	// DefaultWindowTitle is the preview window caption.
	DefaultWindowTitle = "Red Light, Green Light"
	// DefaultSafeHold is how long the safe banner stays visible.
	DefaultSafeHold = 2 * time.Second
	// DefaultFilePermissions is the mode used when saving settings.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errDeviceRequired is returned when the camera device is empty.
	errDeviceRequired = errors.New("camera device must be provided")
	// errInvalidThreshold is returned when the difference threshold does not fit in 8 bits.
	errInvalidThreshold = errors.New("difference threshold must be in 1..254")
	// errInvalidCamera is returned for negative preprocessing values.
	errInvalidCamera = errors.New("frame width and blur sigma must not be negative")
	// errUnknownLogLevel is returned for an unrecognized log level name.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns the settings of the classic game: 5s arming, 5s watching.
func Default() *Config {
	phases := sentinel.DefaultSettings()
	detection := motion.DefaultOptions()

	return &Config{
		Camera: Camera{
			Device:     DefaultDevice,
			FrameWidth: preprocess.DefaultWidth,
			BlurSigma:  preprocess.DefaultBlurSigma,
		},
		Phases: Phases{
			Arming:      phases.ArmingDuration,
			Observation: phases.ObservationDuration,
		},
		Detection: Detection{
			DifferenceThreshold: int(detection.DifferenceThreshold),
			MinRegionArea:       detection.MinRegionArea,
			DilationIterations:  detection.DilationIterations,
		},
		Output: Output{
			Directory:   snapshot.DefaultDirectory,
			JPEGQuality: snapshot.DefaultJPEGQuality,
		},
		Display: Display{
			Enabled:     true,
			WindowTitle: DefaultWindowTitle,
			SafeHold:    DefaultSafeHold,
		},
		LogLevel: "info",
	}
}

// Load reads settings from path on top of Default and validates them.
// An empty path means DefaultConfigFilename, which may be absent.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err = Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read reads settings from path on top of Default without validating them,
// so callers can apply overrides first. Path handling matches Load.
func Read(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Keep defaults.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills optional fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Camera.Device == "" {
		return errDeviceRequired
	}

	if cfg.Camera.FrameWidth < 0 || cfg.Camera.BlurSigma < 0 {
		return errInvalidCamera
	}

	if err := cfg.PhaseSettings().Validate(); err != nil {
		return err
	}

	// Checked here because the uint8 conversion below would wrap silently.
	if cfg.Detection.DifferenceThreshold < 1 || cfg.Detection.DifferenceThreshold > 254 {
		return fmt.Errorf("%w: %w, got %d",
			motion.ErrInvalidConfiguration, errInvalidThreshold, cfg.Detection.DifferenceThreshold)
	}

	if err := cfg.MotionOptions().Validate(); err != nil {
		return err
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = snapshot.DefaultDirectory
	}

	if cfg.Output.JPEGQuality < 1 || cfg.Output.JPEGQuality > 100 {
		cfg.Output.JPEGQuality = snapshot.DefaultJPEGQuality
	}

	if cfg.Display.WindowTitle == "" {
		cfg.Display.WindowTitle = DefaultWindowTitle
	}

	if cfg.Display.SafeHold < 0 {
		cfg.Display.SafeHold = 0
	}

	return nil
}

// PhaseSettings converts the phase section into controller settings.
func (c *Config) PhaseSettings() sentinel.Settings {
	return sentinel.Settings{
		ArmingDuration:      c.Phases.Arming,
		ObservationDuration: c.Phases.Observation,
	}
}

// MotionOptions converts the detection section into analyzer options.
// Call it only on a validated config.
func (c *Config) MotionOptions() motion.Options {
	return motion.Options{
		DifferenceThreshold: uint8(c.Detection.DifferenceThreshold), //nolint:gosec // Range checked in Validate.
		DilationIterations:  c.Detection.DilationIterations,
		MinRegionArea:       c.Detection.MinRegionArea,
	}
}

// PreprocessOptions converts the camera section into normalizer options.
func (c *Config) PreprocessOptions() preprocess.Options {
	return preprocess.Options{
		Width:     c.Camera.FrameWidth,
		BlurSigma: c.Camera.BlurSigma,
	}
}
