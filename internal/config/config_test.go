package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/redlight-sentinel/internal/domain/motion"
	"github.com/oshokin/redlight-sentinel/internal/domain/sentinel"
)

// TestDefault_IsValid ensures the built-in settings pass validation and match the classic game.
func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))
	require.Equal(t, 5*time.Second, cfg.Phases.Arming)
	require.Equal(t, 5*time.Second, cfg.Phases.Observation)
	require.Equal(t, motion.DefaultOptions(), cfg.MotionOptions())
	require.Equal(t, 750, cfg.PreprocessOptions().Width)
}

// TestValidate checks that invalid phase and detection values surface the domain errors.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := Default()
	cfg.Camera.Device = ""
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Phases.Observation = 0
	require.ErrorIs(t, Validate(cfg), sentinel.ErrInvalidConfiguration)

	cfg = Default()
	cfg.Phases.Arming = -time.Second
	require.ErrorIs(t, Validate(cfg), sentinel.ErrInvalidConfiguration)

	for _, threshold := range []int{0, 255, 300, -4} {
		cfg = Default()
		cfg.Detection.DifferenceThreshold = threshold
		require.ErrorIs(t, Validate(cfg), motion.ErrInvalidConfiguration, "threshold %d", threshold)
	}

	cfg = Default()
	cfg.Detection.MinRegionArea = -1
	require.ErrorIs(t, Validate(cfg), motion.ErrInvalidConfiguration)

	cfg = Default()
	cfg.Camera.FrameWidth = -1
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.LogLevel = "chatty"
	require.Error(t, Validate(cfg))

	// Optional fields are filled in.
	cfg = Default()
	cfg.Output.Directory = ""
	cfg.Output.JPEGQuality = 0
	cfg.Display.WindowTitle = ""
	require.NoError(t, Validate(cfg))
	require.NotEmpty(t, cfg.Output.Directory)
	require.NotZero(t, cfg.Output.JPEGQuality)
	require.Equal(t, DefaultWindowTitle, cfg.Display.WindowTitle)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := Default()
	cfg.Camera.Device = "/tmp/clip.mp4"
	cfg.Phases.Arming = 3 * time.Second
	cfg.Phases.Observation = 1500 * time.Millisecond
	cfg.Detection.MinRegionArea = 200
	cfg.Display.Enabled = false

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "arming: 3s")
}

// TestLoad_PartialFileKeepsDefaults checks that missing keys fall back to defaults.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.yaml")
	contents := "phases:\n  observation: 10s\ndetection:\n  min_region_area: 0\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10*time.Second, cfg.Phases.Observation)
	require.Equal(t, 5*time.Second, cfg.Phases.Arming)
	require.Zero(t, cfg.Detection.MinRegionArea)
	require.Equal(t, motion.DefaultDifferenceThreshold, cfg.Detection.DifferenceThreshold)
	require.True(t, cfg.Display.Enabled)
}

// TestLoad_Errors covers a missing explicit file and malformed YAML.
func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("phases: [oops"), DefaultFilePermissions))

	_, err = Load(broken)
	require.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("phases:\n  arming: 0s\n"), DefaultFilePermissions))

	_, err = Load(invalid)
	require.ErrorIs(t, err, sentinel.ErrInvalidConfiguration)
}

// TestRead_SkipsValidation ensures Read returns an incomplete file as is, leaving validation to the caller.
func TestRead_SkipsValidation(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "no-device.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera:\n  device: \"\"\n"), DefaultFilePermissions))

	cfg, err := Read(path)
	require.NoError(t, err)
	require.Empty(t, cfg.Camera.Device)
	require.Equal(t, DefaultSafeHold, cfg.Display.SafeHold)

	_, err = Load(path)
	require.ErrorIs(t, err, errDeviceRequired)

	cfg.Camera.Device = "1"
	require.NoError(t, Validate(cfg))
}

// TestLoad_DefaultFileIsOptional ensures an absent default file yields the defaults.
func TestLoad_DefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
