package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/redlight-sentinel/internal/camera"
	"github.com/oshokin/redlight-sentinel/internal/config"
	"github.com/oshokin/redlight-sentinel/internal/logger"
	"github.com/oshokin/redlight-sentinel/internal/service/sentinel"
	"github.com/oshokin/redlight-sentinel/internal/version"
)

// exitMotionDetected is the exit status of a session that ended in the alarm.
const exitMotionDetected = 2

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// device overrides the camera index, file or stream URL.
	device string
	// outputDir overrides the directory for alarm frames.
	outputDir string
	// logLevel overrides the log level from the configuration.
	logLevel string
	// headless disables the preview window.
	headless bool

	// rootCmd represents the base command for one round of the game.
	rootCmd = &cobra.Command{
		Use:   "redlight-sentinel [device]",
		Short: "Watch a camera and catch anyone who moves on red light.",
		Long: `Plays one round of "red light, green light" against a camera.

During the arming phase the players may move while a countdown runs.
When it ends the current frame becomes the reference and the red light
phase starts: every new frame is compared with the reference and any
region that changed more than the configured area raises the alarm.
On alarm the reference and the annotated frame are saved as JPEG files
and the command exits with status 2. If nobody moves until the red light
phase ends the round is safe and the command exits with status 0.

The device is a camera index, a video file or a stream URL. It can be
provided as argument, flag or in the configuration file.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if len(args) > 0 {
				device = args[0]
			}

			return sentinel.Run(ctx, &sentinel.Options{
				ConfigPath:  configPath,
				Device:      device,
				OutputDir:   outputDir,
				LogLevel:    logLevel,
				Headless:    headless,
				OpenSource:  openSource,
				OpenDisplay: openDisplay,
			})
		},
	}
)

// Execute runs the redlight-sentinel CLI.
// It exits with status 2 when motion was detected and 1 on any other error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	switch {
	case err == nil:
	case errors.Is(err, sentinel.ErrMotionDetected):
		os.Exit(exitMotionDetected)
	default:
		os.Exit(1)
	}
}

func openSource(device string) (sentinel.FrameSource, error) {
	source, err := camera.Open(device)
	if err != nil {
		return nil, err
	}

	return source, nil
}

func openDisplay(title string) (sentinel.Display, error) {
	return camera.NewWindow(title), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	rootCmd.Flags().StringVarP(&device, "device", "d", "", "camera index, video file or stream URL")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for alarm frames")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run without the preview window")
}
