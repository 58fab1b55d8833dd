package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

var (
	// ErrFrameUnavailable is returned when the device yields no frame.
	ErrFrameUnavailable = errors.New("capture error: no frame available")
	// errDeviceRequired is returned when Open is called without a device.
	errDeviceRequired = errors.New("capture device must be provided")
)

// Source reads frames from an OpenCV video capture.
// It is not safe for concurrent use.
type Source struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	device  string
}

// Open starts capturing from device: a numeric camera index, an existing
// video file or a stream URL.
func Open(device string) (*Source, error) {
	device = strings.TrimSpace(device)
	if device == "" {
		return nil, errDeviceRequired
	}

	var (
		capture *gocv.VideoCapture
		err     error
	)

	if id, convErr := strconv.Atoi(device); convErr == nil {
		capture, err = gocv.VideoCaptureDevice(id)
	} else if _, statErr := os.Stat(device); statErr == nil || strings.Contains(device, "://") {
		capture, err = gocv.VideoCaptureFile(device)
	} else {
		return nil, fmt.Errorf("capture device %q: %w", device, statErr)
	}

	if err != nil {
		return nil, fmt.Errorf("open capture device %q: %w", device, err)
	}

	return &Source{
		capture: capture,
		frame:   gocv.NewMat(),
		device:  device,
	}, nil
}

// Device returns the device string the source was opened with.
func (s *Source) Device() string {
	return s.device
}

// Read grabs the next frame. The returned image is a fresh copy owned by the caller.
func (s *Source) Read(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, ErrFrameUnavailable
	}

	img, err := s.frame.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert frame: %w", err)
	}

	return img, nil
}

// Close releases the frame buffer and the capture device.
func (s *Source) Close() error {
	if s == nil || s.capture == nil {
		return nil
	}

	frameErr := s.frame.Close()
	captureErr := s.capture.Close()

	return errors.Join(frameErr, captureErr)
}
