// Package overlay draws the session status onto colour frames: countdown
// banners, the per-frame motion status and the boxes around moving regions.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/oshokin/redlight-sentinel/internal/domain/motion"
)

// boxThickness is the stroke width of region boxes in source pixels.
const boxThickness = 2

//nolint:gochecknoglobals // Fixed palette shared by every frame.
var (
	// Green marks the arming countdown and the "no motion" status.
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	// Red marks the observation countdown, motion status and region boxes.
	Red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	// White marks the final safe banner.
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Line is one text line at a fixed baseline position.
type Line struct {
	// Text is the message to draw.
	Text string
	// Origin is the left end of the text baseline.
	Origin image.Point
	// Color is the text colour.
	Color color.Color
}

// Annotation describes everything drawn on a frame.
type Annotation struct {
	// Lines are drawn in order.
	Lines []Line
	// Regions are boxes in analysis coordinates.
	Regions []motion.Region
	// Scale converts analysis coordinates into frame coordinates.
	Scale float64
}

// ArmingCountdown is the banner shown before the reference is captured.
func ArmingCountdown(remaining time.Duration) Line {
	return Line{
		Text:   fmt.Sprintf("%d seconds before Red Light", wholeSeconds(remaining)),
		Origin: image.Pt(10, 50),
		Color:  Green,
	}
}

// ObservationCountdown is the banner shown while frames are being compared.
func ObservationCountdown(remaining time.Duration) Line {
	return Line{
		Text:   fmt.Sprintf("Red Light - %d seconds remaining", wholeSeconds(remaining)),
		Origin: image.Pt(10, 100),
		Color:  Red,
	}
}

// MotionStatus is the per-frame verdict line.
func MotionStatus(detected bool) Line {
	if detected {
		return Line{Text: "MOTION DETECTED", Origin: image.Pt(10, 150), Color: Red}
	}

	return Line{Text: "NO MOTION", Origin: image.Pt(10, 150), Color: Green}
}

// SafeBanner is drawn once the observation window ends without motion.
func SafeBanner() Line {
	return Line{Text: "Safe! No Movement Detected", Origin: image.Pt(50, 200), Color: White}
}

// Annotate returns a copy of frame with the annotation drawn on it.
// The input frame is never modified.
func Annotate(frame image.Image, a Annotation) (*image.RGBA, error) {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	if err := drawBoxes(out, a.Regions, a.Scale); err != nil {
		return nil, err
	}

	for _, line := range a.Lines {
		drawText(out, line.Text, line.Origin.Add(bounds.Min), line.Color)
	}

	return out, nil
}

// wholeSeconds renders a countdown the way it reads on screen: 4.2s left shows "5".
func wholeSeconds(remaining time.Duration) int {
	return int(remaining/time.Second) + 1
}

// project scales an analysis-space rectangle into frame space.
func project(r image.Rectangle, scale float64) image.Rectangle {
	return image.Rect(
		int(float64(r.Min.X)*scale),
		int(float64(r.Min.Y)*scale),
		int(float64(r.Max.X)*scale+0.5),
		int(float64(r.Max.Y)*scale+0.5),
	)
}

// drawBoxes outlines every region on dst, projected by scale into frame space.
// OpenCV clips boxes that leave the frame.
func drawBoxes(dst *image.RGBA, regions []motion.Region, scale float64) error {
	if len(regions) == 0 {
		return nil
	}

	if scale <= 0 {
		scale = 1
	}

	mat, err := gocv.ImageToMatRGB(dst)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	defer mat.Close()

	for _, region := range regions {
		gocv.Rectangle(&mat, project(region.Rect(), scale), Red, boxThickness)
	}

	boxed, err := mat.ToImage()
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}

	draw.Draw(dst, dst.Bounds(), boxed, image.Point{}, draw.Src)

	return nil
}

func drawText(dst draw.Image, text string, origin image.Point, c color.Color) {
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(origin.X, origin.Y),
	}

	drawer.DrawString(text)
}
