package motion

import (
	"errors"
	"fmt"
	"image"
)

const (
	// DefaultDifferenceThreshold is the intensity delta (0-255) a pixel must exceed to count as changed.
	DefaultDifferenceThreshold = 25
	// DefaultDilationIterations is the number of 3x3 dilation passes applied to the changed-pixel mask.
	DefaultDilationIterations = 2
	// DefaultMinRegionArea filters out sensor noise and micro-motions such as eye blinks.
	DefaultMinRegionArea = 1000
)

var (
	// ErrInvalidConfiguration is returned when analysis options are out of range.
	ErrInvalidConfiguration = errors.New("invalid motion configuration")
	// ErrDimensionMismatch is returned when the reference and current images differ in size.
	ErrDimensionMismatch = errors.New("image dimensions mismatch")
	// errImageRequired is returned when one of the compared images is nil.
	errImageRequired = errors.New("both images must be provided")
)

// Options tunes the comparison. A single Options value is used for a whole session.
type Options struct {
	// DifferenceThreshold is the per-pixel delta that must be exceeded to mark a pixel as changed.
	DifferenceThreshold uint8
	// DilationIterations is the number of 3x3 dilation passes used to merge fragments.
	DilationIterations int
	// MinRegionArea is the pixel count a region must exceed to be reported.
	MinRegionArea int
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DifferenceThreshold: DefaultDifferenceThreshold,
		DilationIterations:  DefaultDilationIterations,
		MinRegionArea:       DefaultMinRegionArea,
	}
}

// Validate checks that every option is in range.
func (o Options) Validate() error {
	// 255 can never be exceeded on an 8-bit scale.
	if o.DifferenceThreshold == 0 || o.DifferenceThreshold == 255 {
		return fmt.Errorf("%w: difference threshold must be in 1..254, got %d",
			ErrInvalidConfiguration, o.DifferenceThreshold)
	}

	if o.DilationIterations < 0 {
		return fmt.Errorf("%w: dilation iterations must not be negative, got %d",
			ErrInvalidConfiguration, o.DilationIterations)
	}

	if o.MinRegionArea < 0 {
		return fmt.Errorf("%w: minimum region area must not be negative, got %d",
			ErrInvalidConfiguration, o.MinRegionArea)
	}

	return nil
}

// Region is an axis-aligned box around one changed area.
// Coordinates are relative to the analyzed image's Bounds().Min.
type Region struct {
	// X is the left edge of the box.
	X int
	// Y is the top edge of the box.
	Y int
	// Width is the box width in pixels.
	Width int
	// Height is the box height in pixels.
	Height int
	// Area is the number of pixels enclosed by the region outline.
	Area int
}

// Rect returns the region box as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Verdict is the result of one comparison.
// An empty Regions slice means no motion.
type Verdict struct {
	// Regions lists the significant regions ordered by the top edge of their box, then the left edge.
	Regions []Region
}

// NoMotion is the verdict for a frame without significant change.
//
//nolint:gochecknoglobals // Zero-value verdict shared by callers and tests.
var NoMotion = Verdict{}

// IsMotion reports whether at least one significant region was found.
func (v Verdict) IsMotion() bool {
	return len(v.Regions) > 0
}

// Analyze compares current against reference and returns the regions whose
// area exceeds opts.MinRegionArea.
func Analyze(reference, current *image.Gray, opts Options) (Verdict, error) {
	if reference == nil || current == nil {
		return Verdict{}, errImageRequired
	}

	rb, cb := reference.Bounds(), current.Bounds()
	if rb.Dx() != cb.Dx() || rb.Dy() != cb.Dy() {
		return Verdict{}, fmt.Errorf("%w: reference is %dx%d, current is %dx%d",
			ErrDimensionMismatch, rb.Dx(), rb.Dy(), cb.Dx(), cb.Dy())
	}

	if err := opts.Validate(); err != nil {
		return Verdict{}, err
	}

	if rb.Empty() {
		return NoMotion, nil
	}

	changed, err := changedMask(reference, current, opts)
	if err != nil {
		return Verdict{}, err
	}

	defer changed.Close()

	return Verdict{Regions: outerRegions(changed, opts.MinRegionArea)}, nil
}
