// Package preprocess normalizes raw colour frames into the grayscale buffers
// the motion analyzer compares. Every frame of a session must go through the
// same Normalizer so reference and current images share size and smoothing.
package preprocess

import (
	"image"

	"github.com/disintegration/gift"
)

const (
	// DefaultWidth is the analysis width; height follows the source aspect ratio.
	DefaultWidth = 750
	// DefaultBlurSigma matches the sigma OpenCV derives for a 21x21 Gaussian kernel.
	DefaultBlurSigma = 3.5
)

// Options controls the normalization pipeline.
type Options struct {
	// Width is the target width in pixels; zero keeps the source size.
	Width int
	// BlurSigma is the Gaussian blur sigma; zero disables blurring.
	BlurSigma float32
}

// DefaultOptions returns the pipeline used for live camera frames.
func DefaultOptions() Options {
	return Options{
		Width:     DefaultWidth,
		BlurSigma: DefaultBlurSigma,
	}
}

// Normalizer resizes, desaturates and blurs frames.
type Normalizer struct {
	filters *gift.GIFT
	width   int
}

// New builds a Normalizer for the given options.
func New(opts Options) *Normalizer {
	filters := gift.New()

	if opts.Width > 0 {
		filters.Add(gift.Resize(opts.Width, 0, gift.LinearResampling))
	}

	filters.Add(gift.Grayscale())

	if opts.BlurSigma > 0 {
		filters.Add(gift.GaussianBlur(opts.BlurSigma))
	}

	return &Normalizer{
		filters: filters,
		width:   opts.Width,
	}
}

// Normalize returns a fresh grayscale image for src, anchored at (0, 0).
func (n *Normalizer) Normalize(src image.Image) *image.Gray {
	bounds := n.filters.Bounds(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	n.filters.Draw(dst, src)

	return dst
}

// Scale returns how many source pixels map onto one analysis pixel
// horizontally, used to project regions back onto the source frame.
func (n *Normalizer) Scale(src image.Rectangle) float64 {
	if n.width <= 0 || src.Dx() == 0 {
		return 1
	}

	return float64(src.Dx()) / float64(n.width)
}
