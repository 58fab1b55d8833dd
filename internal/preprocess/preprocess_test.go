package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

// colourFrame returns a w x h RGBA frame filled with c.
func colourFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}

	return img
}

// TestNormalize_ResizesKeepingAspectRatio checks the output size of the default pipeline.
func TestNormalize_ResizesKeepingAspectRatio(t *testing.T) {
	t.Parallel()

	n := New(DefaultOptions())

	gray := n.Normalize(colourFrame(1500, 1000, color.RGBA{R: 10, G: 200, B: 30, A: 255}))
	require.Equal(t, image.Rect(0, 0, 750, 500), gray.Bounds())
	require.InDelta(t, 2.0, n.Scale(image.Rect(0, 0, 1500, 1000)), 1e-9)
}

// TestNormalize_KeepsSizeWithoutWidth ensures a zero width leaves the frame size alone.
func TestNormalize_KeepsSizeWithoutWidth(t *testing.T) {
	t.Parallel()

	n := New(Options{})

	gray := n.Normalize(colourFrame(64, 48, color.RGBA{R: 90, G: 90, B: 90, A: 255}))
	require.Equal(t, image.Rect(0, 0, 64, 48), gray.Bounds())
	require.InDelta(t, 1.0, n.Scale(image.Rect(0, 0, 64, 48)), 1e-9)

	// A neutral grey stays (almost) the same intensity.
	require.InDelta(t, 90, int(gray.GrayAt(10, 10).Y), 1)
}

// TestNormalize_IsDeterministic ensures identical inputs produce identical buffers.
func TestNormalize_IsDeterministic(t *testing.T) {
	t.Parallel()

	n := New(DefaultOptions())

	frame := colourFrame(320, 240, color.RGBA{R: 40, G: 120, B: 220, A: 255})
	for y := 100; y < 140; y++ {
		for x := 100; x < 140; x++ {
			frame.SetRGBA(x, y, color.RGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}

	first := n.Normalize(frame)
	second := n.Normalize(frame)

	require.Equal(t, first.Bounds(), second.Bounds())
	require.Equal(t, first.Pix, second.Pix)
	require.NotSame(t, first, second)
}

// TestNormalize_NonZeroOrigin ensures sub-images are re-anchored at the origin.
func TestNormalize_NonZeroOrigin(t *testing.T) {
	t.Parallel()

	frame := colourFrame(100, 100, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	sub := frame.SubImage(image.Rect(20, 30, 60, 70))

	gray := New(Options{}).Normalize(sub)
	require.Equal(t, image.Rect(0, 0, 40, 40), gray.Bounds())
}
