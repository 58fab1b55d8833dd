package camera

import (
	"image"
	"time"

	"gocv.io/x/gocv"
)

// Keys that end a session from the preview window.
const (
	keyQuit   = 'q'
	keyEscape = 27
)

// Window shows frames in a native OpenCV window.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a preview window with the given title.
func NewWindow(title string) *Window {
	return &Window{
		window: gocv.NewWindow(title),
	}
}

// Show displays img and polls the keyboard once.
// It returns true when the user asked to quit.
func (w *Window) Show(img image.Image) bool {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return false
	}

	defer func() {
		_ = mat.Close()
	}()

	w.window.IMShow(mat)

	return isQuitKey(w.window.WaitKey(1))
}

// Hold keeps the last frame on screen for d, pumping window events.
func (w *Window) Hold(d time.Duration) {
	if d <= 0 {
		return
	}

	w.window.WaitKey(int(d / time.Millisecond))
}

// Close destroys the window.
func (w *Window) Close() error {
	if w == nil || w.window == nil {
		return nil
	}

	return w.window.Close()
}

func isQuitKey(key int) bool {
	key &= 0xFF

	return key == keyQuit || key == keyEscape
}
