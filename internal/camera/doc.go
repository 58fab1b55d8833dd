// Package camera wraps OpenCV (gocv) video capture and the preview window.
//
// A Source reads colour frames from a device index or a video file/URL and
// hands them out as image.Image values. A Window shows annotated frames and
// reports when the user presses q or ESC.
package camera
