// Package snapshot persists the frames of a finished session.
//
// The FileRepository writes JPEG files named after the capture timestamp and
// the frame kind, e.g. 1714564800_reference_frame.jpg, and exposes a
// Repository interface that the sentinel service depends on.
package snapshot
