// Package sentinel runs one red-light, green-light session end to end.
//
// Run loads the settings, opens the camera and the preview window through the
// provided openers, and drives the frame loop: every frame is normalized,
// handed to the phase controller, compared against the reference while
// observing, rendered, and, when motion is found, persisted together with the
// reference frame.
package sentinel
