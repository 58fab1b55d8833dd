// Package motion compares two grayscale frames and reports the regions that
// changed between them.
//
// Analyze has no side effects: it thresholds the absolute per-pixel difference
// with OpenCV, dilates the resulting mask, traces the external contours only
// and keeps the regions whose filled pixel area exceeds the configured minimum.
package motion
