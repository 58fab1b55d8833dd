// Package sentinel contains the phase controller of a red-light, green-light session.
//
// A Controller starts in PhaseArming, captures exactly one reference frame when
// the arming deadline passes, then stays in PhaseObserving until either motion
// is reported (PhaseAlarmed) or the observation window runs out (PhaseSafe).
// The controller never compares images itself: it tells the caller what to do
// with each frame and accepts the resulting verdict.
package sentinel
