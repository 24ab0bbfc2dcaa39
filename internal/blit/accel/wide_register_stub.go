//go:build !wide

package accel

// wideAvailable is the always-available fallback: no wide-register
// fast-write path, matching the original's "MMX absent" posture. Every
// plain-input-only stage classification in blit.Stage.IsFastWrite still
// applies; only the accelerated branch is unreachable.
func wideAvailable() bool { return false }

// teardown is a no-op when no wide-register micro-state was ever touched.
func teardown() {}
