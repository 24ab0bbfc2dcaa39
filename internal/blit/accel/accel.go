// Package accel answers the one capability question spec.md §1 and §5
// leave for a host to decide: whether a wide-register fast-write path
// exists, and what to do once a frame's vertical driver has returned. It
// never ships a vectorized kernel — spec.md §1 keeps SIMD dispatch out of
// the core's scope — only the capability probe, split the same way the
// teacher splits its real CPU-feature SSD/SAD backends from their scalar
// fallback (ssd.go's cpu.X86.HasAVX2 probe) and its GPU renderer from its
// stub (renderer_opencl_gpu.go / renderer_opencl_stub.go).
package accel

import "log/slog"

// Capability reports whether the host's wide-register fast-write path
// (the MMX-era "fast write" dispatch in the original) is available, and
// tears down whatever transient micro-state using it leaves behind after
// a frame.
type Capability struct {
	wide bool
}

// Detect builds a Capability, probing for the wide-register path. The
// scalar build (no -tags wide) always reports false; see wide_register.go
// for the real probe.
func Detect() *Capability {
	c := &Capability{wide: wideAvailable()}
	slog.Debug("blit accel capability detected", "wide_register", c.wide)
	return c
}

// Wide reports whether the fast-write path is available: the value
// blit.NewContext's wide flag describes, which blit.Stage.IsFastWrite
// classifies against.
func (c *Capability) Wide() bool { return c.wide }

// EligibleForFastWrite reports whether a wide-register requirement is met:
// always true when requireWide is false, otherwise whether this Capability
// reports the wide-register path. It inspects no stage. A host that requires wide-register
// acceleration (spec.md §7.1's "capability failure at init") calls this
// before InitDirect/InitHardwarePalette/... with requireWide set, rather
// than threading the check through every initializer by hand.
func (c *Capability) EligibleForFastWrite(requireWide bool) bool {
	if !requireWide {
		return true
	}
	return c.wide
}

// Teardown releases any transient micro-state the wide-register path left
// behind after a frame (the MMX EMMS-equivalent in the original). A blit
// consists of exactly one vertical driver call, so the host calls this
// once per completed frame, never per row (spec.md §4.5).
func (c *Capability) Teardown() {
	teardown()
}
