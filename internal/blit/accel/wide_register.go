//go:build wide

package accel

import "golang.org/x/sys/cpu"

// wideAvailable probes for a CPU feature capable of wide-register writes,
// grounded on the teacher's cpu.X86.HasAVX2 probe in ssd.go. No kernel in
// this repository actually issues a vectorized write under this tag — the
// probe exists only so the pipeline's fast-write classifier has a real
// capability to ask about, per spec.md §1's "the core treats an optional
// micro-state teardown hook as a capability, nothing more".
func wideAvailable() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// teardown releases whatever transient micro-state a wide-register write
// path would have left live (the EMMS-equivalent the original calls once
// per frame). No state is actually held at this capability-only tier.
func teardown() {}
