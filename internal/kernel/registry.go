// Package kernel implements the reference scalar pixel kernels behind
// internal/blit's Registry interface: every stage descriptor the
// assembler can request, built as plain byte-slice transforms with no
// SIMD dispatch. internal/blit/accel answers the separate question of
// whether a wide-register fast-write path exists at all; this package
// never branches on it.
package kernel

import "github.com/cwbudde/scanblit/internal/blit"

// Registry is the scalar blit.Registry implementation. It holds no
// mutable state beyond the lazily filled RGB-mode tables the vertical
// combine and decoration kernels need, matching the original's
// process-wide table discipline (spec.md §5).
type Registry struct {
	meanTable  [256][256]uint8
	meanReady  bool
	triadReady bool
}

// New returns a ready-to-use scalar Registry.
func New() *Registry {
	return &Registry{}
}

var _ blit.Registry = (*Registry)(nil)
