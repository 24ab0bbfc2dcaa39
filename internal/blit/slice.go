package blit

// Slice partitions one axis of length sd (the source extent) into dd runs
// (the destination extent) using an integer Bresenham-style scheme, so the
// vertical driver and any stage needing a run-length schedule can step
// through row or column groupings without floating point.
//
// Step's run values sum differently depending on the relation between sd
// and dd: on expansion (sd<dd) and identity (sd==dd) the sum across Count
// steps equals dd and sd respectively. On reduction (sd>dd) the slicer
// intentionally over-consumes: it runs dd steps built from sd-1/dd-1, a
// faithful port of blit.c's reduction schedule, whose run lengths sum to
// more than sd. The original's pointer arithmetic simply walks past the
// end of the source buffer there; callers driving a bounded Go slice must
// clamp their own reads/advances to the source extent instead of trusting
// the sum (see vertical.go's srcRowAt).
type Slice struct {
	whole int
	up    int
	down  int
	error int
	count int
}

// NewSlice builds a Slice scheduling sd source units across dd destination
// units.
func NewSlice(sd, dd int) Slice {
	switch {
	case sd < dd:
		// Expansion: each source unit is replicated whole (or whole+1)
		// times across the destination.
		return Slice{
			whole: dd / sd,
			up:    2 * (dd % sd),
			down:  2 * sd,
			count: sd,
		}
	case sd == dd:
		return Slice{whole: 1, up: 0, down: 0, count: sd}
	case dd == 1:
		// Reduction to a single destination unit: the ddp=dd-1=0 divisor
		// below would be a divide-by-zero, so this is its own case. One run
		// covering the whole source extent.
		return Slice{whole: sd, up: 0, down: 0, count: 1}
	default:
		// Reduction: sd > dd. One run per destination unit (count == dd);
		// the sd-1/dd-1 adjustment before dividing is blit.c's reduction
		// schedule, faithfully over-consuming past sd (see the doc comment
		// above) rather than normalized to stop exactly at sd.
		sdp := sd - 1
		ddp := dd - 1
		return Slice{
			whole: sdp / ddp,
			up:    2 * (sdp % ddp),
			down:  2 * ddp,
			count: ddp + 1,
		}
	}
}

// Step advances the slicer by one unit, returning the run length for this
// step. ok is false once the slicer is exhausted (Count steps taken).
func (s *Slice) Step() (run int, ok bool) {
	if s.count == 0 {
		return 0, false
	}
	s.error += s.up
	run = s.whole
	if s.error > 0 {
		run++
		s.error -= s.down
	}
	s.count--
	return run, true
}

// Remaining reports how many steps are left before the slicer is exhausted.
func (s *Slice) Remaining() int { return s.count }
