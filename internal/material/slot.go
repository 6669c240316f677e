package material

import "sync/atomic"

// Slot hands the current material from asynchronous loaders to the frame
// loop. Loaders Store a fully resolved descriptor; the frame loop Loads it
// once at the start of each frame.
type Slot struct {
	current atomic.Pointer[Descriptor]
	version atomic.Uint64
}

// Store publishes d as the current material.
func (s *Slot) Store(d *Descriptor) {
	s.current.Store(d)
	s.version.Add(1)
}

// Load returns the current material and the number of stores so far.
// The descriptor may be nil before the first Store.
func (s *Slot) Load() (*Descriptor, uint64) {
	// Read version first so a concurrent Store is seen again next frame.
	v := s.version.Load()
	return s.current.Load(), v
}
