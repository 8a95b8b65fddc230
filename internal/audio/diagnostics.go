package audio

import "sync/atomic"

// Diagnostics holds free-running counters updated from the real-time audio
// callbacks. All fields are safe to read from the UI thread; none of them are
// ever reset, so the TUI detects new underruns/overruns by diffing successive
// reads.
type Diagnostics struct {
	InputCallbacks  atomic.Uint64
	OutputCallbacks atomic.Uint64
	Underruns       atomic.Uint64
	Overruns        atomic.Uint64
	InputFrames     atomic.Uint64
	OutputFrames    atomic.Uint64
}

// Snapshot is a point-in-time, non-atomic copy of Diagnostics for display.
type Snapshot struct {
	InputCallbacks  uint64
	OutputCallbacks uint64
	Underruns       uint64
	Overruns        uint64
	InputFrames     uint64
	OutputFrames    uint64
}

func (d *Diagnostics) Snapshot() Snapshot {
	return Snapshot{
		InputCallbacks:  d.InputCallbacks.Load(),
		OutputCallbacks: d.OutputCallbacks.Load(),
		Underruns:       d.Underruns.Load(),
		Overruns:        d.Overruns.Load(),
		InputFrames:     d.InputFrames.Load(),
		OutputFrames:    d.OutputFrames.Load(),
	}
}
