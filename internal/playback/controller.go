// Package playback implements the atomic-only bridge between the UI thread
// and the two real-time audio callbacks: the three-valued State, and the
// Controller that holds every other mutable field the callbacks and the UI
// touch.
//
// Every field in Controller is independently atomic. There is no
// transactional snapshot across fields — Snapshot may observe a slightly
// skewed combination of them, which is acceptable for display purposes and
// never observed by the audio callbacks themselves (they read the specific
// fields they need directly).
package playback

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/xesco/osx-shifter/internal/ring"
)

// rampLenFrames is the anti-click fade length in frames; the actual sample
// count scales by channel count since samples are interleaved.
const rampLenFrames = 256

// decayPerCallback is the exponential decay factor applied to peak meters on
// every output callback so they fall smoothly rather than jumping to zero.
const decayPerCallback = 0.85

// Step is one entry in the fixed seek-step table bound to the TUI's 1-9 keys.
type Step struct {
	Duration time.Duration
	Label    string
}

// StepTable is the fixed set of seek increments, in the order the 1-9 keys
// select them.
var StepTable = []Step{
	{time.Millisecond, "1ms"},
	{10 * time.Millisecond, "10ms"},
	{100 * time.Millisecond, "100ms"},
	{500 * time.Millisecond, "500ms"},
	{time.Second, "1s"},
	{2 * time.Second, "2s"},
	{5 * time.Second, "5s"},
	{10 * time.Second, "10s"},
	{30 * time.Second, "30s"},
}

const defaultStepIndex = 4 // 1s

// Controller is the shared state bridge between the TUI thread and the audio
// callbacks.
//
// Seeking model: the UI sets target_delay_samples and the output callback
// positions the read head at write_pos - one_callback_buffer - target_delay
// every cycle. This is the only way the UI influences the read position,
// which eliminates any race between the UI thread and the audio callback over
// who owns read_pos.
type Controller struct {
	ring       *ring.Buffer
	channels   uint16
	sampleRate uint32
	// marginSamples is the headroom the seek commands leave below capacity so
	// the output callback always has at least one callback buffer's worth of
	// room to add on top of target_delay_samples.
	marginSamples uint64

	state State32

	targetDelaySamples  atomic.Uint64
	rampRemaining       atomic.Uint64
	peakLeftMilli       atomic.Uint64
	peakRightMilli      atomic.Uint64
	volumeMilli         atomic.Uint64
	mutedVolumeMilli    atomic.Uint64
	displayDelaySamples atomic.Uint64
	stepIndex           atomic.Uint32
}

// State32 stores a State as an atomic 32-bit word. A dedicated type (rather
// than a bare atomic.Uint32) keeps the byte-tag decoding rule in one place.
type State32 struct {
	v atomic.Uint32
}

func (s *State32) Load() State       { return FromByte(uint8(s.v.Load())) }
func (s *State32) Store(state State) { s.v.Store(uint32(state)) }

// New creates a Controller over ring, with the given channel count, sample
// rate, per-callback frame count (used only to size the seek headroom), and
// base delay in milliseconds applied at startup.
func New(buf *ring.Buffer, channels uint16, sampleRate uint32, framesPerBuffer int, baseDelayMs float64) *Controller {
	c := &Controller{
		ring:          buf,
		channels:      channels,
		sampleRate:    sampleRate,
		marginSamples: uint64(framesPerBuffer) * uint64(channels),
	}
	c.volumeMilli.Store(1000)
	c.stepIndex.Store(defaultStepIndex)

	baseSamples := c.msToSamples(baseDelayMs)
	c.targetDelaySamples.Store(baseSamples)
	if baseSamples == 0 {
		c.state.Store(Live)
	} else {
		c.state.Store(TimeShifted)
	}
	return c
}

func (c *Controller) msToSamples(ms float64) uint64 {
	frames := ms / 1000.0 * float64(c.sampleRate)
	if frames < 0 {
		frames = 0
	}
	return uint64(frames) * uint64(c.channels)
}

func (c *Controller) maxDelaySamples() uint64 {
	cap := c.ring.Capacity()
	max := uint64(0)
	if cap > c.marginSamples {
		max = cap - c.marginSamples
	}
	if wp := c.ring.WritePosition(); wp < max {
		max = wp
	}
	return max
}

func (c *Controller) setRampFull() {
	c.rampRemaining.Store(rampLenFrames * uint64(c.channels))
}

// -- Commands (UI thread) --

// TogglePause implements §4.B: Live|TimeShifted -> Paused, and Paused ->
// Live or TimeShifted depending on whether the delay accumulated while paused
// is zero.
func (c *Controller) TogglePause() {
	switch c.state.Load() {
	case Live, TimeShifted:
		c.state.Store(Paused)
	case Paused:
		delay := c.ring.DelaySamples()
		if max := c.maxDelaySamples(); delay > max {
			delay = max
		}
		c.targetDelaySamples.Store(delay)
		if delay == 0 {
			c.state.Store(Live)
		} else {
			c.state.Store(TimeShifted)
		}
		c.setRampFull()
	}
}

// SeekBackward increases the delay (moves away from live) by the current
// step.
func (c *Controller) SeekBackward() {
	c.seekBy(int64(c.currentStepSamples()))
}

// SeekForward decreases the delay (moves toward live) by the current step,
// saturating at zero.
func (c *Controller) SeekForward() {
	c.seekBy(-int64(c.currentStepSamples()))
}

func (c *Controller) seekBy(deltaSamples int64) {
	max := int64(c.maxDelaySamples())
	current := int64(c.targetDelaySamples.Load())

	next := current + deltaSamples
	if next < 0 {
		next = 0
	}
	if next > max {
		next = max
	}

	c.targetDelaySamples.Store(uint64(next))
	c.setRampFull()

	if next == 0 {
		c.state.Store(Live)
	} else {
		c.state.Store(TimeShifted)
	}
}

func (c *Controller) currentStepSamples() uint64 {
	step := StepTable[c.stepIndex.Load()]
	frames := step.Duration.Seconds() * float64(c.sampleRate)
	return uint64(frames) * uint64(c.channels)
}

// JumpToLive implements the jump_to_live command: target delay drops to
// zero, state becomes Live, and the ramp re-engages to suppress the click.
func (c *Controller) JumpToLive() {
	c.targetDelaySamples.Store(0)
	c.state.Store(Live)
	c.setRampFull()
}

// SetStep writes the seek-step index, clamped to the table bounds.
func (c *Controller) SetStep(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(StepTable) {
		index = len(StepTable) - 1
	}
	c.stepIndex.Store(uint32(index))
}

// VolumeUp raises volume by 0.05, clamped to 1.5, and unmutes.
func (c *Controller) VolumeUp() { c.adjustVolume(50) }

// VolumeDown lowers volume by 0.05, clamped to 0, and unmutes.
func (c *Controller) VolumeDown() { c.adjustVolume(-50) }

func (c *Controller) adjustVolume(deltaMilli int64) {
	current := int64(c.volumeMilli.Load())
	next := current + deltaMilli
	if next < 0 {
		next = 0
	}
	if next > 1500 {
		next = 1500
	}
	c.volumeMilli.Store(uint64(next))
	c.mutedVolumeMilli.Store(0)
}

// ToggleMute saves the current volume and zeroes it, or restores it if
// already muted.
func (c *Controller) ToggleMute() {
	saved := c.mutedVolumeMilli.Load()
	if saved > 0 {
		c.volumeMilli.Store(saved)
		c.mutedVolumeMilli.Store(0)
		return
	}
	current := c.volumeMilli.Load()
	if current == 0 {
		current = 1
	}
	c.mutedVolumeMilli.Store(current)
	c.volumeMilli.Store(0)
}

// -- Queries (UI thread) --

// Snapshot is a non-atomic bundle of the controller's fields for rendering.
// No cross-field consistency is guaranteed or required.
type Snapshot struct {
	State           State
	DelayMs         float64
	Volume          float64
	Muted           bool
	StepLabel       string
	BufferUsage     float64
	PeakLeft        float64
	PeakRight       float64
	PeakLeftDBFS    float64
	PeakRightDBFS   float64
}

func (c *Controller) Snapshot() Snapshot {
	l, r := c.PeakLevels()
	return Snapshot{
		State:         c.state.Load(),
		DelayMs:       c.DelayMs(),
		Volume:        c.Volume(),
		Muted:         c.IsMuted(),
		StepLabel:     StepTable[c.stepIndex.Load()].Label,
		BufferUsage:   c.ring.UsageFraction(),
		PeakLeft:      l,
		PeakRight:     r,
		PeakLeftDBFS:  dbfs(l),
		PeakRightDBFS: dbfs(r),
	}
}

func dbfs(peak float64) float64 {
	if peak <= 0.0001 {
		return -60.0
	}
	db := 20 * math.Log10(peak)
	if db < -60 {
		return -60
	}
	return db
}

// State returns the current playback state.
func (c *Controller) State() State { return c.state.Load() }

// DelayMs converts the last-displayed delay (in samples) into milliseconds.
func (c *Controller) DelayMs() float64 {
	delaySamples := c.displayDelaySamples.Load()
	frames := delaySamples / uint64(c.channels)
	return float64(frames) / float64(c.sampleRate) * 1000.0
}

// Volume returns the current volume as a fraction of nominal (1.0 = 100%).
func (c *Controller) Volume() float64 {
	return float64(c.volumeMilli.Load()) / 1000.0
}

// IsMuted reports whether ToggleMute currently has volume saved/zeroed.
func (c *Controller) IsMuted() bool {
	return c.mutedVolumeMilli.Load() > 0
}

// PeakLevels returns the decayed left/right peak magnitudes in [0, 1.5].
func (c *Controller) PeakLevels() (left, right float64) {
	return float64(c.peakLeftMilli.Load()) / 1000.0, float64(c.peakRightMilli.Load()) / 1000.0
}

// StepLabel returns the display label of the current seek step.
func (c *Controller) StepLabel() string { return StepTable[c.stepIndex.Load()].Label }

// -- Queries/mutations from the output callback --

// PreRead positions the ring's read head for the next frameCount-frame
// output callback and returns the playback state the callback should act on.
//
// If Paused, the read head is frozen: only the display delay is refreshed so
// the UI can still show the accumulated delay while it grows.
//
// Otherwise the desired read position is
// write_pos - frameCount*channels - target_delay, where the distance behind
// write_pos is clamped to min(capacity, write_pos) so the position never
// falls below 0 or more than capacity behind write_pos. It is written
// unconditionally: the target
// is authoritative every callback, so there is no separate resync threshold
// to evaluate (see SPEC_FULL.md §9).
func (c *Controller) PreRead(frameCount int) State {
	state := c.state.Load()
	if state == Paused {
		c.displayDelaySamples.Store(c.ring.DelaySamples())
		return state
	}

	wp := c.ring.WritePosition()
	callbackSamples := uint64(frameCount) * uint64(c.channels)
	target := c.targetDelaySamples.Load()

	totalDelay := callbackSamples + target
	if cap := c.ring.Capacity(); totalDelay > cap {
		totalDelay = cap
	}
	if totalDelay > wp {
		totalDelay = wp
	}

	var targetReadPos uint64
	if totalDelay < wp {
		targetReadPos = wp - totalDelay
	}
	c.ring.SetReadPosition(targetReadPos)

	c.displayDelaySamples.Store(target)
	return state
}

// ApplyVolume scales data in place by the current volume.
func (c *Controller) ApplyVolume(data []float32) {
	vol := float32(c.Volume())
	if vol == 1.0 {
		return
	}
	for i := range data {
		data[i] *= vol
	}
}

// ApplyRamp applies the remaining anti-click ramp gain to data in place and
// decrements ramp_remaining by the number of samples it covered. Applied
// after ApplyVolume, per §4.C.
func (c *Controller) ApplyRamp(data []float32) {
	remaining := c.rampRemaining.Load()
	if remaining == 0 {
		return
	}
	total := rampLenFrames * uint64(c.channels)
	elapsed := total - remaining
	if elapsed > total {
		elapsed = total
	}

	for i := range data {
		pos := elapsed + uint64(i)
		if pos >= total {
			break
		}
		gain := float32(pos) / float32(total)
		data[i] *= gain
	}

	consumed := uint64(len(data))
	if consumed > remaining {
		consumed = remaining
	}
	c.rampRemaining.Add(-consumed)
}

// UpdatePeaks computes per-channel peak magnitude in data and publishes it
// with exponential decay so the meters fall smoothly between loud passages.
func (c *Controller) UpdatePeaks(data []float32) {
	ch := int(c.channels)
	if ch == 0 {
		return
	}

	var peakL, peakR float32
	for i := 0; i+ch <= len(data); i += ch {
		if v := abs32(data[i]); v > peakL {
			peakL = v
		}
		if ch >= 2 {
			if v := abs32(data[i+1]); v > peakR {
				peakR = v
			}
		}
	}

	c.publishPeak(&c.peakLeftMilli, peakL)
	if ch >= 2 {
		c.publishPeak(&c.peakRightMilli, peakR)
	}
}

func (c *Controller) publishPeak(field *atomic.Uint64, incoming float32) {
	prev := float64(field.Load()) / 1000.0
	next := math.Max(float64(incoming), prev*decayPerCallback)
	field.Store(uint64(next * 1000.0))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
