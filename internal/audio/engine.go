// Package audio wires PortAudio callback streams to the playback controller
// and ring buffer: device selection, stream lifecycle, and the two real-time
// callbacks themselves.
package audio

import (
	"fmt"
	"unsafe"

	"github.com/xesco/osx-shifter/internal/playback"
	"github.com/xesco/osx-shifter/internal/ring"
	"github.com/xesco/osx-shifter/portaudio"
)

// Engine owns the capture and playback streams and the buffer/controller
// pair that bridges them.
type Engine struct {
	input  *portaudio.PaStream
	output *portaudio.PaStream

	Controller *playback.Controller
	Ring       *ring.Buffer
	Diag       *Diagnostics

	InputDeviceName  string
	OutputDeviceName string
	SampleRate       uint32
	Channels         uint16

	// samples is the pre-allocated output scratch buffer (no allocation in the
	// real-time callback).
	samples []float32
}

// Config holds the resolved parameters New needs to build an Engine.
type Config struct {
	InputDevice     string
	OutputDevice    string
	BufferSeconds   float64
	LatencyMs       float64
	FramesPerBuffer int
}

const defaultFramesPerBuffer = 512

// New resolves devices, opens both callback streams and starts them.
// Close must be called to release PortAudio resources.
func New(cfg Config) (*Engine, error) {
	selected, err := SelectDevices(cfg.InputDevice, cfg.OutputDevice)
	if err != nil {
		return nil, err
	}
	input, output := selected.Input, selected.Output

	sampleRate := input.DefaultSampleRate
	channels := input.MaxInputChannels
	if channels > output.MaxOutputChannels {
		channels = output.MaxOutputChannels
	}
	if sampleRate == 0 || channels == 0 {
		return nil, fmt.Errorf("could not determine sample rate or channels for %q", input.Name)
	}
	if output.DefaultSampleRate != sampleRate {
		return nil, fmt.Errorf(
			"sample rate mismatch: input (%s) = %.0fHz, output (%s) = %.0fHz; set both devices to the same sample rate in Audio MIDI Setup",
			input.Name, sampleRate, output.Name, output.DefaultSampleRate)
	}

	framesPerBuffer := cfg.FramesPerBuffer
	if framesPerBuffer <= 0 {
		framesPerBuffer = defaultFramesPerBuffer
	}

	capacity := int(sampleRate) * channels * int(cfg.BufferSeconds)
	buf := ring.New(capacity)
	ctrl := playback.New(buf, uint16(channels), uint32(sampleRate), framesPerBuffer, cfg.LatencyMs)
	diag := &Diagnostics{}

	inStream, err := portaudio.NewCallbackInputStream(input.Index, channels, portaudio.SampleFmtFloat32, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("create input stream: %w", err)
	}
	outStream, err := portaudio.NewCallbackOutputStream(output.Index, channels, portaudio.SampleFmtFloat32, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("create output stream: %w", err)
	}

	e := &Engine{
		input:            inStream,
		output:           outStream,
		Controller:       ctrl,
		Ring:             buf,
		Diag:             diag,
		InputDeviceName:  input.Name,
		OutputDeviceName: output.Name,
		SampleRate:       uint32(sampleRate),
		Channels:         uint16(channels),
		samples:          make([]float32, framesPerBuffer*channels),
	}

	if err := inStream.OpenCallback(framesPerBuffer, e.inputCallback); err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	if err := outStream.OpenCallback(framesPerBuffer, e.outputCallback); err != nil {
		inStream.CloseCallback()
		return nil, fmt.Errorf("open output stream: %w", err)
	}

	if err := inStream.StartStream(); err != nil {
		outStream.CloseCallback()
		inStream.CloseCallback()
		return nil, fmt.Errorf("start input stream: %w", err)
	}
	if err := outStream.StartStream(); err != nil {
		inStream.StopStream()
		outStream.CloseCallback()
		inStream.CloseCallback()
		return nil, fmt.Errorf("start output stream: %w", err)
	}

	return e, nil
}

// Close stops and releases both streams. Safe to call once.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.output.StopStream(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.input.StopStream(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.output.CloseCallback(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := e.input.CloseCallback(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// bytesAsFloat32 reinterprets a byte slice from PortAudio as an interleaved
// float32 slice without copying, matching the zero-copy pattern PortAudio's
// callback-mode examples use on both sides of the boundary.
func bytesAsFloat32(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	n := len(b) / 4
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), n)
}

// inputCallback copies captured audio straight into the ring buffer. It does
// no other work: this is the entire producer side of the pipeline.
func (e *Engine) inputCallback(input, output []byte, frameCount uint, timeInfo *portaudio.StreamCallbackTimeInfo, statusFlags portaudio.StreamCallbackFlags) portaudio.StreamCallbackResult {
	e.Diag.InputCallbacks.Add(1)
	e.Diag.InputFrames.Add(uint64(frameCount))

	e.Ring.Write(bytesAsFloat32(input))
	return portaudio.Continue
}

// outputCallback implements §4.D: position the read head, pull samples (or
// silence while paused), then apply volume and the anti-click ramp in that
// order, and update the peak meters.
func (e *Engine) outputCallback(input, output []byte, frameCount uint, timeInfo *portaudio.StreamCallbackTimeInfo, statusFlags portaudio.StreamCallbackFlags) portaudio.StreamCallbackResult {
	e.Diag.OutputCallbacks.Add(1)
	e.Diag.OutputFrames.Add(uint64(frameCount))

	sampleCount := int(frameCount) * int(e.Channels)
	data := e.samples[:sampleCount]

	state := e.Controller.PreRead(int(frameCount))
	if state == playback.Paused {
		for i := range data {
			data[i] = 0
		}
	} else {
		switch e.Ring.Read(data) {
		case ring.Underrun:
			e.Diag.Underruns.Add(1)
		case ring.Overrun:
			e.Diag.Overruns.Add(1)
		}
	}

	e.Controller.ApplyVolume(data)
	e.Controller.ApplyRamp(data)
	e.Controller.UpdatePeaks(data)

	copy(bytesAsFloat32(output), data)
	return portaudio.Continue
}
