// Package portaudio provides Go bindings for PortAudio - a cross-platform audio I/O library.
//
// PortAudio provides a simple, portable API for audio input and output on Windows, macOS,
// and Linux. This package wraps the C PortAudio library with idiomatic Go interfaces.
//
// # Stream Types
//
// This package only exposes callback-mode streams: PortAudio invokes a Go function on its
// own real-time thread to pull or push audio. Blocking I/O is not exposed because Shifter's
// capture and playback streams are both low-latency callback streams.
//
// # Thread Safety
//
// This library is NOT thread-safe. Callers must ensure that:
//   - Initialize() and Terminate() are called from a single goroutine
//   - Each PaStream instance is accessed by only one goroutine at a time
//   - No concurrent calls to the same stream's methods (OpenCallback, Close, etc.)
//
// It is safe to use multiple PaStream instances from different goroutines
// as long as each stream is accessed by only one goroutine.
//
// # Audio Callback Constraints
//
// Audio callbacks run in a real-time context managed by PortAudio (not a Go goroutine).
// In callbacks, you MUST:
//   - Process audio quickly (typically < 1ms)
//   - Use pre-allocated buffers only
//   - Avoid memory allocation (make, new, append)
//   - Avoid blocking operations (mutex, I/O, time.Sleep)
//   - Avoid calling Go runtime functions
//
// Violating these constraints may cause audio glitches, stuttering, or dropouts.
//
// # See Also
//
//   - PortAudio documentation: http://www.portaudio.com/docs.html
package portaudio

/*
#cgo pkg-config: portaudio-2.0
#include <portaudio.h>

// Ensure these PortAudio functions are available
PaDeviceIndex Pa_GetDefaultInputDevice(void);
PaDeviceIndex Pa_GetDefaultOutputDevice(void);
const PaHostErrorInfo* Pa_GetLastHostErrorInfo(void);
*/
import "C"
import (
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

var (
	// initialized tracks the initialization reference count
	initialized int
	// initMu protects the initialized counter
	initMu sync.Mutex
)

type PaSampleFormat int

const (
	SampleFmtFloat32 PaSampleFormat = C.paFloat32
	SampleFmtInt32   PaSampleFormat = C.paInt32
	SampleFmtInt24   PaSampleFormat = C.paInt24
	SampleFmtInt16   PaSampleFormat = C.paInt16
	SampleFmtInt8    PaSampleFormat = C.paInt8
	SampleFmtUInt8   PaSampleFormat = C.paUInt8
)

// PortAudio error codes (commonly used)
const (
	ErrNoError      = C.paNoError
	ErrBadStreamPtr = C.paBadStreamPtr
)

// PaStreamFlags specify special options when opening a stream
type PaStreamFlags int

const (
	// NoFlag is the default, no special flags set
	NoFlag PaStreamFlags = 0x00000000
	// ClipOff disables automatic output clipping.
	ClipOff PaStreamFlags = 0x00000001
	// DitherOff disables dithering when converting from float to integer samples
	DitherOff PaStreamFlags = 0x00000002
	// NeverDropInput prevents PortAudio from dropping input data when the callback is slow
	NeverDropInput PaStreamFlags = 0x00000004
	// PrimeOutputBuffersUsingStreamCallback pre-fills output buffers before starting
	PrimeOutputBuffersUsingStreamCallback PaStreamFlags = 0x00000008
)

// PaTime represents time in seconds as used by PortAudio (maps to C double).
type PaTime float64

type PaStreamParameters struct {
	DeviceIndex      int
	ChannelCount     int
	SampleFormat     PaSampleFormat
	SuggestedLatency PaTime
}

type PaError struct {
	ErrorCode int
}

// UnanticipatedHostError represents a host-specific error that occurred
// within the underlying audio API (ALSA, CoreAudio, WASAPI, etc.).
type UnanticipatedHostError struct {
	Code          int
	Text          string
	HostApiType   int
	HostErrorCode int
	HostErrorText string
}

func (e *UnanticipatedHostError) Error() string {
	if e.HostErrorText != "" {
		return fmt.Sprintf("%s [Host API error %d: %s]", e.Text, e.HostErrorCode, e.HostErrorText)
	}
	return fmt.Sprintf("%s [Host API error %d]", e.Text, e.HostErrorCode)
}

type PaStream struct {
	stream           unsafe.Pointer
	isOpen           bool
	InputParameters  *PaStreamParameters // nil for output-only streams
	OutputParameters *PaStreamParameters // nil for input-only streams
	SampleRate       float64
	StreamFlags      PaStreamFlags
	// UseHighLatency when true uses DefaultHighOutputLatency instead of
	// DefaultLowOutputLatency. Shifter always wants low latency.
	UseHighLatency bool
	// callbackID stores the stream ID for callback-based streams (internal use)
	callbackID int
	// callbackIDPtr stores the C-allocated pointer to the stream ID (for cleanup)
	callbackIDPtr unsafe.Pointer
}

func (e *PaError) Error() string {
	return GetErrorText(e.ErrorCode)
}

func GetVersion() int {
	return int(C.Pa_GetVersion())
}

func GetVersionText() string {
	vi := C.Pa_GetVersionInfo()
	vt := C.GoString(vi.versionText)
	return vt
}

func GetErrorText(errorCode int) string {
	return C.GoString(C.Pa_GetErrorText(C.int(errorCode)))
}

// newError creates an appropriate error from a PortAudio error code.
// For unanticipated host errors, it extracts detailed host-specific information.
func newError(code C.PaError) error {
	if code == C.paNoError {
		return nil
	}

	if code == C.paUnanticipatedHostError {
		hostErr := C.Pa_GetLastHostErrorInfo()
		if hostErr != nil {
			return &UnanticipatedHostError{
				Code:          int(code),
				Text:          C.GoString(C.Pa_GetErrorText(code)),
				HostApiType:   int(hostErr.hostApiType),
				HostErrorCode: int(hostErr.errorCode),
				HostErrorText: C.GoString(hostErr.errorText),
			}
		}
	}

	return &PaError{int(code)}
}

// Initialize initializes the PortAudio library.
//
// This function uses reference counting, so multiple calls are safe. Each call to
// Initialize must be matched with a corresponding call to Terminate.
func Initialize() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized == 0 {
		errCode := C.Pa_Initialize()
		if errCode != C.paNoError {
			return newError(errCode)
		}
	}
	initialized++
	return nil
}

// Terminate terminates the PortAudio library and releases resources.
func Terminate() error {
	initMu.Lock()
	defer initMu.Unlock()

	if initialized == 0 {
		return nil
	}

	initialized--
	if initialized == 0 {
		errCode := C.Pa_Terminate()
		if errCode != C.paNoError {
			initialized++ // restore count on error
			return newError(errCode)
		}
	}
	return nil
}

func GetDeviceCount() (int, error) {
	dc := int(C.Pa_GetDeviceCount())
	if dc < 0 {
		return 0, &PaError{dc}
	}
	return dc, nil
}

// Devices returns a slice of all available audio devices.
func Devices() ([]*DeviceInfo, error) {
	count, err := GetDeviceCount()
	if err != nil {
		return nil, err
	}

	devices := make([]*DeviceInfo, count)
	for i := 0; i < count; i++ {
		devices[i], err = GetDeviceInfo(i)
		if err != nil {
			return nil, err
		}
	}
	return devices, nil
}

// DefaultInputDevice returns the default input device.
func DefaultInputDevice() (*DeviceInfo, error) {
	index := int(C.Pa_GetDefaultInputDevice())
	if index < 0 {
		return nil, errors.New("no default input device available")
	}
	return GetDeviceInfo(index)
}

// DefaultOutputDevice returns the default output device.
func DefaultOutputDevice() (*DeviceInfo, error) {
	index := int(C.Pa_GetDefaultOutputDevice())
	if index < 0 {
		return nil, errors.New("no default output device available")
	}
	return GetDeviceInfo(index)
}

type DeviceInfo struct {
	// Index is the PortAudio device index used when opening streams
	Index                    int
	Name                     string
	HostApiIndex             int
	MaxInputChannels         int
	MaxOutputChannels        int
	DefaultLowInputLatency   PaTime
	DefaultLowOutputLatency  PaTime
	DefaultHighInputLatency  PaTime
	DefaultHighOutputLatency PaTime
	DefaultSampleRate        float64
}

func GetDeviceInfo(deviceIdx int) (*DeviceInfo, error) {
	di := C.Pa_GetDeviceInfo(C.int(deviceIdx))
	if di == nil {
		return nil, errors.New("invalid device index")
	}

	devInfo := DeviceInfo{
		Index:                    deviceIdx,
		Name:                     C.GoString(di.name),
		HostApiIndex:             int(di.hostApi),
		MaxInputChannels:         int(di.maxInputChannels),
		MaxOutputChannels:        int(di.maxOutputChannels),
		DefaultLowInputLatency:   PaTime(di.defaultLowInputLatency),
		DefaultLowOutputLatency:  PaTime(di.defaultLowOutputLatency),
		DefaultHighInputLatency:  PaTime(di.defaultHighInputLatency),
		DefaultHighOutputLatency: PaTime(di.defaultHighOutputLatency),
		DefaultSampleRate:        float64(di.defaultSampleRate),
	}

	return &devInfo, nil
}

func IsFormatSupported(inputParameters *PaStreamParameters, outputParameters *PaStreamParameters, sampleRate float64) error {
	var inParams, outParams *C.PaStreamParameters

	if inputParameters != nil {
		inParams = &C.PaStreamParameters{
			device:           C.int(inputParameters.DeviceIndex),
			channelCount:     C.int(inputParameters.ChannelCount),
			sampleFormat:     C.PaSampleFormat(inputParameters.SampleFormat),
			suggestedLatency: C.double(inputParameters.SuggestedLatency),
		}
	}

	if outputParameters != nil {
		outParams = &C.PaStreamParameters{
			device:           C.int(outputParameters.DeviceIndex),
			channelCount:     C.int(outputParameters.ChannelCount),
			sampleFormat:     C.PaSampleFormat(outputParameters.SampleFormat),
			suggestedLatency: C.double(outputParameters.SuggestedLatency),
		}
	}

	errCode := C.Pa_IsFormatSupported(inParams, outParams, C.double(sampleRate))
	if errCode != C.paFormatIsSupported {
		return newError(errCode)
	}
	return nil
}

// NewCallbackOutputStream creates a new output-only stream for callback-based audio,
// configured for low latency.
func NewCallbackOutputStream(device int, channels int, sampleFormat PaSampleFormat, sampleRate float64) (*PaStream, error) {
	params := PaStreamParameters{
		DeviceIndex:  device,
		ChannelCount: channels,
		SampleFormat: sampleFormat,
	}

	if err := IsFormatSupported(nil, &params, sampleRate); err != nil {
		return nil, err
	}

	return &PaStream{
		OutputParameters: &params,
		SampleRate:       sampleRate,
		UseHighLatency:   false,
		StreamFlags:      ClipOff,
	}, nil
}

// NewCallbackInputStream creates a new input-only stream for callback-based capture,
// configured for low latency.
func NewCallbackInputStream(device int, channels int, sampleFormat PaSampleFormat, sampleRate float64) (*PaStream, error) {
	params := PaStreamParameters{
		DeviceIndex:  device,
		ChannelCount: channels,
		SampleFormat: sampleFormat,
	}

	if err := IsFormatSupported(&params, nil, sampleRate); err != nil {
		return nil, err
	}

	return &PaStream{
		InputParameters: &params,
		SampleRate:      sampleRate,
		UseHighLatency:  false,
		StreamFlags:     ClipOff,
	}, nil
}

func (s *PaStream) Close() error {
	if !s.isOpen {
		return nil
	}

	errCode := C.Pa_CloseStream(s.stream)
	if errCode != C.paNoError {
		return newError(errCode)
	}

	s.isOpen = false

	return nil
}

func (s *PaStream) StartStream() error {
	if !s.isOpen {
		return &PaError{int(C.paBadStreamPtr)}
	}

	errCode := C.Pa_StartStream(s.stream)
	if errCode != C.paNoError {
		return newError(errCode)
	}

	return nil
}

func (s *PaStream) StopStream() error {
	if !s.isOpen {
		return &PaError{int(C.paBadStreamPtr)}
	}

	errCode := C.Pa_StopStream(s.stream)
	if errCode != C.paNoError {
		return newError(errCode)
	}

	return nil
}

// GetSampleSize returns the size in bytes for a given sample format.
// Returns 0 for unknown formats.
func GetSampleSize(format PaSampleFormat) int {
	switch format {
	case SampleFmtFloat32:
		return 4
	case SampleFmtInt32:
		return 4
	case SampleFmtInt24:
		return 3
	case SampleFmtInt16:
		return 2
	case SampleFmtInt8:
		return 1
	case SampleFmtUInt8:
		return 1
	default:
		return 0
	}
}
