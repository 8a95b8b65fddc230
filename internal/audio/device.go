package audio

import (
	"fmt"
	"io"
	"strings"

	"github.com/xesco/osx-shifter/portaudio"
)

// virtualDeviceNames is the case-insensitive allow-list of virtual/loopback
// driver names Shifter accepts as a capture source. Anything else is assumed
// to be a physical device and rejected for input, required for output.
var virtualDeviceNames = []string{"blackhole", "soundflower", "loopback"}

// isVirtualDevice reports whether name matches one of virtualDeviceNames as a
// case-insensitive substring.
func isVirtualDevice(name string) bool {
	lower := strings.ToLower(name)
	for _, v := range virtualDeviceNames {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// findDeviceByName returns the first device whose name contains substr,
// case-insensitively, or nil if none does. The returned DeviceInfo carries
// its PortAudio index.
func findDeviceByName(devices []*portaudio.DeviceInfo, substr string) *portaudio.DeviceInfo {
	lower := strings.ToLower(substr)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return d
		}
	}
	return nil
}

// SelectedDevices holds the resolved input/output device pair for an Engine.
type SelectedDevices struct {
	Input  *portaudio.DeviceInfo
	Output *portaudio.DeviceInfo
}

// SelectDevices resolves the input and output devices per §6's selection
// policy: input must match inputSubstr and be a virtual/loopback device;
// output, if outputSubstr is empty, defaults to the system output device and
// must not be virtual and must differ from the input device.
func SelectDevices(inputSubstr, outputSubstr string) (*SelectedDevices, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}

	input := findDeviceByName(devices, inputSubstr)
	if input == nil {
		return nil, fmt.Errorf("no audio device found matching %q", inputSubstr)
	}
	if input.MaxInputChannels == 0 {
		return nil, fmt.Errorf("%q has no input channels", input.Name)
	}
	if !isVirtualDevice(input.Name) {
		return nil, fmt.Errorf("%q is not a virtual audio device; use -l to list available input devices", input.Name)
	}

	var output *portaudio.DeviceInfo
	if outputSubstr != "" {
		output = findDeviceByName(devices, outputSubstr)
		if output == nil {
			return nil, fmt.Errorf("no audio device found matching %q", outputSubstr)
		}
		if output.MaxOutputChannels == 0 {
			return nil, fmt.Errorf("%q has no output channels", output.Name)
		}
		if isVirtualDevice(output.Name) {
			return nil, fmt.Errorf("%q is a virtual audio device and cannot be used as output; use -l to list available output devices", output.Name)
		}
	} else {
		def, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("no default output device: %w", err)
		}
		if isVirtualDevice(def.Name) {
			return nil, fmt.Errorf("default output device %q is a virtual device; use -o to specify a physical output device", def.Name)
		}
		output = def
	}

	if output.Index == input.Index {
		return nil, fmt.Errorf("input and output cannot be the same device (%q)", input.Name)
	}

	return &SelectedDevices{Input: input, Output: output}, nil
}

// ListDevices prints the available virtual input devices and physical output
// devices to w, grouped the way §12 describes, annotating the default output
// device.
func ListDevices(w io.Writer, inputSubstr string) error {
	devices, err := portaudio.Devices()
	if err != nil {
		return fmt.Errorf("enumerate devices: %w", err)
	}

	defaultOut, _ := portaudio.DefaultOutputDevice()
	currentInput := findDeviceByName(devices, inputSubstr)

	fmt.Fprintln(w, "Available input devices (virtual):")
	found := false
	for _, d := range devices {
		if d.MaxInputChannels == 0 || !isVirtualDevice(d.Name) {
			continue
		}
		found = true
		fmt.Fprintf(w, "  %s  [%dch %.0fHz]\n", d.Name, d.MaxInputChannels, d.DefaultSampleRate)
	}
	if !found {
		fmt.Fprintln(w, "  (none found)")
	}

	fmt.Fprintln(w, "\nAvailable output devices:")
	for _, d := range devices {
		if d.MaxOutputChannels == 0 || isVirtualDevice(d.Name) {
			continue
		}
		if currentInput != nil && d.Index == currentInput.Index {
			continue
		}
		tag := ""
		if defaultOut != nil && d.Index == defaultOut.Index {
			tag = " (default)"
		}
		fmt.Fprintf(w, "  %s  [%dch %.0fHz]%s\n", d.Name, d.MaxOutputChannels, d.DefaultSampleRate, tag)
	}

	return nil
}
