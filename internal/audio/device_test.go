package audio

import (
	"testing"

	"github.com/xesco/osx-shifter/portaudio"
)

func TestIsVirtualDevice(t *testing.T) {
	cases := map[string]bool{
		"BlackHole 2ch":      true,
		"Soundflower (2ch)":  true,
		"Loopback Audio":     true,
		"blackhole":          true,
		"MacBook Pro Speakers": false,
		"External Headphones":  false,
	}
	for name, want := range cases {
		if got := isVirtualDevice(name); got != want {
			t.Errorf("isVirtualDevice(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFindDeviceByName(t *testing.T) {
	devices := []*portaudio.DeviceInfo{
		{Index: 0, Name: "BlackHole 2ch"},
		{Index: 1, Name: "MacBook Pro Speakers"},
	}

	if d := findDeviceByName(devices, "blackhole"); d == nil || d.Index != 0 {
		t.Errorf("expected case-insensitive match on index 0, got %v", d)
	}
	if d := findDeviceByName(devices, "nonexistent"); d != nil {
		t.Errorf("expected no match, got %v", d)
	}
}
