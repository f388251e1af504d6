package main

import (
	"reflect"
	"strings"
	"testing"

	"novamcp/nova"
)

func ccDump(t *testing.T) *nova.SystemDump {
	t.Helper()
	sys := nova.NewSystemDump(0)
	drive, delay := 20, 30
	if err := sys.SetCCMapping(1, &drive); err != nil {
		t.Fatalf("SetCCMapping(drive): %v", err)
	}
	if err := sys.SetCCMapping(8, &delay); err != nil {
		t.Fatalf("SetCCMapping(delay): %v", err)
	}
	return sys
}

func TestParseControls(t *testing.T) {
	mappings := ccDump(t).CCMappings()

	got, err := parseControls("drive=on, delay=64|Drive=off", mappings)
	if err != nil {
		t.Fatalf("parseControls: %v", err)
	}
	want := []controlSetting{
		{Name: "Drive", CC: 20, Value: 127},
		{Name: "Delay", CC: 30, Value: 64},
		{Name: "Drive", CC: 20, Value: 0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	for _, bad := range []string{"", "drive", "wah=1", "noise-gate=1", "drive=200", "delay=loud"} {
		if _, err := parseControls(bad, mappings); err == nil {
			t.Errorf("parseControls(%q) succeeded", bad)
		}
	}
}

func TestParsePresetToken(t *testing.T) {
	tests := map[string]int{
		"F0-1": 1,
		"f3-2": 11,
		"F9-3": 30,
		"00-1": 31,
		"05-1": 46,
		"19-3": 90,
		"45":   45,
	}
	for in, want := range tests {
		got, err := parsePresetToken(in)
		if err != nil {
			t.Errorf("parsePresetToken(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("parsePresetToken(%q) = %d, want %d", in, got, want)
		}
		if label := nova.MapLabel(got); in != "45" && label != strings.ToUpper(in) {
			t.Errorf("MapLabel(%d) = %q, want %q", got, label, in)
		}
	}

	for _, bad := range []string{"", "F10-1", "20-1", "03-4", "0", "91", "x"} {
		if _, err := parsePresetToken(bad); err == nil {
			t.Errorf("parsePresetToken(%q) succeeded", bad)
		}
	}
}

func TestProgramFor(t *testing.T) {
	if p, err := programFor(46, nil); err != nil || p != 45 {
		t.Fatalf("programFor without map = %d, %v", p, err)
	}

	sys := nova.NewSystemDump(0)
	if _, err := programFor(46, sys); err == nil {
		t.Fatal("programFor found a route in an empty map")
	}
	preset := 46
	if err := sys.SetProgramMapIn(5, &preset); err != nil {
		t.Fatalf("SetProgramMapIn: %v", err)
	}
	if p, err := programFor(46, sys); err != nil || p != 4 {
		t.Fatalf("programFor = %d, %v, want 4", p, err)
	}
}

func TestNilDeviceIsRefused(t *testing.T) {
	var dev *Nova
	if err := dev.RecallPreset(1); err != errNoDevice {
		t.Errorf("RecallPreset on nil device: %v", err)
	}
	if err := sendControls(dev, []controlSetting{{Name: "Drive", CC: 20, Value: 1}}); err == nil {
		t.Error("sendControls on nil device succeeded")
	}
}
