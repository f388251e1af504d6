package main

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"novamcp/nova"
)

func newTestPatch(t *testing.T, name string, code int) *nova.Patch {
	t.Helper()
	p, err := nova.NewPatch(name, code)
	if err != nil {
		t.Fatalf("NewPatch: %v", err)
	}
	return p
}

func TestDescribePatch(t *testing.T) {
	p := newTestPatch(t, "Lead Tone", 40)

	r := describe(p, false)
	if r.Kind != "patch" || !r.Valid || r.Error != "" {
		t.Fatalf("report header = %+v", r)
	}
	if r.Name != "Lead Tone" || r.Preset != "03-1" {
		t.Errorf("name %q preset %q", r.Name, r.Preset)
	}
	if len(r.Blocks) != len(nova.Blocks()) {
		t.Errorf("%d blocks, want %d", len(r.Blocks), len(nova.Blocks()))
	}
	if r.Slots != nil {
		t.Errorf("slots listed without all")
	}

	if all := describe(p, true); len(all.Slots) != p.Len() {
		t.Errorf("all lists %d slots, want %d", len(all.Slots), p.Len())
	}
}

func TestDescribeInvalidFrame(t *testing.T) {
	b := newTestPatch(t, "Broken", 31).Bytes()
	b[518] ^= 0x01

	f, err := parseFrame(b)
	if err != nil {
		t.Fatalf("parseFrame: %v", err)
	}
	r := describe(f, false)
	if r.Valid || r.Error == "" {
		t.Fatalf("invalid frame reported as %+v", r)
	}
	if r.Name != "Broken" {
		t.Errorf("invalid frame still describes its name, got %q", r.Name)
	}
}

func TestDescribeSystemDump(t *testing.T) {
	r := describe(nova.NewSystemDump(2), false)
	if r.Kind != "system" || !r.Valid || r.DeviceID != 2 {
		t.Fatalf("report header = %+v", r)
	}
	if len(r.Sections) != len(nova.Sections()) || len(r.CC) != 11 {
		t.Errorf("%d sections, %d cc mappings", len(r.Sections), len(r.CC))
	}
	if r.Preset != "None" {
		t.Errorf("current preset %q", r.Preset)
	}
}

func TestApplyEdit(t *testing.T) {
	p := newTestPatch(t, "Edit", 31)

	tests := []struct {
		slot    int
		value   string
		display string
	}{
		{2, "Parallel", "Parallel"},
		{3, "-40", "-40"},
		{2, "1", "SemiPar"},
	}
	for _, tt := range tests {
		if err := applyEdit(p, tt.slot, tt.value); err != nil {
			t.Fatalf("applyEdit(%d, %q): %v", tt.slot, tt.value, err)
		}
		sv, _ := p.Slot(tt.slot)
		if sv.Display != tt.display {
			t.Errorf("slot %d shows %q after %q, want %q", tt.slot, sv.Display, tt.value, tt.display)
		}
	}

	for _, value := range []string{"Diagonal", "3"} {
		if err := applyEdit(p, 2, value); !errors.Is(err, nova.ErrOutOfRange) {
			t.Errorf("applyEdit(2, %q) = %v, want ErrOutOfRange", value, err)
		}
	}
	if err := p.Validate(); err != nil {
		t.Errorf("edits broke the frame: %v", err)
	}
}

func TestDecodeHex(t *testing.T) {
	b, err := decodeHex("F0 00\n20\t1f")
	if err != nil {
		t.Fatalf("decodeHex: %v", err)
	}
	if hex.EncodeToString(b) != "f000201f" {
		t.Errorf("decodeHex = % X", b)
	}
	if _, err := decodeHex("F0 0"); err == nil {
		t.Error("odd digit count accepted")
	}
}

func TestEditFrame(t *testing.T) {
	src := hex.EncodeToString(newTestPatch(t, "Hex", 31).Bytes())

	rep, err := editFrame(src, 3, "-40")
	if err != nil {
		t.Fatalf("editFrame: %v", err)
	}
	if rep.Slot.Value != -40 {
		t.Errorf("slot value %d", rep.Slot.Value)
	}

	b, _ := hex.DecodeString(rep.Hex)
	p, err := nova.ParsePatch(b)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("edited frame invalid: %v", err)
	}
	if sv, _ := p.Slot(3); sv.Value != -40 {
		t.Errorf("edited frame holds %d", sv.Value)
	}
}

func TestEditFrameRefusesInvalid(t *testing.T) {
	b := newTestPatch(t, "Bad", 31).Bytes()
	b[519] = 0x00
	_, err := editFrame(hex.EncodeToString(b), 3, "-40")
	var verr *nova.ValidationError
	if !errors.As(err, &verr) || verr.Check != nova.CheckTrailer {
		t.Fatalf("editFrame on bad trailer = %v", err)
	}
}

func TestDescribeType(t *testing.T) {
	rep, err := describeType("hi cut")
	if err != nil {
		t.Fatalf("describeType: %v", err)
	}
	found := false
	for _, v := range rep.Values {
		if v.Raw == 34 && v.Display == "1.00k" {
			found = true
		}
	}
	if !found {
		t.Errorf("hi cut values lack 34 = 1.00k")
	}

	if _, err := describeType("no such type"); err == nil {
		t.Error("unknown type accepted")
	}
}

func TestSetInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.syx")
	if err := os.WriteFile(path, newTestPatch(t, "File", 31).Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := setInFile(path, "2", "Parallel"); err != nil {
		t.Fatalf("setInFile: %v", err)
	}
	if err := validateFile(path); err != nil {
		t.Fatalf("validateFile after edit: %v", err)
	}

	f, err := readFrameFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if sv, _ := f.Slot(2); sv.Display != "Parallel" {
		t.Errorf("file holds %q", sv.Display)
	}

	if err := setInFile(path, "two", "Parallel"); err == nil {
		t.Error("non-numeric slot accepted")
	}
}
