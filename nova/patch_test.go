package nova

import (
	"errors"
	"testing"
)

// rawPatch builds a 520-byte dump by hand so the tests do not depend on the
// code under test for the framing.
func rawPatch(t *testing.T, name string, code byte, slots map[int]int) []byte {
	t.Helper()
	b := make([]byte, 520)
	copy(b, []byte{0xF0, 0x00, 0x20, 0x1F, 0x00, 0x63, 0x20, 0x01})
	b[8] = code
	copy(b[10:34], name)
	for i, v := range slots {
		w, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode(%d): %v", v, err)
		}
		copy(b[34+4*i:], w[:])
	}
	sum := 0
	for _, c := range b[34:518] {
		sum += int(c)
	}
	b[518] = byte(sum % 128)
	b[519] = 0xF7
	return b
}

func TestLeadToneEndToEnd(t *testing.T) {
	b := rawPatch(t, "Lead Tone", 40, map[int]int{1: 120, 2: 1, 9: 2, 10: -12, 3: -3})
	p, err := ParsePatch(b)
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := p.Name(); got != "Lead Tone" {
		t.Fatalf("Name() = %q, want %q", got, "Lead Tone")
	}

	sv, err := p.Slot(0)
	if err != nil {
		t.Fatalf("Slot(0): %v", err)
	}
	want, _, _ := DecodeValue(sv.Type, sv.Value)
	if sv.Display != want {
		t.Errorf("slot 0 display %q, catalog says %q", sv.Display, want)
	}

	for i, want := range map[int]string{1: "120", 2: "SemiPar", 3: "-3", 9: "advance", 10: "-12"} {
		sv, err := p.Slot(i)
		if err != nil {
			t.Fatalf("Slot(%d): %v", i, err)
		}
		if sv.Display != want {
			t.Errorf("slot %d (%s) display %q, want %q", i, sv.Name, sv.Display, want)
		}
	}

	if bank, pres := p.BankPreset(); bank != 3 || pres != 1 {
		t.Errorf("BankPreset() = %d, %d; want 3, 1", bank, pres)
	}
	if got := p.PresetLabel(); got != "03-1" {
		t.Errorf("PresetLabel() = %q", got)
	}
	if got := p.Bytes(); string(got) != string(b) {
		t.Errorf("Bytes() differs from the parsed input")
	}
}

func TestDefaultPatchChecksum(t *testing.T) {
	p, err := NewPatch("TEST", 31)
	if err != nil {
		t.Fatalf("NewPatch: %v", err)
	}
	for i := 0; i < p.Len(); i++ {
		sv, err := p.Slot(i)
		if err != nil {
			t.Fatalf("Slot(%d): %v", i, err)
		}
		info, _ := Lookup(sv.Type)
		if err := p.Set(i, info.Default); err != nil {
			t.Fatalf("Set(%d, %d): %v", i, info.Default, err)
		}
	}

	b := p.Bytes()
	sum := 0
	for _, c := range b[34:518] {
		sum += int(c)
	}
	if got, want := p.Checksum(), byte(sum%128); got != want {
		t.Fatalf("Checksum() = 0x%02X, independent sum 0x%02X", got, want)
	}
	if b[518] != byte(sum%128) {
		t.Errorf("serialized checksum 0x%02X, want 0x%02X", b[518], sum%128)
	}
	if string(b[10:14]) != "TEST" || b[14] != 0 {
		t.Errorf("name field % X", b[10:34])
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateReportsCheck(t *testing.T) {
	good := rawPatch(t, "X", 31, nil)

	flipped := append([]byte(nil), good...)
	flipped[5] ^= 0x01
	p, err := ParsePatch(flipped)
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	err = p.Validate()
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("flipped signature: %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Offset != 5 || ve.Check != CheckSignature {
		t.Errorf("validation error = %+v", ve)
	}

	offByOne := append([]byte(nil), good...)
	offByOne[518] = (offByOne[518] + 1) & 0x7F
	p, _ = ParsePatch(offByOne)
	if err := p.Validate(); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("checksum off by one: %v", err)
	}

	trailer := append([]byte(nil), good...)
	trailer[519] = 0x00
	p, _ = ParsePatch(trailer)
	if err := p.Validate(); !errors.Is(err, ErrTrailerMismatch) {
		t.Fatalf("bad trailer: %v", err)
	}

	devID := append([]byte(nil), good...)
	devID[4] = 0x7F
	p, _ = ParsePatch(devID)
	if err := p.Validate(); err != nil {
		t.Fatalf("device id should not be checked: %v", err)
	}
}

func TestParsePatchLength(t *testing.T) {
	b := rawPatch(t, "X", 31, nil)
	if _, err := ParsePatch(b[:519]); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("519 bytes: %v", err)
	}
	if _, err := ParsePatch(append(b, 0xF7)); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("521 bytes: %v", err)
	}
	if _, err := Parse(b[:4]); !errors.Is(err, ErrTruncatedInput) {
		t.Errorf("Parse of 4 bytes: %v", err)
	}
	f, err := Parse(b)
	if err != nil || f.Kind() != KindPatch {
		t.Errorf("Parse = %v, %v", f, err)
	}
}

func TestInvalidPatchRefusesEdits(t *testing.T) {
	b := rawPatch(t, "X", 31, map[int]int{1: 120})
	b[518] = (b[518] + 1) & 0x7F
	p, err := ParsePatch(b)
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if err := p.Set(1, 200); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Set on invalid frame: %v", err)
	}
	if err := p.SetName("Other"); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("SetName on invalid frame: %v", err)
	}
	sv, err := p.Slot(1)
	if err != nil || sv.Display != "120" {
		t.Errorf("slot 1 still readable for diagnostics: %+v, %v", sv, err)
	}
	if got := p.Bytes(); got[518] != b[518] {
		t.Errorf("Bytes() repaired the checksum of an invalid frame")
	}
}

func TestSetKeepsChecksumCurrent(t *testing.T) {
	p, _ := NewPatch("Edit", 45)
	if err := p.SetDisplay(2, "Parallel"); err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}
	if err := p.Set(3, -40); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate after edits: %v", err)
	}
	q, err := ParsePatch(p.Bytes())
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	sv, _ := q.Slot(2)
	if sv.Display != "Parallel" || sv.Value != 2 {
		t.Errorf("slot 2 = %+v", sv)
	}
}

func TestSetRejectsUnlistedValue(t *testing.T) {
	p, _ := NewPatch("X", 31)
	before := p.Bytes()
	err := p.SetDisplay(2, "Diagonal")
	var re *RangeError
	if !errors.As(err, &re) || re.Slot != 2 || !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("SetDisplay miss: %v", err)
	}
	if err := p.Set(2, 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Set(2, 3): %v", err)
	}
	if err := p.Set(500, 0); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Set(500, 0): %v", err)
	}
	if string(p.Bytes()) != string(before) {
		t.Errorf("failed edits changed the buffer")
	}
}

func TestSetName(t *testing.T) {
	p, _ := NewPatch("A very long preset name that does not fit", 31)
	if got := p.Name(); got != "A very long preset name " {
		t.Errorf("Name() = %q", got)
	}
	if err := p.SetName("Hi"); err != nil {
		t.Fatal(err)
	}
	if got := p.Name(); got != "Hi" {
		t.Errorf("Name() = %q after shortening", got)
	}
	if _, err := NewPatch("X", 91); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("NewPatch with code 91: %v", err)
	}
}

func TestDecodeFallbackKeepsBuffer(t *testing.T) {
	var hooked []TypeID
	SetDecodeFallbackHook(func(id TypeID) { hooked = append(hooked, id) })
	t.Cleanup(func() { SetDecodeFallbackHook(nil) })

	p, _ := NewPatch("X", 31)
	if err := p.setRaw(2, 50); err != nil {
		t.Fatal(err)
	}
	sv, err := p.Slot(2)
	if err != nil {
		t.Fatalf("Slot(2): %v", err)
	}
	if !sv.Fallback || sv.Value != 0 || sv.Display != "Serial" {
		t.Errorf("fallback view = %+v", sv)
	}
	if raw, _ := p.raw(2); raw != 50 {
		t.Errorf("stored value changed to %d", raw)
	}
	if len(hooked) != 1 || hooked[0] != TypeRouting {
		t.Errorf("hook saw %v", hooked)
	}
}

func TestMalformedSlotSurfaces(t *testing.T) {
	p, _ := NewPatch("X", 31)
	if err := p.setWord(1, [4]byte{0, 0, 0, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Slot(1); !errors.Is(err, ErrFormat) {
		t.Fatalf("Slot(1) = %v, want ErrFormat", err)
	}
	if sv := p.Slots()[1]; sv.Error == "" {
		t.Errorf("Slots() hid the malformed slot")
	}
}

func TestPatchCompressorRetype(t *testing.T) {
	p, _ := NewPatch("X", 31)
	if sv, _ := p.Slot(15); sv.Type != Type1_20 {
		t.Fatalf("slot 15 in perc mode has type %s", sv.Type)
	}
	if err := p.Set(9, 2); err != nil {
		t.Fatal(err)
	}
	if sv, _ := p.Slot(15); sv.Type != TypeInt {
		t.Errorf("slot 15 in advanced mode has type %s, want int", sv.Type)
	}
	if sv, _ := p.Slot(10); sv.Type != TypeN40_0 || sv.Name != "Threshold (dB)" {
		t.Errorf("slot 10 = %+v", sv)
	}
	rows, err := p.View(BlockCompressor)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 7 {
		t.Errorf("advanced compressor shows %d rows", len(rows))
	}
}

func TestPatchMapParam(t *testing.T) {
	p, _ := NewPatch("X", 31)
	if err := p.Set(41, 1); err != nil {
		t.Fatal(err)
	}
	if err := p.SetDisplay(5, "FLA FeedB"); err != nil {
		t.Fatalf("SetDisplay(5): %v", err)
	}
	sv, _ := p.Slot(5)
	if sv.Value != 4 || sv.Display != "FLA FeedB" {
		t.Errorf("map param = %+v", sv)
	}
	if err := p.SetDisplay(5, "CHO HiCut"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("chorus target with flanger selected: %v", err)
	}
	if err := p.Set(5, -1); err != nil {
		t.Fatal(err)
	}
	if sv, _ := p.Slot(5); sv.Display != "Off" {
		t.Errorf("map param -1 shows %q", sv.Display)
	}
}

func TestSetNameKeepsASCII(t *testing.T) {
	p, err := NewPatch("Café\xf7", 31)
	if err != nil {
		t.Fatalf("NewPatch: %v", err)
	}
	if got := p.Name(); got != "Caf??" {
		t.Errorf("Name() = %q, want %q", got, "Caf??")
	}
	for i, c := range p.Bytes()[nameOffset : nameOffset+NameLength] {
		if c&0x80 != 0 {
			t.Fatalf("name byte %d is 0x%02X", i, c)
		}
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidateRejectsHighBitBytes(t *testing.T) {
	for _, off := range []int{4, 12, 200} {
		b := rawPatch(t, "X", 31, nil)
		b[off] |= 0x80
		p, _ := ParsePatch(b)
		err := p.Validate()
		var ve *ValidationError
		if !errors.Is(err, ErrDataByte) || !errors.As(err, &ve) || ve.Offset != off || ve.Check != CheckDataByte {
			t.Errorf("bit 7 at byte %d: %v", off, err)
		}
		if err := p.SetName("Y"); !errors.Is(err, ErrDataByte) {
			t.Errorf("edit accepted on frame with bit 7 at byte %d: %v", off, err)
		}
	}
}

func TestModDelayAcceptsZero(t *testing.T) {
	p, _ := NewPatch("X", 31)
	sv, err := p.Slot(48)
	if err != nil {
		t.Fatal(err)
	}
	if sv.Type != TypeDeci01_50 || sv.Display != "0.0" || sv.Fallback {
		t.Errorf("fresh patch slot 48 = %+v", sv)
	}
	if err := p.Set(48, 0); err != nil {
		t.Errorf("Set(48, 0): %v", err)
	}
	if err := p.Set(48, 501); err != nil {
		t.Errorf("Set(48, 501): %v", err)
	}
	if sv, _ := p.Slot(48); sv.Display != "50.1" {
		t.Errorf("slot 48 shows %q", sv.Display)
	}
}
