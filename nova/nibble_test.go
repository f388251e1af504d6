package nova

import (
	"errors"
	"testing"
)

func TestEncodeDecodeFullRange(t *testing.T) {
	for v := MinValue; v <= MaxValue; v++ {
		b, err := Encode(v)
		if err != nil {
			t.Fatalf("Encode(%d): %v", v, err)
		}
		if err := Check(b, MinValue, MaxValue); err != nil {
			t.Fatalf("Encode(%d) = % X is not wire valid: %v", v, b[:], err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("Decode(% X): %v", b[:], err)
		}
		if got != v {
			t.Fatalf("Decode(Encode(%d)) = %d", v, got)
		}
	}
}

func TestEncodeRejectsOutOfRange(t *testing.T) {
	for _, v := range []int{MinValue - 1, MaxValue + 1, 1 << 20} {
		if _, err := Encode(v); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("Encode(%d) error = %v, want ErrOutOfRange", v, err)
		}
	}
}

func TestWireValidBytesRoundTrip(t *testing.T) {
	for _, tail := range [][2]byte{{0, signPositive}, {overflowNeg, signNegative}} {
		for b0 := 0; b0 < 128; b0++ {
			for b1 := 0; b1 < 128; b1++ {
				b := [4]byte{byte(b0), byte(b1), tail[0], tail[1]}
				if err := Check(b, MinValue, MaxValue); err != nil {
					t.Fatalf("Check(% X): %v", b[:], err)
				}
				v, err := Decode(b)
				if err != nil {
					t.Fatalf("Decode(% X): %v", b[:], err)
				}
				got, err := Encode(v)
				if err != nil {
					t.Fatalf("Encode(%d): %v", v, err)
				}
				if got != b {
					t.Fatalf("Encode(Decode(% X)) = % X", b[:], got[:])
				}
			}
		}
	}
}

func TestLegacyEncoderDivergence(t *testing.T) {
	for v := MinValue; v <= MaxValue; v++ {
		legacy := legacyEncode(v)
		cur, _ := Encode(v)
		multiple := v < 0 && v%128 == 0
		if (legacy != cur) != multiple {
			t.Fatalf("v=%d: legacy % X, current % X", v, legacy[:], cur[:])
		}
		got, _ := Decode(legacy)
		if v == MinValue {
			if got != 16384 {
				t.Errorf("legacy %d decodes to %d, want 16384", v, got)
			}
			continue
		}
		if got != v {
			t.Fatalf("Decode(legacyEncode(%d)) = %d", v, got)
		}
	}

	var fe *FormatError
	if err := Check(legacyEncode(-128), MinValue, MaxValue); !errors.As(err, &fe) || fe.Rule != RuleHighBit {
		t.Errorf("Check(legacyEncode(-128)) = %v, want high bit rule", err)
	}
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name     string
		b        [4]byte
		min, max int
		rule     Rule
	}{
		{"sign", [4]byte{1, 0, 0, 3}, MinValue, MaxValue, RuleSignByte},
		{"positive overflow", [4]byte{1, 0, 5, 0}, MinValue, MaxValue, RuleOverflowByte},
		{"negative overflow", [4]byte{1, 0, 0, 7}, MinValue, MaxValue, RuleOverflowByte},
		{"high bit b0", [4]byte{0x80, 0, 0, 0}, MinValue, MaxValue, RuleHighBit},
		{"high bit b1", [4]byte{0, 0x81, 0, 0}, MinValue, MaxValue, RuleHighBit},
		{"below", [4]byte{127, 127, 127, 7}, 0, 10, RuleBelowMin},
		{"above", [4]byte{11, 0, 0, 0}, 0, 10, RuleAboveMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.b, tt.min, tt.max)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Check(% X) = %v, want FormatError", tt.b[:], err)
			}
			if fe.Rule != tt.rule {
				t.Errorf("rule = %s, want %s", fe.Rule, tt.rule)
			}
			if !errors.Is(err, ErrFormat) {
				t.Errorf("error does not wrap ErrFormat")
			}
		})
	}
}

func TestDecodeBadSign(t *testing.T) {
	if _, err := Decode([4]byte{0, 0, 0, 1}); !errors.Is(err, ErrFormat) {
		t.Fatalf("Decode with sign byte 1: %v", err)
	}
}

func TestSlotBytesPutSlot(t *testing.T) {
	buf := make([]byte, 12)
	b, _ := Encode(-300)
	PutSlot(buf, 4, b)
	if got := SlotBytes(buf, 4); got != b {
		t.Fatalf("SlotBytes = % X, want % X", got[:], b[:])
	}
	if buf[3] != 0 || buf[8] != 0 {
		t.Errorf("PutSlot wrote outside its slot: % X", buf)
	}
}
