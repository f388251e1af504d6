package nova

const (
	MinValue = -16384
	MaxValue = 16383

	// SlotSize is the wire width of one parameter slot.
	SlotSize = 4

	signPositive byte = 0
	signNegative byte = 7
	overflowNeg  byte = 127
)

// Decode turns a 4-byte slot into its signed value.
func Decode(b [4]byte) (int, error) {
	switch b[3] {
	case signPositive:
		return int(b[0]) + int(b[1])*128, nil
	case signNegative:
		return (int(b[0]) - 128) + (int(b[1])-127)*128, nil
	default:
		return 0, &FormatError{Rule: RuleSignByte, Bytes: b}
	}
}

// Check applies the full wire validity rules to a slot and verifies its value
// lies in [min, max].
func Check(b [4]byte, min, max int) error {
	switch b[3] {
	case signPositive:
		if b[2] != 0 {
			return &FormatError{Rule: RuleOverflowByte, Bytes: b}
		}
	case signNegative:
		if b[2] != overflowNeg {
			return &FormatError{Rule: RuleOverflowByte, Bytes: b}
		}
	default:
		return &FormatError{Rule: RuleSignByte, Bytes: b}
	}
	if b[0]&0x80 != 0 || b[1]&0x80 != 0 {
		return &FormatError{Rule: RuleHighBit, Bytes: b}
	}
	v, _ := Decode(b)
	if v < min {
		return &FormatError{Rule: RuleBelowMin, Bytes: b}
	}
	if v > max {
		return &FormatError{Rule: RuleAboveMax, Bytes: b}
	}
	return nil
}

// Encode packs v into its 4-byte wire form. Negative values carry the low 14
// bits of v+16384 so that b0 never has bit 7 set.
func Encode(v int) ([4]byte, error) {
	if v < MinValue || v > MaxValue {
		return [4]byte{}, ErrOutOfRange
	}
	if v >= 0 {
		return [4]byte{byte(v % 128), byte(v / 128), 0, signPositive}, nil
	}
	u := v + 16384
	return [4]byte{byte(u % 128), byte(u / 128), overflowNeg, signNegative}, nil
}

// legacyEncode is the encoder found in older editors. It writes b0 = 128 for
// negative multiples of 128, which Decode still reads but Check rejects.
func legacyEncode(v int) [4]byte {
	if v >= 0 {
		return [4]byte{byte(v % 128), byte(v / 128), 0, signPositive}
	}
	return [4]byte{byte(128 - (-v)%128), byte(v/128 + 127), overflowNeg, signNegative}
}

// SlotBytes copies the slot at offset out of buf.
func SlotBytes(buf []byte, offset int) [4]byte {
	var b [4]byte
	copy(b[:], buf[offset:offset+SlotSize])
	return b
}

func PutSlot(buf []byte, offset int, b [4]byte) {
	copy(buf[offset:offset+SlotSize], b[:])
}
