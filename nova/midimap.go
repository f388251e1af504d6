package nova

// A map word carries three program/preset numbers in one slot. Read as a
// 24-bit word v3 | v2<<8 | v1<<16 split into 7-bit bytes.

// UnpackMap reads the three values held in a map word.
func UnpackMap(b [4]byte) (v1, v2, v3 int) {
	v1 = int(b[2])/4 + 32*(int(b[3])%8)
	v2 = int(b[1])/2 + 64*(int(b[2])%4)
	v3 = int(b[0]) + 128*(int(b[1])%2)
	return v1, v2, v3
}

// PackMap builds a map word. Values must be MIDI data bytes (0..127); wider
// values do not survive the word layout.
func PackMap(v1, v2, v3 int) ([4]byte, error) {
	for _, v := range [3]int{v1, v2, v3} {
		if v < 0 || v > 127 {
			return [4]byte{}, ErrOutOfRange
		}
	}
	return packMapRaw(v1, v2, v3), nil
}

// packMapRaw is the editor's original pack. It leaves all of v3 in b0, so a v3
// above 127 puts bit 7 on the wire instead of moving it into b1; once the
// word passes through a 7-bit channel UnpackMap no longer recovers it.
func packMapRaw(v1, v2, v3 int) [4]byte {
	return [4]byte{
		byte(v3),
		byte((v2 % 64) * 2),
		byte((v1%32)*4 + v2/64),
		byte(v1 / 32),
	}
}

// MapLabel names a preset number held in a map word. Zero and anything past
// the last user preset read as "None".
func MapLabel(n int) string {
	l := presetList()
	if n > 0 && n < len(l) {
		return l[n]
	}
	return "None"
}
