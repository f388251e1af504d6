package nova

import (
	"fmt"
)

// Kind tells the two dump layouts apart.
type Kind int

const (
	KindPatch Kind = iota + 1
	KindSystemDump
)

func (k Kind) String() string {
	switch k {
	case KindPatch:
		return "patch"
	case KindSystemDump:
		return "system"
	default:
		return "unknown"
	}
}

const (
	sysexStart byte = 0xF0
	sysexEnd   byte = 0xF7

	tcID1     byte = 0x00
	tcID2     byte = 0x20
	tcID3     byte = 0x1F
	modelNova byte = 0x63

	msgDump    byte = 0x20
	msgRequest byte = 0x45

	dataPatch    byte = 0x01
	dataSystem   byte = 0x02
	dataUserBank byte = 0x03

	deviceIDOffset = 4
)

// signatureOffsets are the header bytes compared against the expected
// vector. Byte 4 is the device id and may hold any value.
var signatureOffsets = [...]int{0, 1, 2, 3, 5, 6, 7}

type layout struct {
	kind      Kind
	size      int
	dataType  byte
	slotStart int
	slotCount int
	sumStart  int
	sumEnd    int
	sumAt     int
	trailerAt int
}

var (
	patchLayout = layout{
		kind: KindPatch, size: 520, dataType: dataPatch,
		slotStart: 34, slotCount: 121,
		sumStart: 34, sumEnd: 517, sumAt: 518, trailerAt: 519,
	}
	systemLayout = layout{
		kind: KindSystemDump, size: 526, dataType: dataSystem,
		slotStart: 8, slotCount: 129,
		sumStart: 8, sumEnd: 523, sumAt: 524, trailerAt: 525,
	}
)

func (l layout) signature() [8]byte {
	return [8]byte{sysexStart, tcID1, tcID2, tcID3, 0x00, modelNova, msgDump, l.dataType}
}

func (l layout) offset(i int) int { return l.slotStart + i*SlotSize }

// checksum is the 7-bit sum of buf[sumStart..sumEnd].
func (l layout) checksum(buf []byte) byte {
	var chk byte
	for _, b := range buf[l.sumStart : l.sumEnd+1] {
		chk = (chk + b) & 0x7F
	}
	return chk
}

func (l layout) validate(buf []byte) error {
	if len(buf) != l.size {
		return &ValidationError{Frame: l.kind, Check: CheckLength, Want: l.size, Got: len(buf)}
	}
	sig := l.signature()
	for _, off := range signatureOffsets {
		if buf[off] != sig[off] {
			return &ValidationError{Frame: l.kind, Check: CheckSignature, Offset: off, Want: int(sig[off]), Got: int(buf[off])}
		}
	}
	if buf[l.trailerAt] != sysexEnd {
		return &ValidationError{Frame: l.kind, Check: CheckTrailer, Offset: l.trailerAt, Want: int(sysexEnd), Got: int(buf[l.trailerAt])}
	}
	for off := 1; off < l.trailerAt; off++ {
		if buf[off]&0x80 != 0 {
			return &ValidationError{Frame: l.kind, Check: CheckDataByte, Offset: off, Want: int(buf[off] & 0x7F), Got: int(buf[off])}
		}
	}
	if want := l.checksum(buf); buf[l.sumAt] != want {
		return &ValidationError{Frame: l.kind, Check: CheckChecksum, Offset: l.sumAt, Want: int(want), Got: int(buf[l.sumAt])}
	}
	return nil
}

// Frame is the part shared by patches and system dumps.
type Frame interface {
	Kind() Kind
	Len() int
	Validate() error
	Checksum() byte
	Bytes() []byte
	Slot(i int) (SlotView, error)
	Slots() []SlotView
	Set(i int, v int) error
	SetDisplay(i int, s string) error
}

// frame owns the dump buffer. The slot words inside it are the only copy of
// the parameter values; views are computed from them on demand.
type frame struct {
	l   layout
	buf []byte
}

func newFrame(l layout, b []byte) (frame, error) {
	if len(b) != l.size {
		return frame{}, &ValidationError{Frame: l.kind, Check: CheckLength, Want: l.size, Got: len(b)}
	}
	buf := make([]byte, l.size)
	copy(buf, b)
	return frame{l: l, buf: buf}, nil
}

// blankFrame builds a frame whose header, trailer and checksum are valid and
// whose slots all hold zero.
func blankFrame(l layout, deviceID byte) frame {
	buf := make([]byte, l.size)
	sig := l.signature()
	copy(buf, sig[:])
	buf[deviceIDOffset] = deviceID
	buf[l.trailerAt] = sysexEnd
	f := frame{l: l, buf: buf}
	f.seal()
	return f
}

func (f *frame) Kind() Kind { return f.l.kind }

// Len is the number of parameter slots.
func (f *frame) Len() int { return f.l.slotCount }

func (f *frame) Validate() error { return f.l.validate(f.buf) }

// Checksum recomputes the checksum over the payload as it stands.
func (f *frame) Checksum() byte { return f.l.checksum(f.buf) }

// DeviceID is the SysEx device id the dump was sent with.
func (f *frame) DeviceID() byte { return f.buf[deviceIDOffset] }

func (f *frame) seal() {
	f.buf[f.l.sumAt] = f.l.checksum(f.buf)
}

// Bytes returns a copy of the wire form. Edits keep the checksum current, so
// a frame that arrived with a bad checksum still serializes with it.
func (f *frame) Bytes() []byte {
	out := make([]byte, len(f.buf))
	copy(out, f.buf)
	return out
}

func (f *frame) inRange(i int) error {
	if i < 0 || i >= f.l.slotCount {
		return fmt.Errorf("slot %d of %s: %w", i, f.l.kind, ErrOutOfRange)
	}
	return nil
}

func (f *frame) word(i int) [4]byte {
	return SlotBytes(f.buf, f.l.offset(i))
}

// raw decodes slot i without any type interpretation.
func (f *frame) raw(i int) (int, error) {
	if err := f.inRange(i); err != nil {
		return 0, err
	}
	return Decode(f.word(i))
}

// value is raw with malformed words read as zero. Dispatch decisions use it
// so that a damaged discriminant still yields a layout.
func (f *frame) value(i int) int {
	v, err := f.raw(i)
	if err != nil {
		return 0
	}
	return v
}

// editable refuses changes to frames that failed validation.
func (f *frame) editable() error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("frame not editable: %w", err)
	}
	return nil
}

func (f *frame) setRaw(i, v int) error {
	if err := f.inRange(i); err != nil {
		return err
	}
	if err := f.editable(); err != nil {
		return err
	}
	b, err := Encode(v)
	if err != nil {
		return fmt.Errorf("slot %d value %d: %w", i, v, err)
	}
	PutSlot(f.buf, f.l.offset(i), b)
	f.seal()
	return nil
}

func (f *frame) setWord(i int, b [4]byte) error {
	if err := f.inRange(i); err != nil {
		return err
	}
	if err := f.editable(); err != nil {
		return err
	}
	PutSlot(f.buf, f.l.offset(i), b)
	f.seal()
	return nil
}

// Identify reports which dump layout b claims to be.
func Identify(b []byte) (Kind, error) {
	if len(b) < 8 {
		return 0, ErrTruncatedInput
	}
	if b[0] != sysexStart || b[1] != tcID1 || b[2] != tcID2 || b[3] != tcID3 || b[5] != modelNova || b[6] != msgDump {
		return 0, fmt.Errorf("not a Nova System dump: %w", ErrSignatureMismatch)
	}
	switch b[7] {
	case dataPatch:
		return KindPatch, nil
	case dataSystem:
		return KindSystemDump, nil
	default:
		return 0, fmt.Errorf("unknown dump type 0x%02X: %w", b[7], ErrSignatureMismatch)
	}
}

// Parse parses b as whichever dump it identifies as.
func Parse(b []byte) (Frame, error) {
	kind, err := Identify(b)
	if err != nil {
		return nil, err
	}
	if kind == KindPatch {
		return ParsePatch(b)
	}
	return ParseSystemDump(b)
}
