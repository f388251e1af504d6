package nova

import (
	"errors"
	"fmt"
)

var (
	ErrTruncatedInput    = errors.New("nova: truncated input")
	ErrLengthMismatch    = errors.New("nova: unexpected frame length")
	ErrSignatureMismatch = errors.New("nova: signature mismatch")
	ErrTrailerMismatch   = errors.New("nova: trailer mismatch")
	ErrChecksumMismatch  = errors.New("nova: checksum mismatch")
	ErrDataByte          = errors.New("nova: data byte has bit 7 set")
	ErrOutOfRange        = errors.New("nova: value out of range")
	ErrFormat            = errors.New("nova: malformed slot")
	ErrUnknownBlock      = errors.New("nova: unknown effect block")
	ErrUnknownSection    = errors.New("nova: unknown system section")
	ErrPresetMismatch    = errors.New("nova: preset code mismatch")
)

// Rule identifies which wire rule a 4-byte slot violates.
type Rule int

const (
	RuleSignByte     Rule = 2 // byte 3 is neither 0 nor 7
	RuleOverflowByte Rule = 3 // byte 2 does not agree with byte 3
	RuleHighBit      Rule = 4 // bit 7 set in byte 0 or 1
	RuleBelowMin     Rule = 5
	RuleAboveMax     Rule = 6
)

func (r Rule) String() string {
	switch r {
	case RuleSignByte:
		return "sign byte"
	case RuleOverflowByte:
		return "overflow byte"
	case RuleHighBit:
		return "high bit"
	case RuleBelowMin:
		return "below minimum"
	case RuleAboveMax:
		return "above maximum"
	default:
		return fmt.Sprintf("rule %d", int(r))
	}
}

type FormatError struct {
	Rule  Rule
	Bytes [4]byte
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("nova: malformed slot % X: %s", e.Bytes[:], e.Rule)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// CheckKind names the frame-level check that failed.
type CheckKind int

const (
	CheckLength CheckKind = iota
	CheckSignature
	CheckTrailer
	CheckChecksum
	CheckDataByte
)

func (k CheckKind) String() string {
	switch k {
	case CheckLength:
		return "length"
	case CheckSignature:
		return "signature"
	case CheckTrailer:
		return "trailer"
	case CheckChecksum:
		return "checksum"
	case CheckDataByte:
		return "data byte"
	default:
		return "unknown"
	}
}

// ValidationError reports the first failed frame check. For length failures
// Want and Got hold sizes, otherwise the expected and actual byte at Offset.
type ValidationError struct {
	Frame  Kind
	Check  CheckKind
	Offset int
	Want   int
	Got    int
}

func (e *ValidationError) Error() string {
	switch e.Check {
	case CheckLength:
		return fmt.Sprintf("nova: %s frame length %d (want %d)", e.Frame, e.Got, e.Want)
	case CheckDataByte:
		return fmt.Sprintf("nova: %s frame byte %d is 0x%02X, not a MIDI data byte", e.Frame, e.Offset, e.Got)
	}
	return fmt.Sprintf("nova: %s frame %s mismatch at byte %d: expected 0x%02X got 0x%02X",
		e.Frame, e.Check, e.Offset, e.Want, e.Got)
}

func (e *ValidationError) Unwrap() error {
	switch e.Check {
	case CheckLength:
		if e.Got < e.Want {
			return ErrTruncatedInput
		}
		return ErrLengthMismatch
	case CheckSignature:
		return ErrSignatureMismatch
	case CheckTrailer:
		return ErrTrailerMismatch
	case CheckDataByte:
		return ErrDataByte
	default:
		return ErrChecksumMismatch
	}
}

// RangeError is returned when a value or display string has no place in a
// slot's type.
type RangeError struct {
	Slot  int
	Type  TypeID
	Input string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("nova: %q is out of range for slot %d (%s)", e.Input, e.Slot, e.Type)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }
