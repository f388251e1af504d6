package nova

import "fmt"

// UserBankSize is the number of user presets, codes 31..90.
const UserBankSize = LastUserPreset - FirstUserPreset + 1

// UserBank holds the user presets of one unit, indexed by preset code.
type UserBank struct {
	patches [UserBankSize]*Patch
}

// WithPatch stores p under code. The patch must already carry that code.
func (u *UserBank) WithPatch(code int, p *Patch) error {
	if code < FirstUserPreset || code > LastUserPreset {
		return fmt.Errorf("user preset %d: %w", code, ErrOutOfRange)
	}
	if p == nil {
		return fmt.Errorf("user preset %d: nil patch", code)
	}
	if got := p.PresetCode(); got != code {
		return fmt.Errorf("user preset %d holds code %d: %w", code, got, ErrPresetMismatch)
	}
	u.patches[code-FirstUserPreset] = p
	return nil
}

// Patch returns the preset stored under code, or nil.
func (u *UserBank) Patch(code int) *Patch {
	if code < FirstUserPreset || code > LastUserPreset {
		return nil
	}
	return u.patches[code-FirstUserPreset]
}

// Len counts the presets present.
func (u *UserBank) Len() int {
	n := 0
	for _, p := range u.patches {
		if p != nil {
			n++
		}
	}
	return n
}

// Patches returns the stored presets in code order.
func (u *UserBank) Patches() []*Patch {
	out := make([]*Patch, 0, UserBankSize)
	for _, p := range u.patches {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Bytes concatenates the stored presets in code order.
func (u *UserBank) Bytes() []byte {
	out := make([]byte, 0, UserBankSize*patchLayout.size)
	for _, p := range u.Patches() {
		out = append(out, p.Bytes()...)
	}
	return out
}

// ParseUserBank splits a stream of concatenated patch dumps, as the unit
// sends after a user bank request. Each patch is filed under its own code.
func ParseUserBank(b []byte) (*UserBank, error) {
	size := patchLayout.size
	if len(b)%size != 0 {
		return nil, &ValidationError{Frame: KindPatch, Check: CheckLength, Want: (len(b)/size + 1) * size, Got: len(b)}
	}
	u := &UserBank{}
	for off := 0; off < len(b); off += size {
		p, err := ParsePatch(b[off : off+size])
		if err != nil {
			return nil, err
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("patch at byte %d: %w", off, err)
		}
		if err := u.WithPatch(p.PresetCode(), p); err != nil {
			return nil, fmt.Errorf("patch at byte %d: %w", off, err)
		}
	}
	return u, nil
}
