package nova

import (
	"fmt"
	"strings"
)

const (
	presetCodeOffset = 8
	nameOffset       = 10
	NameLength       = 24

	// FirstUserPreset and LastUserPreset bound the preset codes of the user
	// banks 00..19.
	FirstUserPreset = 31
	LastUserPreset  = 90

	mapParamSlot = 5
)

// Patch is a 520-byte preset dump.
type Patch struct {
	frame
}

var _ Frame = (*Patch)(nil)

// ParsePatch copies b into a new patch. Only the length is checked here; call
// Validate for the rest.
func ParsePatch(b []byte) (*Patch, error) {
	f, err := newFrame(patchLayout, b)
	if err != nil {
		return nil, err
	}
	return &Patch{frame: f}, nil
}

// NewPatch builds a valid patch with every slot at zero.
func NewPatch(name string, code int) (*Patch, error) {
	p := &Patch{frame: blankFrame(patchLayout, 0)}
	if err := p.SetPresetCode(code); err != nil {
		return nil, err
	}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	return p, nil
}

// Name is the preset name, read up to the first NUL.
func (p *Patch) Name() string {
	var sb strings.Builder
	for _, c := range p.buf[nameOffset : nameOffset+NameLength] {
		if c == 0 {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// SetName stores name truncated to NameLength bytes and zero padded.
// Characters outside 7-bit ASCII are stored as '?'.
func (p *Patch) SetName(name string) error {
	if err := p.editable(); err != nil {
		return err
	}
	field := p.buf[nameOffset : nameOffset+NameLength]
	clear(field)
	n := 0
	for _, r := range name {
		if n == NameLength {
			break
		}
		if r >= 0x80 {
			r = '?'
		}
		field[n] = byte(r)
		n++
	}
	return nil
}

// PresetCode is the preset number the dump belongs to.
func (p *Patch) PresetCode() int { return int(p.buf[presetCodeOffset]) }

// SetPresetCode moves the patch to another preset number (0..90).
func (p *Patch) SetPresetCode(code int) error {
	if code < 0 || code > LastUserPreset {
		return fmt.Errorf("preset code %d: %w", code, ErrOutOfRange)
	}
	if err := p.editable(); err != nil {
		return err
	}
	p.buf[presetCodeOffset] = byte(code)
	return nil
}

// BankPreset splits the preset code into a user bank and a position 1..3.
// Codes below the user range give a negative or zero bank.
func (p *Patch) BankPreset() (bank, preset int) {
	code := p.PresetCode()
	return (code - FirstUserPreset) / 3, (code-FirstUserPreset)%3 + 1
}

// PresetLabel names the preset code the way the front panel does.
func (p *Patch) PresetLabel() string {
	code := p.PresetCode()
	if l := presetList(); code < len(l) {
		return l[code]
	}
	return fmt.Sprintf("#%d", code)
}

// Layout computes the active rows of block from the patch's own
// discriminant.
func (p *Patch) Layout(block Block) (Layout, error) {
	b, ok := blocksByID[block]
	if !ok {
		return Layout{}, fmt.Errorf("%q: %w", block, ErrUnknownBlock)
	}
	d := 0
	if b.disc >= 0 {
		d = p.value(b.disc)
	}
	return Dispatch(block, d)
}

// View decodes the active rows of block. Empty padding rows are skipped.
func (p *Patch) View(block Block) ([]SlotView, error) {
	lay, err := p.Layout(block)
	if err != nil {
		return nil, err
	}
	out := make([]SlotView, 0, len(lay.Rows))
	for _, row := range lay.Rows {
		if row.Empty {
			continue
		}
		sv, err := view(&p.frame, row.Slot, p.def(row.Slot))
		if err != nil {
			sv.Error = err.Error()
		}
		out = append(out, sv)
	}
	return out, nil
}

// ExpressionTargets is the map parameter list for the patch's current
// modulation, delay and pitch types.
func (p *Patch) ExpressionTargets() []string {
	return ExpressionTargets(p.value(41), p.value(57), p.value(105))
}

// def resolves the type of slot i through its block's current layout. Slots
// outside every block, and candidates inactive in the current mode, are INT.
func (p *Patch) def(i int) slotDef {
	b, ok := slotOwner[i]
	if !ok {
		return slotDef{Type: TypeInt}
	}
	d := 0
	if b.disc >= 0 {
		d = p.value(b.disc)
	}
	lay, _ := Dispatch(b.id, d)
	for _, row := range lay.Rows {
		if row.Slot != i {
			continue
		}
		def := slotDef{Name: row.Name, Type: row.Type}
		if i == mapParamSlot {
			def.list = p.ExpressionTargets()
		}
		return def
	}
	return slotDef{Type: TypeInt}
}

func (p *Patch) Slot(i int) (SlotView, error) {
	if err := p.inRange(i); err != nil {
		return SlotView{}, err
	}
	return view(&p.frame, i, p.def(i))
}

func (p *Patch) Slots() []SlotView { return views(&p.frame, p.def) }

// Set stores a raw value. The value is checked against the slot's current
// type, so a value with no display entry is refused.
func (p *Patch) Set(i, v int) error {
	if err := p.inRange(i); err != nil {
		return err
	}
	def := p.def(i)
	if err := checkValue(i, def, v); err != nil {
		return err
	}
	return p.setRaw(i, v)
}

func (p *Patch) SetDisplay(i int, s string) error {
	return setDisplay(&p.frame, i, p.def(i), s)
}
