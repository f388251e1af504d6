package nova

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotView is one decoded parameter. It is a snapshot: editing goes through
// the owning frame.
type SlotView struct {
	Index    int      `json:"index"`
	Offset   int      `json:"offset"`
	Name     string   `json:"name"`
	Type     TypeID   `json:"type"`
	TypeName string   `json:"type_name"`
	Value    int      `json:"value"`
	Display  string   `json:"display"`
	Fallback bool     `json:"fallback,omitempty"`
	Map      []MapRef `json:"map,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// MapRef is one of the three entries carried by a map word.
type MapRef struct {
	From  string `json:"from"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

type mapKind int

const (
	mapNone mapKind = iota
	mapIn
	mapOut
)

// slotDef is what a frame knows about a slot before reading its value.
type slotDef struct {
	Name string
	Type TypeID
	// list replaces the catalog list for types whose entries depend on
	// other slots.
	list []string
	maps mapKind
	// base is the first incoming program (mapIn) or preset code (mapOut)
	// carried by the word.
	base int
}

func view(f *frame, i int, def slotDef) (SlotView, error) {
	sv := SlotView{
		Index:    i,
		Offset:   f.l.offset(i),
		Name:     def.Name,
		Type:     def.Type,
		TypeName: def.Type.String(),
	}
	w := f.word(i)

	if def.Type == TypeMidiMap {
		sv.Map = mapRefs(w, def)
		parts := make([]string, len(sv.Map))
		for j, r := range sv.Map {
			parts[j] = r.From + ":" + r.Label
		}
		sv.Display = strings.Join(parts, " ")
		return sv, nil
	}

	v, err := Decode(w)
	if err != nil {
		return sv, fmt.Errorf("slot %d (%s): %w", i, def.Name, err)
	}
	t, ok := Lookup(def.Type)
	if !ok {
		t, _ = Lookup(TypeInt)
	}
	list := def.list
	if list == nil {
		list = t.List()
	}
	display, nv, ok := t.decode(list, v)
	if !ok {
		sv.Fallback = true
		decodeFallback(i, def, v, nv)
	}
	sv.Value = nv
	sv.Display = display
	return sv, nil
}

func mapRefs(w [4]byte, def slotDef) []MapRef {
	v1, v2, v3 := UnpackMap(w)
	vals := [3]int{v1, v2, v3}
	refs := make([]MapRef, 0, 3)
	for j, v := range vals {
		switch def.maps {
		case mapOut:
			refs = append(refs, MapRef{From: MapLabel(def.base + j), Value: v, Label: strconv.Itoa(v)})
		default:
			prog := def.base + j
			if def.maps == mapIn && prog > 127 {
				continue
			}
			refs = append(refs, MapRef{From: strconv.Itoa(prog), Value: v, Label: MapLabel(v)})
		}
	}
	return refs
}

func decodeFallback(i int, def slotDef, got, reset int) {
	logger.Warn().
		Int("slot", i).
		Str("name", def.Name).
		Str("type", def.Type.String()).
		Int("value", got).
		Int("default", reset).
		Msg("value out of range, reset to default")
	if hook := fallbackHook; hook != nil {
		hook(def.Type)
	}
}

func views(f *frame, def func(int) slotDef) []SlotView {
	out := make([]SlotView, 0, f.l.slotCount)
	for i := 0; i < f.l.slotCount; i++ {
		sv, err := view(f, i, def(i))
		if err != nil {
			sv.Error = err.Error()
		}
		out = append(out, sv)
	}
	return out
}

// setDisplay encodes s under def and stores it. A miss leaves the slot as it
// was.
func setDisplay(f *frame, i int, def slotDef, s string) error {
	if err := f.inRange(i); err != nil {
		return err
	}
	if def.Type == TypeMidiMap {
		return fmt.Errorf("slot %d holds a program map: %w", i, ErrOutOfRange)
	}
	t, ok := Lookup(def.Type)
	if !ok {
		t, _ = Lookup(TypeInt)
	}
	list := def.list
	if list == nil {
		list = t.List()
	}
	v, err := t.encode(list, s)
	if err != nil {
		return &RangeError{Slot: i, Type: def.Type, Input: s}
	}
	return f.setRaw(i, v)
}

// checkValue refuses a raw value that has no display under def.
func checkValue(i int, def slotDef, v int) error {
	if def.Type == TypeMidiMap {
		return fmt.Errorf("slot %d holds a program map: %w", i, ErrOutOfRange)
	}
	t, ok := Lookup(def.Type)
	if !ok {
		t, _ = Lookup(TypeInt)
	}
	list := def.list
	if list == nil {
		list = t.List()
	}
	if _, _, ok := t.decode(list, v); !ok {
		return &RangeError{Slot: i, Type: def.Type, Input: strconv.Itoa(v)}
	}
	return nil
}
