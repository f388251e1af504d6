package nova

import (
	"fmt"
	"strconv"
)

const (
	mapInFirst  = 64
	mapInLast   = 106
	mapOutFirst = 107
	mapOutLast  = 126

	// MaxProgram is the highest incoming MIDI program the map in covers.
	MaxProgram = 127
)

// systemNames and systemTypes describe slots 0..63 of the system dump.
var systemNames = [mapInFirst]string{
	"Signature", "RoutingType", "ByPass", "Vol.Min (%)", "Vol.Mid (%)", "Vol.Max (%)", "PedalType", "Master",
	"CC TapTempo", "CC Comp", "CC Drv", "CC Mod", "CC Delay", "CC Rev", "CC NG", "CC Pitch", "CC EQ", "CC Boost", "CC Exp.Pedal",
	"MIDI Channel", "PrgChange.In", "PrgChange.Out", "Midi Clock", "SysEx ID", "Midi Sync", "#25", "#26",
	"TapLED Defeat", "Tap Master", "Boost Lock", "EQ Lock", "Routing Lock", "Factory Lock", "SpeakerSim", "AngleView", "FootSwitch",
	"Input Source", "Digital Clock", "#38", "FX Mute", "Dither", "Tempo", "Digital InGain (dB)", "Input InGain (dB)", "Advanced Mode",
	"Line Input Range (dB)", "Instr. Input Range (dB)", "BoostMax (dB)", "Output Range (dBu)", "Volume Level (dB)", "Volume Position", "KillDry",
	"Tuner Out", "Tuner Ref (Hz)", "Tuner Mode", "Tuner Range", "Send Tuner", "Current Preset", "#58", "edited", "#60", "Impedance",
	"Calibration Min", "Calibration Max",
}

var systemTypes = [mapInFirst]TypeID{
	100, 3, 5, 116, 116, 116, 60, 61, 70, 70, 70, 70, 70, 70, 70, 70,
	70, 70, 70, 71, 5, 5, 5, 72, 5, 100, 100, 5, 62, 5, 5, 5,
	5, 5, 116, 63, 64, 65, 100, 27, 66, 123, 129, 102, 5, 112, 131, 111,
	67, 102, 68, 5, 69, 130, 74, 75, 100, 7, 100, 100, 100, 76, 100, 100,
}

// Section is a named group of system slots shown together.
type Section struct {
	Name  string `json:"name"`
	Slots []int  `json:"slots"`
}

var sections = []Section{
	{"Levels", []int{49, 50, 36, 43, 45, 46, 44, 47, 48, 37, 42, 40}},
	{"Pedal", []int{7, 6, 3, 4, 5, 61, 62, 63}},
	{"Routing", []int{1, 2, 51}},
	{"Utility", []int{39, 29, 30, 31, 32, 33, 35, 34}},
	{"TapTempo", []int{28, 41, 27}},
	{"MIDI SetUp", []int{19, 20, 21, 23, 24, 22}},
	{"Tuner", []int{52, 53, 54, 55}},
	{"MIDI CC", []int{8, 10, 9, 14, 16, 17, 11, 15, 12, 13, 18}},
	{"Current preset", []int{57}},
}

// Sections lists the system dump groups in panel order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

var ccSlots = []struct {
	name string
	slot int
}{
	{"Tap Tempo", 8},
	{"Drive", 10},
	{"Compressor", 9},
	{"Noise Gate", 14},
	{"EQ", 16},
	{"Boost", 17},
	{"Modulation", 11},
	{"Pitch", 15},
	{"Delay", 12},
	{"Reverb", 13},
	{"Expression", 18},
}

const (
	slotPedalMin      = 3
	slotPedalMid      = 4
	slotPedalMax      = 5
	slotPedalType     = 6
	slotMIDIChannel   = 19
	slotPCIn          = 20
	slotPCOut         = 21
	slotMIDIClock     = 22
	slotSysExID       = 23
	slotCurrentPreset = 57
)

// SystemDump is the 526-byte global settings dump.
type SystemDump struct {
	frame
}

var _ Frame = (*SystemDump)(nil)

// ParseSystemDump copies b into a new system dump. Some interfaces deliver
// the dump with a doubled end byte; that extra byte is dropped.
func ParseSystemDump(b []byte) (*SystemDump, error) {
	b = normalizeSystem(b)
	f, err := newFrame(systemLayout, b)
	if err != nil {
		return nil, err
	}
	return &SystemDump{frame: f}, nil
}

func normalizeSystem(b []byte) []byte {
	n := systemLayout.size
	if len(b) == n+1 && b[n-1] == sysexEnd && b[n] == sysexEnd {
		return b[:n]
	}
	return b
}

// NewSystemDump builds a valid dump with every slot at zero.
func NewSystemDump(deviceID byte) *SystemDump {
	return &SystemDump{frame: blankFrame(systemLayout, deviceID)}
}

func (s *SystemDump) def(i int) slotDef {
	switch {
	case i >= 0 && i < mapInFirst:
		return slotDef{Name: systemNames[i], Type: systemTypes[i]}
	case i >= mapInFirst && i <= mapInLast:
		base := 3*(i-mapInFirst) + 1
		name := fmt.Sprintf("%d-%d", base, base+2)
		if base+2 > MaxProgram {
			name = strconv.Itoa(base)
		}
		return slotDef{Name: name, Type: TypeMidiMap, maps: mapIn, base: base}
	case i >= mapOutFirst && i <= mapOutLast:
		n := i - mapOutFirst
		return slotDef{Name: strconv.Itoa(n), Type: TypeMidiMap, maps: mapOut, base: FirstUserPreset + 3*n}
	default:
		return slotDef{Name: "#" + strconv.Itoa(i), Type: TypeInt}
	}
}

func (s *SystemDump) Slot(i int) (SlotView, error) {
	if err := s.inRange(i); err != nil {
		return SlotView{}, err
	}
	return view(&s.frame, i, s.def(i))
}

func (s *SystemDump) Slots() []SlotView { return views(&s.frame, s.def) }

// Set stores a raw value after checking it against the slot's type. Map
// slots are edited through SetProgramMapIn and SetProgramMapOut.
func (s *SystemDump) Set(i, v int) error {
	if err := s.inRange(i); err != nil {
		return err
	}
	if err := checkValue(i, s.def(i), v); err != nil {
		return err
	}
	return s.setRaw(i, v)
}

func (s *SystemDump) SetDisplay(i int, str string) error {
	return setDisplay(&s.frame, i, s.def(i), str)
}

// Section decodes the slots of the named group.
func (s *SystemDump) Section(name string) ([]SlotView, error) {
	for _, sec := range sections {
		if sec.Name != name {
			continue
		}
		out := make([]SlotView, 0, len(sec.Slots))
		for _, i := range sec.Slots {
			sv, err := s.Slot(i)
			if err != nil {
				sv.Error = err.Error()
			}
			out = append(out, sv)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownSection)
}

// CCMapping is the MIDI controller assigned to one front panel function. A
// nil CC means the function is not controllable.
type CCMapping struct {
	Name string `json:"name"`
	Slot int    `json:"slot"`
	CC   *int   `json:"cc"`
}

// CCMappings returns the eleven controller assignments in panel order.
func (s *SystemDump) CCMappings() []CCMapping {
	out := make([]CCMapping, len(ccSlots))
	for i, c := range ccSlots {
		out[i] = CCMapping{Name: c.name, Slot: c.slot}
		if raw := s.value(c.slot); raw > 0 && raw <= 128 {
			cc := raw - 1
			out[i].CC = &cc
		}
	}
	return out
}

// SetCCMapping assigns controller cc (0..127) to mapping i, or turns it off
// when cc is nil.
func (s *SystemDump) SetCCMapping(i int, cc *int) error {
	if i < 0 || i >= len(ccSlots) {
		return fmt.Errorf("cc mapping %d: %w", i, ErrOutOfRange)
	}
	raw := 0
	if cc != nil {
		if *cc < 0 || *cc > 127 {
			return fmt.Errorf("cc %d: %w", *cc, ErrOutOfRange)
		}
		raw = *cc + 1
	}
	return s.setRaw(ccSlots[i].slot, raw)
}

// ProgramRoute is one entry of a program map. For the incoming map Program is
// the received program and Preset the recalled preset code, nil when the
// program is ignored. For the outgoing map Preset is the user preset and
// Program the program sent when it is recalled.
type ProgramRoute struct {
	Program int    `json:"program"`
	Preset  *int   `json:"preset"`
	Label   string `json:"label"`
}

func mapInPos(program int) (slot, pos int) {
	return mapInFirst + (program-1)/3, (program - 1) % 3
}

func mapOutPos(preset int) (slot, pos int) {
	return mapOutFirst + (preset-FirstUserPreset)/3, (preset - FirstUserPreset) % 3
}

func (s *SystemDump) mapValues(slot int) [3]int {
	v1, v2, v3 := UnpackMap(s.word(slot))
	return [3]int{v1, v2, v3}
}

// ProgramMapIn lists the preset recalled by each incoming program 1..127.
func (s *SystemDump) ProgramMapIn() []ProgramRoute {
	out := make([]ProgramRoute, 0, MaxProgram)
	for p := 1; p <= MaxProgram; p++ {
		slot, pos := mapInPos(p)
		v := s.mapValues(slot)[pos]
		r := ProgramRoute{Program: p, Label: MapLabel(v)}
		if v > 0 && v <= LastUserPreset {
			preset := v
			r.Preset = &preset
		}
		out = append(out, r)
	}
	return out
}

// SetProgramMapIn routes incoming program (1..127) to preset (1..90), or
// ignores it when preset is nil.
func (s *SystemDump) SetProgramMapIn(program int, preset *int) error {
	if program < 1 || program > MaxProgram {
		return fmt.Errorf("program %d: %w", program, ErrOutOfRange)
	}
	v := 0
	if preset != nil {
		if *preset < 1 || *preset > LastUserPreset {
			return fmt.Errorf("preset %d: %w", *preset, ErrOutOfRange)
		}
		v = *preset
	}
	slot, pos := mapInPos(program)
	return s.setMapValue(slot, pos, v)
}

// ProgramMapOut lists the program sent for each user preset 31..90.
func (s *SystemDump) ProgramMapOut() []ProgramRoute {
	out := make([]ProgramRoute, 0, LastUserPreset-FirstUserPreset+1)
	for preset := FirstUserPreset; preset <= LastUserPreset; preset++ {
		slot, pos := mapOutPos(preset)
		code := preset
		out = append(out, ProgramRoute{
			Program: s.mapValues(slot)[pos],
			Preset:  &code,
			Label:   MapLabel(preset),
		})
	}
	return out
}

// SetProgramMapOut sets the program (0..127) sent when user preset 31..90 is
// recalled.
func (s *SystemDump) SetProgramMapOut(preset, program int) error {
	if preset < FirstUserPreset || preset > LastUserPreset {
		return fmt.Errorf("preset %d: %w", preset, ErrOutOfRange)
	}
	if program < 0 || program > MaxProgram {
		return fmt.Errorf("program %d: %w", program, ErrOutOfRange)
	}
	slot, pos := mapOutPos(preset)
	return s.setMapValue(slot, pos, program)
}

func (s *SystemDump) setMapValue(slot, pos, v int) error {
	vals := s.mapValues(slot)
	vals[pos] = v
	w, err := PackMap(vals[0], vals[1], vals[2])
	if err != nil {
		return fmt.Errorf("map slot %d holds %v: %w", slot, vals, err)
	}
	return s.setWord(slot, w)
}

func (s *SystemDump) intSetting(slot, lo, hi, v int) error {
	if v < lo || v > hi {
		return &RangeError{Slot: slot, Type: s.def(slot).Type, Input: strconv.Itoa(v)}
	}
	return s.setRaw(slot, v)
}

func (s *SystemDump) boolSetting(slot int, on bool) error {
	v := 0
	if on {
		v = 1
	}
	return s.setRaw(slot, v)
}

// PedalRange returns the expression pedal minimum, middle and maximum in
// percent.
func (s *SystemDump) PedalRange() (lo, mid, hi int) {
	return s.value(slotPedalMin), s.value(slotPedalMid), s.value(slotPedalMax)
}

// SetPedalRange stores the three pedal points, each 0..100. Nothing is
// written unless all three are in range.
func (s *SystemDump) SetPedalRange(lo, mid, hi int) error {
	for _, v := range [3]int{lo, mid, hi} {
		if v < 0 || v > 100 {
			return fmt.Errorf("pedal point %d: %w", v, ErrOutOfRange)
		}
	}
	if err := s.setRaw(slotPedalMin, lo); err != nil {
		return err
	}
	if err := s.setRaw(slotPedalMid, mid); err != nil {
		return err
	}
	return s.setRaw(slotPedalMax, hi)
}

func (s *SystemDump) PedalType() int { return s.value(slotPedalType) }

func (s *SystemDump) SetPedalType(v int) error { return s.intSetting(slotPedalType, 0, 127, v) }

// MIDIChannel is 0 for off, 1..16, or 17 for omni.
func (s *SystemDump) MIDIChannel() int { return s.value(slotMIDIChannel) }

func (s *SystemDump) SetMIDIChannel(v int) error { return s.intSetting(slotMIDIChannel, 0, 17, v) }

func (s *SystemDump) ProgramChangeIn() bool { return s.value(slotPCIn) == 1 }

func (s *SystemDump) SetProgramChangeIn(on bool) error { return s.boolSetting(slotPCIn, on) }

func (s *SystemDump) ProgramChangeOut() bool { return s.value(slotPCOut) == 1 }

func (s *SystemDump) SetProgramChangeOut(on bool) error { return s.boolSetting(slotPCOut, on) }

func (s *SystemDump) MIDIClock() bool { return s.value(slotMIDIClock) == 1 }

func (s *SystemDump) SetMIDIClock(on bool) error { return s.boolSetting(slotMIDIClock, on) }

// SysExID is the device id the unit answers to; 127 means all.
func (s *SystemDump) SysExID() int { return s.value(slotSysExID) }

func (s *SystemDump) SetSysExID(v int) error { return s.intSetting(slotSysExID, 0, 127, v) }

// CurrentPreset is the preset code selected when the dump was taken.
func (s *SystemDump) CurrentPreset() int { return s.value(slotCurrentPreset) }
