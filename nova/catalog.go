package nova

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeID selects how a slot's raw value is shown.
type TypeID int

const (
	TypeDeci      TypeID = 1
	TypeOnOff     TypeID = 2
	TypeRouting   TypeID = 3
	TypeMapParam  TypeID = 4
	TypeOffOn     TypeID = 5
	TypePreset    TypeID = 6
	TypeCPreset   TypeID = 7
	TypeAttack    TypeID = 10
	TypeRatio     TypeID = 11
	TypeRelease   TypeID = 12
	TypeEQFreq    TypeID = 13
	TypeEQWidth   TypeID = 14
	TypeSpeed     TypeID = 20
	TypeTempo     TypeID = 21
	TypeHiCut     TypeID = 22
	TypeLoCut     TypeID = 24
	TypeHiLo      TypeID = 25
	TypeHardSoft  TypeID = 26
	TypeSoftHard  TypeID = 27
	TypeLoHi      TypeID = 28
	TypeHiColor   TypeID = 30
	TypeLoColor   TypeID = 31
	TypeShape     TypeID = 32
	TypeSize      TypeID = 33
	TypeKey       TypeID = 40
	TypeScale     TypeID = 41
	TypeDegrees   TypeID = 42
	TypeUpDown    TypeID = 43
	TypeDownUp    TypeID = 44
	TypeComp      TypeID = 50
	TypeDrive     TypeID = 51
	TypeDelay     TypeID = 52
	TypeReverb    TypeID = 53
	TypeMod       TypeID = 54
	TypePitch     TypeID = 55
	TypeGate      TypeID = 56
	TypePedal     TypeID = 60
	TypePedalMstr TypeID = 61
	TypeTapMaster TypeID = 62
	TypeFootSw    TypeID = 63
	TypeInputSrc  TypeID = 64
	TypeDClock    TypeID = 65
	TypeDither    TypeID = 66
	TypeOutRange  TypeID = 67
	TypeVolumePos TypeID = 68
	TypeTunerOut  TypeID = 69
	TypeMidiCC    TypeID = 70
	TypeMidiChan  TypeID = 71
	TypeMidiSysEx TypeID = 72
	TypeMidiMap   TypeID = 73
	TypeTunerMode TypeID = 74
	TypeTunerRng  TypeID = 75
	TypeImpedance TypeID = 76

	TypeDeci01_50 TypeID = 90
	TypeDeci01_20 TypeID = 91
	TypeN100Off0  TypeID = 92

	// TypeInt is the inert type: the raw value is shown as is.
	TypeInt TypeID = 100

	TypeN200_200   TypeID = 101
	TypeN100_0     TypeID = 102
	TypeN100_100   TypeID = 103
	TypeN99_15     TypeID = 104
	TypeN60_0      TypeID = 105
	TypeN50_0      TypeID = 106
	TypeN50_50     TypeID = 107
	TypeN30_0      TypeID = 108
	TypeN25_25     TypeID = 109
	TypeN12_12     TypeID = 110
	Type0_10       TypeID = 111
	Type0_24       TypeID = 112
	Type0_30       TypeID = 113
	TypeN40_0      TypeID = 114
	Type0_90       TypeID = 115
	Type0_100      TypeID = 116
	Type0_120      TypeID = 117
	Type0_200      TypeID = 118
	Type0_1800     TypeID = 119
	Type1_2        TypeID = 120
	Type1_10       TypeID = 121
	Type1_20       TypeID = 122
	Type100_3000   TypeID = 123
	Type0_18       TypeID = 124
	Type3_200      TypeID = 125
	Type0_350      TypeID = 126
	TypeN2400_2400 TypeID = 127
	Type0_50       TypeID = 128
	TypeN100_6     TypeID = 129
	Type420_460    TypeID = 130
	TypeN6_18      TypeID = 131
	TypeN99_0      TypeID = 132
	TypeN99_12     TypeID = 133
)

// TypeInfo describes one parameter type. For list types the raw value of
// list[i] is i+Offset.
type TypeInfo struct {
	ID      TypeID
	Name    string
	Offset  int
	Default int

	list    func() []string
	decimal bool
}

// List returns the ordered display list, or nil for types without one.
func (t TypeInfo) List() []string {
	if t.list == nil {
		return nil
	}
	return t.list()
}

func direct(id TypeID, name string, l []string) TypeInfo {
	return TypeInfo{ID: id, Name: name, list: static(l)}
}

func shifted(id TypeID, name string, l func() []string, offset int) TypeInfo {
	return TypeInfo{ID: id, Name: name, list: l, Offset: offset, Default: offset}
}

func ranged(id TypeID, lo, hi int) TypeInfo {
	return shifted(id, rangeName(lo, hi), rangeList(lo, hi), lo)
}

func rangeName(lo, hi int) string {
	return strings.ReplaceAll(fmt.Sprintf("%d..%d", lo, hi), "-", "N")
}

var catalog = map[TypeID]TypeInfo{}

func register(infos ...TypeInfo) {
	for _, t := range infos {
		catalog[t.ID] = t
	}
}

func init() {
	register(
		TypeInfo{ID: TypeDeci, Name: "deci", Default: 1, decimal: true},
		direct(TypeOnOff, "on/off", onOffList),
		direct(TypeRouting, "routing", routingList),
		shifted(TypeMapParam, "map param", mapParamStatic, -1),
		direct(TypeOffOn, "off/on", offOnList),
		TypeInfo{ID: TypePreset, Name: "preset", list: presetList},
		shifted(TypeCPreset, "stored preset", cPresetList, 1),
		direct(TypeAttack, "attack", attackList),
		direct(TypeRatio, "ratio", ratioList),
		shifted(TypeRelease, "release", static(releaseList), 3),
		shifted(TypeEQFreq, "eq freq", static(eqFreqList), 25),
		shifted(TypeEQWidth, "eq width", static(eqWidthList), 3),
		direct(TypeSpeed, "speed", speedList),
		direct(TypeTempo, "tempo", tempoList),
		direct(TypeHiCut, "hi cut", hiCutList),
		direct(TypeLoCut, "lo cut", loCutList),
		direct(TypeHiLo, "hi/lo", hiLoList),
		direct(TypeHardSoft, "hard/soft", hardSoftList),
		direct(TypeSoftHard, "soft/hard", softHardList),
		direct(TypeLoHi, "lo/hi", loHiList),
		direct(TypeHiColor, "hi color", hiColorList),
		direct(TypeLoColor, "lo color", loColorList),
		direct(TypeShape, "shape", shapeList),
		direct(TypeSize, "size", sizeList),
		direct(TypeKey, "key", keyList),
		direct(TypeScale, "scale", scaleList),
		shifted(TypeDegrees, "degrees", static(degreesList), -12),
		direct(TypeUpDown, "up/down", upDownList),
		direct(TypeDownUp, "down/up", downUpList),
		direct(TypeComp, "comp type", compList),
		direct(TypeDrive, "drive type", driveList),
		direct(TypeDelay, "delay type", delayList),
		direct(TypeReverb, "reverb type", reverbList),
		direct(TypeMod, "mod type", modList),
		direct(TypePitch, "pitch type", pitchList),
		direct(TypeGate, "gate mode", softHardList),
		direct(TypePedal, "pedal", pedalList),
		direct(TypePedalMstr, "pedal master", pedalMasterList),
		direct(TypeTapMaster, "tap master", tapMasterList),
		direct(TypeFootSw, "footswitch", footSwitchList),
		direct(TypeInputSrc, "input source", inputSourceList),
		direct(TypeDClock, "digital clock", digitalClockList),
		direct(TypeDither, "dither", ditherList),
		direct(TypeOutRange, "output range", outputRangeList),
		direct(TypeVolumePos, "volume position", volumePosList),
		direct(TypeTunerOut, "tuner out", tunerOutList),
		TypeInfo{ID: TypeMidiCC, Name: "midi cc", list: midiCCList},
		TypeInfo{ID: TypeMidiChan, Name: "midi channel", list: midiChannelList},
		TypeInfo{ID: TypeMidiSysEx, Name: "sysex id", list: midiSysExList},
		TypeInfo{ID: TypeMidiMap, Name: "midi map"},
		direct(TypeTunerMode, "tuner mode", tunerModeList),
		direct(TypeTunerRng, "tuner range", tunerRangeList),
		direct(TypeImpedance, "impedance", impedanceList),

		TypeInfo{ID: TypeDeci01_50, Name: "0.1..50.0", list: deci50List, Offset: 1, Default: 1, decimal: true},
		TypeInfo{ID: TypeDeci01_20, Name: "0.1..20.0", list: deci20List, Offset: 1, Default: 1, decimal: true},
		shifted(TypeN100Off0, "Off,N99..0", n100OffList, -100),
		TypeInfo{ID: TypeInt, Name: "int"},

		ranged(TypeN200_200, -200, 200),
		ranged(TypeN100_0, -100, 0),
		ranged(TypeN100_100, -100, 100),
		ranged(TypeN99_15, -99, 15),
		ranged(TypeN60_0, -60, 0),
		ranged(TypeN50_0, -50, 0),
		ranged(TypeN50_50, -50, 50),
		ranged(TypeN30_0, -30, 0),
		ranged(TypeN25_25, -25, 25),
		ranged(TypeN12_12, -12, 12),
		ranged(Type0_10, 0, 10),
		ranged(Type0_24, 0, 24),
		ranged(Type0_30, 0, 30),
		ranged(TypeN40_0, -40, 0),
		ranged(Type0_90, 0, 90),
		ranged(Type0_100, 0, 100),
		ranged(Type0_120, 0, 120),
		ranged(Type0_200, 0, 200),
		ranged(Type0_1800, 0, 1800),
		ranged(Type1_2, 1, 2),
		ranged(Type1_10, 1, 10),
		ranged(Type1_20, 1, 20),
		ranged(Type100_3000, 100, 3000),
		ranged(Type0_18, 0, 18),
		ranged(Type3_200, 3, 200),
		ranged(Type0_350, 0, 350),
		ranged(TypeN2400_2400, -2400, 2400),
		ranged(Type0_50, 0, 50),
		ranged(TypeN100_6, -100, 6),
		ranged(Type420_460, 420, 460),
		ranged(TypeN6_18, -6, 18),
		ranged(TypeN99_0, -99, 0),
		ranged(TypeN99_12, -99, 12),
	)
}

// Lookup returns the catalog entry for id.
func Lookup(id TypeID) (TypeInfo, bool) {
	t, ok := catalog[id]
	return t, ok
}

// Types returns every catalogued type id in ascending order.
func Types() []TypeID {
	ids := make([]TypeID, 0, len(catalog))
	for id := TypeID(0); id <= TypeN99_12; id++ {
		if _, ok := catalog[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// ParseType finds a type by its catalog name, ignoring case, or by its
// numeric id.
func ParseType(s string) (TypeID, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		_, ok := catalog[TypeID(n)]
		return TypeID(n), ok
	}
	for id, t := range catalog {
		if strings.EqualFold(t.Name, s) {
			return id, true
		}
	}
	return 0, false
}

func (id TypeID) String() string {
	if t, ok := catalog[id]; ok {
		return t.Name
	}
	return "type " + strconv.Itoa(int(id))
}

// DecodeValue renders value under type id. When the value has no entry the
// type's default is returned along with list[0] and ok is false; the caller
// decides whether to store the reset value.
func DecodeValue(id TypeID, value int) (display string, v int, ok bool) {
	t, found := catalog[id]
	if !found {
		return strconv.Itoa(value), value, true
	}
	return t.decode(t.List(), value)
}

func (t TypeInfo) decode(list []string, value int) (string, int, bool) {
	switch {
	case t.ID == TypeInt, t.ID == TypeMidiMap:
		// Map words are rendered from their bytes by the frame.
		return strconv.Itoa(value), value, true
	case t.decimal:
		// Tenths are shown by formula. A list only bounds what may be entered.
		if value < 0 {
			return formatDeci(t.Default), t.Default, false
		}
		return formatDeci(value), value, true
	}

	i := value - t.Offset
	if i < 0 || i >= len(list) || list[i] == "" {
		first := ""
		if len(list) > 0 {
			first = list[0]
		}
		return first, t.Default, false
	}
	return list[i], value, true
}

// EncodeValue maps a display string back to a raw value under type id.
func EncodeValue(id TypeID, display string) (int, error) {
	t, found := catalog[id]
	if !found {
		t = catalog[TypeInt]
	}
	return t.encode(t.List(), display)
}

func (t TypeInfo) encode(list []string, display string) (int, error) {
	s := strings.TrimSpace(display)
	switch {
	case t.ID == TypeInt, t.ID == TypeMidiMap:
		v, err := strconv.Atoi(s)
		if err != nil || v < MinValue || v > MaxValue {
			return 0, ErrOutOfRange
		}
		return v, nil
	case t.decimal:
		v, ok := parseDeci(s)
		if !ok {
			return 0, ErrOutOfRange
		}
		if list != nil && (v-t.Offset < 0 || v-t.Offset >= len(list)) {
			return 0, ErrOutOfRange
		}
		return v, nil
	}
	if s == "" {
		return 0, ErrOutOfRange
	}
	for i, entry := range list {
		if entry == s {
			return i + t.Offset, nil
		}
	}
	return 0, ErrOutOfRange
}

// parseDeci reads "whole.tenth" with exactly one digit after the point.
func parseDeci(s string) (int, bool) {
	whole, tenth, ok := strings.Cut(s, ".")
	if !ok || !allDigits(whole) || len(tenth) != 1 || !allDigits(tenth) {
		return 0, false
	}
	w, err := strconv.Atoi(whole)
	if err != nil || w > MaxValue/10 {
		return 0, false
	}
	return w*10 + int(tenth[0]-'0'), true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
