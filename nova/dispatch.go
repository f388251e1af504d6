package nova

import (
	"fmt"
	"slices"
)

// Block names one effect unit of a patch.
type Block string

const (
	BlockGlobal     Block = "global"
	BlockCompressor Block = "compressor"
	BlockDrive      Block = "drive"
	BlockBoost      Block = "boost"
	BlockModulation Block = "modulation"
	BlockDelay      Block = "delay"
	BlockReverb     Block = "reverb"
	BlockEQ         Block = "eq"
	BlockGate       Block = "gate"
	BlockPitch      Block = "pitch"
)

// Row is one active slot in a block layout. Empty rows pad a layout to the
// block's fixed height and carry Slot -1.
type Row struct {
	Slot  int    `json:"slot"`
	Type  TypeID `json:"type"`
	Name  string `json:"name"`
	Empty bool   `json:"empty,omitempty"`
}

// Layout is the set of slots a block shows for one discriminant value.
type Layout struct {
	Block        Block  `json:"block"`
	Title        string `json:"title"`
	Discriminant int    `json:"discriminant"`
	Known        bool   `json:"known"`
	Rows         []Row  `json:"rows"`
	// Inert lists candidate slots that carry no meaning in this mode.
	Inert []int `json:"inert,omitempty"`
}

// Active returns the slot indices of the non-empty rows in order.
func (l Layout) Active() []int {
	out := make([]int, 0, len(l.Rows))
	for _, r := range l.Rows {
		if !r.Empty {
			out = append(out, r.Slot)
		}
	}
	return out
}

type blockDef struct {
	id         Block
	title      string
	candidates []int
	// disc is the slot holding the mode, or -1.
	disc   int
	head   []Row
	height int
	modes  map[int][]Row
	// fixed blocks show the same rows whatever the discriminant holds.
	fixed []Row
}

func r(slot int, t TypeID, name string) Row { return Row{Slot: slot, Type: t, Name: name} }

var (
	modSpeed   = r(42, TypeSpeed, "Speed (Hz)")
	modTempo   = r(44, TypeTempo, "Tempo")
	modDepth   = r(43, Type0_100, "Depth (%)")
	modHiCut   = r(45, TypeHiCut, "Hi Cut (Hz)")
	modDelay   = r(48, TypeDeci01_50, "Delay (ms)")
	modMix     = r(54, Type0_100, "Mix (%)")
	modFB      = r(46, TypeN100_100, "Feedback (%)")
	modFBHiCut = r(47, TypeHiCut, "Feedback HiCut (Hz)")

	dlyTime   = r(58, Type0_1800, "Delay (ms)")
	dlyTempo  = r(60, TypeTempo, "Tempo")
	dlyFB     = r(62, Type0_100, "Feedback (%)")
	dlyHiCut  = r(64, TypeHiCut, "HiCut (Hz)")
	dlyLoCut  = r(65, TypeLoCut, "LoCut (Hz)")
	dlyMix    = r(70, Type0_100, "Mix (%)")
	dlyClip   = r(63, Type0_18, "Clip (dB)")
	dlyWidth  = r(61, Type0_100, "Width (%)")
	pitVoice1 = r(106, TypeN2400_2400, "Voice 1 (cents)")
	pitVoice2 = r(107, TypeN2400_2400, "Voice 2 (cents)")
	pitPan1   = r(108, TypeN50_50, "Pan 1")
	pitPan2   = r(109, TypeN50_50, "Pan 2")
	pitDly1   = r(110, Type0_350, "Delay 1 (ms)")
	pitDly2   = r(111, Type0_350, "Delay 2 (ms)")
	pitLvl1   = r(114, TypeN100Off0, "Level 1 (dB)")
	pitLvl2   = r(115, TypeN100Off0, "Level 2 (dB)")
	pitMix    = r(117, Type0_100, "Mix (%)")
	pitDir    = r(115, TypeDownUp, "Direction")
	pitRange  = r(116, Type1_2, "Range (oct)")
)

var blockDefs = []blockDef{
	{
		id: BlockGlobal, title: "Global", disc: -1,
		candidates: []int{1, 2, 3, 4, 5, 6, 7, 8},
		fixed: []Row{
			r(1, Type100_3000, "Tempo"),
			r(2, TypeRouting, "Routing"),
			r(3, TypeN100_0, "LvlOut L (dB)"),
			r(4, TypeN100_0, "LvlOut R (dB)"),
			r(5, TypeMapParam, "Map Param"),
			r(6, Type0_100, "Map Min (%)"),
			r(7, Type0_100, "Map Med (%)"),
			r(8, Type0_100, "Map Max (%)"),
		},
	},
	{
		id: BlockCompressor, title: "Compressor", disc: 9, height: 9,
		candidates: []int{24, 9, 10, 11, 12, 13, 14, 15, 16},
		head:       []Row{r(24, TypeOnOff, "On"), r(9, TypeComp, "Type")},
	},
	{
		id: BlockDrive, title: "Drive", disc: 25, height: 9,
		candidates: []int{40, 25, 26, 27, 39},
		fixed: []Row{
			r(40, TypeOnOff, "On"),
			r(25, TypeDrive, "Type"),
			r(26, Type0_30, "Gain (dB)"),
			r(27, Type0_100, "Tone (%)"),
			r(39, TypeN99_15, "Level (dB)"),
		},
	},
	{
		id: BlockBoost, title: "Boost", disc: -1,
		candidates: []int{38, 37},
		fixed:      []Row{r(38, TypeOnOff, "On"), r(37, Type0_10, "Level (dB)")},
	},
	{
		id: BlockModulation, title: "Modulation", disc: 41, height: 14,
		candidates: []int{56, 41, 42, 43, 44, 45, 46, 47, 48, 51, 52, 53, 54},
		head:       []Row{r(56, TypeOnOff, "On"), r(41, TypeMod, "Type")},
		modes: map[int][]Row{
			0: {modSpeed, modTempo, modDepth, modHiCut, modDelay, modMix},
			1: {modSpeed, modTempo, modDepth, modHiCut, modFB, modFBHiCut, modDelay, modMix},
			2: {modSpeed, modTempo, modDepth, modHiCut},
			3: {modSpeed, modTempo, modDepth, r(53, TypeLoHi, "Range"), modFB, modMix},
			4: {modSpeed, modTempo, modDepth, r(52, TypeSoftHard, "Type"), r(51, Type0_100, "Width (%)"), modHiCut},
			5: {modSpeed, modTempo, modDepth},
		},
	},
	{
		id: BlockDelay, title: "Delay", disc: 57, height: 14,
		candidates: []int{72, 57, 58, 59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 69, 70},
		head:       []Row{r(72, TypeOnOff, "On"), r(57, TypeDelay, "Type")},
		modes: map[int][]Row{
			0: {dlyTime, dlyTempo, dlyFB, dlyHiCut, dlyLoCut, dlyMix},
			1: {dlyTime, dlyTempo, dlyClip, dlyFB, dlyHiCut, dlyLoCut, dlyMix},
			2: {dlyTime, dlyTempo, dlyClip, dlyFB, dlyHiCut, dlyLoCut, dlyMix},
			3: {
				dlyTime, dlyTempo, dlyFB, dlyHiCut, dlyLoCut,
				r(66, Type0_200, "Offset (ms)"),
				r(67, TypeN50_0, "Sense (dB)"),
				r(68, Type0_100, "Damp (dB)"),
				r(69, TypeRelease, "Release (ms)"),
				dlyMix,
			},
			4: {
				r(58, Type0_1800, "Delay 1 (ms)"),
				r(59, Type0_1800, "Delay 2 (ms)"),
				r(60, TypeTempo, "Tempo 1"),
				r(61, TypeTempo, "Tempo 2"),
				r(62, Type0_120, "Feedback 1 (%)"),
				r(63, Type0_120, "Feedback 2 (%)"),
				dlyHiCut, dlyLoCut,
				r(66, TypeN50_50, "Pan 1"),
				r(67, TypeN50_50, "Pan 2"),
				dlyMix,
			},
			5: {dlyTime, dlyTempo, dlyWidth, dlyFB, dlyHiCut, dlyLoCut, dlyMix},
		},
	},
	{
		id: BlockReverb, title: "Reverb", disc: 73,
		candidates: []int{88, 73, 74, 75, 85, 77, 78, 79, 80, 81, 82, 83, 84, 76},
		fixed: []Row{
			r(88, TypeOnOff, "On"),
			r(73, TypeReverb, "Type"),
			r(74, TypeDeci01_20, "Decay (s)"),
			r(75, Type0_100, "PreDelay (ms)"),
			r(85, Type0_100, "Mix (%)"),
			r(77, TypeSize, "Size"),
			r(78, TypeHiColor, "Hi Color"),
			r(79, TypeN25_25, "Hi Fac"),
			r(80, TypeLoColor, "Lo Color"),
			r(81, TypeN25_25, "Lo Fac"),
			r(82, TypeN99_0, "Room Lvl (dB)"),
			r(83, TypeN99_0, "Rev Lvl (dB)"),
			r(84, TypeN25_25, "Diffuse"),
			r(76, TypeShape, "Shape"),
		},
	},
	{
		id: BlockEQ, title: "EQ", disc: -1,
		candidates: []int{93, 94, 95, 96, 97, 98, 99, 100, 101, 102},
		fixed: []Row{
			r(93, TypeOffOn, "On"),
			r(94, TypeEQFreq, "Freq1 (Hz)"),
			r(95, TypeN12_12, "Gain1 (dB)"),
			r(96, TypeEQWidth, "Width1 (oct)"),
			r(97, TypeEQFreq, "Freq2 (Hz)"),
			r(98, TypeN12_12, "Gain2 (dB)"),
			r(99, TypeEQWidth, "Width2 (oct)"),
			r(100, TypeEQFreq, "Freq3 (Hz)"),
			r(101, TypeN12_12, "Gain3 (dB)"),
			r(102, TypeEQWidth, "Width3 (oct)"),
		},
	},
	{
		id: BlockGate, title: "Noise Gate", disc: 89,
		candidates: []int{104, 89, 90, 91, 92},
		fixed: []Row{
			r(104, TypeOffOn, "On"),
			r(89, TypeGate, "Type"),
			r(90, TypeN60_0, "Threshold (dB)"),
			r(91, Type0_90, "Damp (dB)"),
			r(92, Type3_200, "Speed (/s)"),
		},
	},
	{
		id: BlockPitch, title: "Pitch", disc: 105, height: 14,
		candidates: []int{120, 105, 106, 107, 108, 109, 110, 111, 112, 113, 114, 115, 116, 117},
		head:       []Row{r(120, TypeOnOff, "On"), r(105, TypePitch, "Type")},
		modes: map[int][]Row{
			0: {
				pitVoice1, pitVoice2, pitPan1, pitPan2, pitDly1, pitDly2,
				r(112, Type0_100, "Feedback 1 (%)"),
				r(113, Type0_100, "Feedback 2 (%)"),
				pitLvl1, pitLvl2, pitMix,
			},
			1: {pitDir, pitRange, pitMix},
			2: {r(114, Type0_100, "Pitch (%)"), pitDir, pitRange},
			3: {
				r(106, TypeN100_100, "Voice 1 (cents)"),
				r(107, TypeN100_100, "Voice 2 (cents)"),
				r(110, Type0_50, "Delay 1 (ms)"),
				r(111, Type0_50, "Delay 2 (ms)"),
				pitMix,
			},
			4: {
				r(112, TypeKey, "Key"),
				r(113, TypeScale, "Scale"),
				r(106, TypeDegrees, "Voice 1 (degree)"),
				r(107, TypeDegrees, "Voice 2 (degree)"),
				pitLvl1, pitLvl2, pitPan1, pitPan2, pitDly1, pitDly2, pitMix,
			},
		},
	},
}

var (
	blocksByID = map[Block]*blockDef{}
	// slotOwner maps a patch slot to the block whose layout types it.
	slotOwner = map[int]*blockDef{}
)

func init() {
	for i := range blockDefs {
		b := &blockDefs[i]
		blocksByID[b.id] = b
		for _, s := range b.candidates {
			slotOwner[s] = b
		}
	}
}

// Blocks lists the patch's effect blocks in panel order.
func Blocks() []Block {
	out := make([]Block, len(blockDefs))
	for i, b := range blockDefs {
		out[i] = b.id
	}
	return out
}

// Dispatch computes the layout of block for a discriminant value. The result
// depends on nothing else, so equal inputs always give equal layouts.
func Dispatch(block Block, discriminant int) (Layout, error) {
	b, ok := blocksByID[block]
	if !ok {
		return Layout{}, fmt.Errorf("%q: %w", block, ErrUnknownBlock)
	}
	lay := Layout{Block: b.id, Title: b.title, Discriminant: discriminant, Known: true}

	if b.fixed != nil {
		lay.Rows = slices.Clone(b.fixed)
	} else {
		lay.Rows = slices.Clone(b.head)
		body, known := b.body(discriminant)
		lay.Known = known
		lay.Rows = append(lay.Rows, body...)
	}
	for len(lay.Rows) < b.height {
		lay.Rows = append(lay.Rows, Row{Slot: -1, Type: TypeInt, Empty: true})
	}

	active := lay.Active()
	for _, s := range b.candidates {
		if !slices.Contains(active, s) {
			lay.Inert = append(lay.Inert, s)
		}
	}
	return lay, nil
}

func (b *blockDef) body(d int) ([]Row, bool) {
	if b.id == BlockCompressor {
		if d < 2 {
			return []Row{
				r(15, Type1_20, "Drive"),
				r(14, Type1_10, "Response"),
				r(16, TypeN99_12, "Level (dB)"),
			}, true
		}
		return []Row{
			r(10, TypeN40_0, "Threshold (dB)"),
			r(11, TypeRatio, "Ratio"),
			r(12, TypeAttack, "Attack (ms)"),
			r(13, TypeRelease, "Release (ms)"),
			r(16, TypeN99_12, "Level (dB)"),
		}, true
	}
	rows, ok := b.modes[d]
	if !ok {
		return nil, false
	}
	return slices.Clone(rows), true
}

// ExpressionTargets is the list of parameters the expression pedal can be
// mapped to, which depends on the modulation, delay and pitch types.
// Entries that do not exist for a type are empty strings.
func ExpressionTargets(mod, dly, pit int) []string {
	out := make([]string, 20)
	out[0] = "Off"
	copy(out[1:3], driveTargets)
	fill(out[3:7], modTargets, mod)
	fill(out[7:13], delayTargets, dly)
	copy(out[13:17], reverbTargets)
	fill(out[17:20], pitchTargets, pit)
	return out
}

func fill(dst, table []string, mode int) {
	start := mode * len(dst)
	if mode < 0 || start+len(dst) > len(table) {
		return
	}
	copy(dst, table[start:start+len(dst)])
}
