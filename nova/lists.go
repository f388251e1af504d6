package nova

import (
	"fmt"
	"strconv"
	"sync"
)

// Display lists. Each string is what the unit itself shows, so spelling and
// abbreviations must not change.
var (
	hiCutList = []string{
		"19.95", "22.39", "25.12", "28.18", "31.62", "35.48", "39.81", "44.67", "50.12", "56.23",
		"63.10", "70.79", "79.43", "89.13", "100.0", "112.2", "125.9", "141.3", "158.5", "177.8",
		"199.5", "223.9", "251.2", "281.8", "316.2", "354.8", "398.1", "446.7", "501.2", "562.3",
		"631.0", "707.9", "794.3", "891.3", "1.00k", "1.12k", "1.26k", "1.41k", "1.58k", "1.78k",
		"2.00k", "2.24k", "2.51k", "2.82k", "3.16k", "3.55k", "3.98k", "4.47k", "5.01k", "5.62k",
		"6.31k", "7.08k", "7.94k", "8.91k", "10.0k", "11.2k", "12.6k", "14.1k", "15.8k", "17.8k",
		"Off",
	}
	loCutList = []string{
		"Off", "22.39", "25.12", "28.18", "31.62", "35.48", "39.81", "44.67", "50.12", "56.23",
		"63.10", "70.79", "79.43", "89.13", "100.0", "112.2", "125.9", "141.3", "158.5", "177.8",
		"199.5", "223.9", "251.2", "281.8", "316.2", "354.8", "398.1", "446.7", "501.2", "562.3",
		"631.0", "707.9", "794.3", "891.3", "1.00k", "1.12k", "1.26k", "1.41k", "1.58k", "1.78k",
		"2.00k",
	}
	ratioList = []string{
		"Off", "1.1:1", "1.3:1", "1.4:1", "1.6:1", "1.8:1", "2.0:1", "2.5:1", "3.2:1", "4.0:1",
		"5.6:1", "8.0:1", "16:1", "32:1", "64:1", "Inf:1",
	}
	releaseList = []string{
		"1.0", "1.4", "2.0", "3.0", "5.0", "7.0", "10", "14", "20", "30", "50", "70", "100", "140",
		"200", "300", "500", "700", "1.0s", "1.4s", "2.0s",
	}
	tempoList = []string{
		"Disabled", "1", "1/2D", "1/2", "1/2T", "1/4D", "1/4", "1/4T", "1/8D", "1/8", "1/8T", "1/16D",
		"1/16", "1/16T", "1/32D", "1/32", "1/32T",
	}
	speedList = []string{
		".050", ".052", ".053", ".055", ".056", ".058", ".060", ".061", ".063", ".065", ".067",
		".069", ".071", ".073", ".075", ".077", ".079", ".082", ".084", ".087", ".089", ".092",
		".094", ".097", ".100", ".103", ".106", ".109", ".112", ".115", ".119", ".122", ".126",
		".130", ".133", ".137", ".141", ".145", ".150", ".154", ".158", ".163", ".168", ".173",
		".178", ".183", ".188", ".194", ".200", ".205", ".211", ".218", ".224", ".230", ".237",
		".244", ".251", ".259", ".266", ".274", ".282", ".290", ".299", ".307", ".316", ".325",
		".335", ".345", ".355", ".365", ".376", ".387", ".398", ".410", ".422", ".434", ".447",
		".460", ".473", ".487", ".501", ".516", ".531", ".546", ".562", ".579", ".596", ".613",
		".631", ".649", ".668", ".688", ".708", ".729", ".750", ".772", ".794", ".818", ".841",
		".866", ".891", ".917", ".944", ".972", "1.00", "1.03", "1.06", "1.09", "1.12", "1.15",
		"1.19", "1.22", "1.26", "1.30", "1.33", "1.37", "1.41", "1.45", "1.50", "1.54", "1.58",
		"1.63", "1.68", "1.73", "1.78", "1.83", "1.88", "1.94", "2.00", "2.05", "2.11", "2.18",
		"2.24", "2.30", "2.37", "2.44", "2.51", "2.59", "2.66", "2.74", "2.82", "2.90", "2.99",
		"3.07", "3.16", "3.25", "3.35", "3.45", "3.55", "3.65", "3.76", "3.87", "3.98", "4.10",
		"4.22", "4.34", "4.47", "4.60", "4.73", "4.87", "5.01", "5.16", "5.31", "5.46", "5.62",
		"5.79", "5.96", "6.13", "6.31", "6.49", "6.68", "6.88", "7.08", "7.29", "7.50", "7.72",
		"7.94", "8.18", "8.41", "8.66", "8.91", "9.17", "9.44", "9.72", "10.00", "10.29", "10.59",
		"10.90", "11.22", "11.55", "11.89", "12.23", "12.59", "12.96", "13.34", "13.72", "14.13",
		"14.54", "14.96", "15.40", "15.85", "16.31", "16.79", "17.28", "17.78", "18.30", "18.84",
		"19.39", "19.95",
	}
	eqFreqList = []string{
		"41.0", "42.2", "43.4", "44.7", "46.0", "47.3", "48.7", "50.1", "51.6", "53.1", "54.6",
		"56.2", "57.9", "59.6", "61.3", "63.1", "64.9", "66.8", "68.8", "70.8", "72.9", "75.0",
		"77.2", "79.4", "81.8", "84.1", "86.6", "89.1", "91.7", "94.4", "97.2", "100", "103", "106",
		"109", "112", "115", "119", "122", "126", "130", "133", "137", "141", "145", "150", "154",
		"158", "163", "168", "173", "178", "183", "188", "194", "200", "205", "211", "218", "224",
		"230", "237", "244", "251", "259", "266", "274", "282", "290", "299", "307", "316", "325",
		"335", "345", "355", "365", "376", "387", "398", "410", "422", "434", "447", "460", "473",
		"487", "501", "516", "531", "546", "562", "579", "596", "613", "631", "649", "668", "688",
		"708", "729", "750", "772", "794", "818", "841", "866", "891", "917", "944", "972", "1.00k",
		"1.03k", "1.06k", "1.09k", "1.12k", "1.15k", "1.19k", "1.22k", "1.26k", "1.30k", "1.33k",
		"1.37k", "1.41k", "1.45k", "1.50k", "1.54k", "1.58k", "1.63k", "1.68k", "1.73k", "1.78k",
		"1.83k", "1.88k", "1.94k", "2.00k", "2.05k", "2.11k", "2.18k", "2.24k", "2.30k", "2.37k",
		"2.44k", "2.51k", "2.59k", "2.66k", "2.74k", "2.82k", "2.90k", "2.99k", "3.07k", "3.16k",
		"3.25k", "3.35k", "3.45k", "3.55k", "3.65k", "3.76k", "3.87k", "3.98k", "4.10k", "4.22k",
		"4.34k", "4.47k", "4.60k", "4.73k", "4.87k", "5.01k", "5.16k", "5.31k", "5.46k", "5.62k",
		"5.79k", "5.96k", "6.13k", "6.31k", "6.49k", "6.68k", "6.88k", "7.08k", "7.29k", "7.50k",
		"7.72k", "7.94k", "8.18k", "8.41k", "8.66k", "8.91k", "9.17k", "9.44k", "9.72k", "10.0k",
		"10.3k", "10.6k", "10.9k", "11.2k", "11.5k", "11.9k", "12.2k", "12.6k", "13.0k", "13.3k",
		"13.7k", "14.1k", "14.5k", "15.0k", "15.4k", "15.8k", "16.3k", "16.8k", "17.3k", "17.8k",
		"18.3k", "18.8k", "19.4k", "20.0k", "Off",
	}
	eqWidthList = []string{
		"0.3", "0.4", "0.5", "0.6", "0.7", "0.8", "0.9", "1.0", "1.1", "1.2", "1.3", "1.4", "1.5",
		"1.6",
	}
	attackList = []string{
		"0.3", "0.5", "0.7", "1.0", "1.4", "2.0", "3", "5", "7", "10", "14", "20", "30", "50", "70",
		"100", "140",
	}
	degreesList = []string{
		"-13", "-12", "-11", "-10", "-9", "-oct", "-7", "-6", "-5", "-4", "-3", "-2", "Uniss", "+2",
		"+3", "+4", "+5", "+6", "+7", "+oct", "+9", "+10", "+11", "+12", "+13",
	}
	keyList = []string{
		"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
	}
	scaleList = []string{
		"Ionian", "Dorian", "Phrygian", "Lydian", "Mixolyd", "Aeolian", "Locrian", "PntMin", "PntMaj",
		"Blues", "DimWhl", "Whole", "HrmMin",
	}
	shapeList = []string{
		"Round", "Curved", "Square",
	}
	sizeList = []string{
		"Box", "Tiny", "Small", "Medium", "Large", "XL", "Grand", "Huge",
	}
	hiColorList = []string{
		"Wool", "Warm", "Real", "Clear", "Bright", "Crisp", "Glass",
	}
	loColorList = []string{
		"Thick", "Round", "Real", "Light", "Tight", "Thin", "NoBass",
	}
	compList = []string{
		"perc", "sustain", "advance",
	}
	driveList = []string{
		"overdrive", "distorsion",
	}
	delayList = []string{
		"clean", "analog", "tape", "dynam", "dual", "p.pong",
	}
	reverbList = []string{
		"spring", "hall", "room", "plate",
	}
	modList = []string{
		"chorus", "flanger", "vibrato", "phaser", "tremolo", "panner",
	}
	pitchList = []string{
		"shifter", "octave", "wham", "detune", "intell P",
	}
	hiLoList = []string{
		"High", "Low",
	}
	loHiList = []string{
		"Low", "High",
	}
	hardSoftList = []string{
		"Hard", "Soft",
	}
	softHardList = []string{
		"Soft", "Hard",
	}
	upDownList = []string{
		"Up", "Down",
	}
	downUpList = []string{
		"Down", "Up",
	}
	onOffList = []string{
		"On", "Off",
	}
	offOnList = []string{
		"Off", "On",
	}
	routingList = []string{
		"Serial", "SemiPar", "Parallel",
	}
	pedalList = []string{
		"Expression", "G-Switch", "Exp.GlbVol",
	}
	pedalMasterList = []string{
		"Preset", "Pedal",
	}
	tapMasterList = []string{
		"Preset", "Tap",
	}
	footSwitchList = []string{
		"Pedal", "Preset",
	}
	inputSourceList = []string{
		"Line", "Drive", "Digital",
	}
	digitalClockList = []string{
		"44.1kHz", "48kHz", "Digital",
	}
	ditherList = []string{
		"Off", "20", "16", "8",
	}
	outputRangeList = []string{
		"2", "8", "14", "20",
	}
	volumePosList = []string{
		"Pre", "Post",
	}
	tunerOutList = []string{
		"Mute", "On",
	}
	tunerModeList = []string{
		"Coarse", "Fine",
	}
	tunerRangeList = []string{
		"Guitar", "Bass", "7strGuit",
	}
	impedanceList = []string{
		"Lo-Z", "Hi-Z",
	}
	driveTargets = []string{
		"DRV Gain", "DRV Level",
	}
	modTargets = []string{
		"CHO Speed", "CHO Depth", "CHO HiCut", "", "FLA Speed", "FLA Depth", "FLA FeedB", "",
		"VIB Speed", "VIB Depth", "VIB HiCut", "", "PHA Speed", "PHA Mix", "", "", "TREM Speed",
		"TREM Depth", "TREM HiCut", "TREM Width", "PAN Speed", "PAN Depth", "", "",
	}
	delayTargets = []string{
		"DLY Delay", "DLY FeedB", "DLY HiCut", "DLY Mix", "", "", "DLY Delay", "DLY FeedB",
		"DLY HiCut", "DLY Mix", "", "", "DLY Delay", "DLY FeedB", "DLY HiCut", "DLY Mix", "", "",
		"DLY Delay", "DLY FeedB", "DLY Mix", "", "", "", "DLY Dly1", "DLY Dly2", "DLY FB1", "DLY FB2",
		"DLY FBHCut", "DLY Mix", "DLY Delay", "DLY FeedB", "DLY HiCut", "DLY Mix", "", "",
	}
	reverbTargets = []string{
		"REV Decay", "REV PreDly", "REV Color", "REV Mix",
	}
	pitchTargets = []string{
		"PIT Voic1", "PIT Voic2", "PIT Mix", "PIT Mix", "", "", "PIT Pitch", "", "", "PIT Voic1",
		"PIT Voic2", "PIT Mix", "PIT Voic1", "PIT Voic2", "PIT Mix",
	}
)

// intRange lists the decimal strings lo..hi inclusive.
func intRange(lo, hi int) []string {
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, strconv.Itoa(n))
	}
	return out
}

// deciRange lists 0.1, 0.2 ... up to n tenths.
func deciRange(n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, formatDeci(i))
	}
	return out
}

func formatDeci(v int) string {
	return strconv.Itoa(v/10) + "." + strconv.Itoa(v%10)
}

func rangeList(lo, hi int) func() []string {
	return sync.OnceValue(func() []string { return intRange(lo, hi) })
}

func static(l []string) func() []string {
	return func() []string { return l }
}

var (
	midiCCList = sync.OnceValue(func() []string {
		out := make([]string, 0, 129)
		out = append(out, "Off")
		return append(out, intRange(0, 127)...)
	})

	midiChannelList = sync.OnceValue(func() []string {
		out := make([]string, 0, 18)
		out = append(out, "Off")
		out = append(out, intRange(1, 16)...)
		return append(out, "Omni")
	})

	midiSysExList = sync.OnceValue(func() []string {
		return append(intRange(0, 126), "All")
	})

	// presetList is indexed by preset code: 0 is the edit buffer, 1..30 the
	// factory banks F0..F9 and 31..90 the user banks 00..19.
	presetList = sync.OnceValue(func() []string {
		out := make([]string, 0, 91)
		out = append(out, "current")
		for bank := 0; bank < 30; bank++ {
			for n := 1; n <= 3; n++ {
				out = append(out, presetLabel(bank, n))
			}
		}
		return out
	})

	// cPresetList is every stored preset label, factory and user, without
	// the edit buffer entry.
	cPresetList = sync.OnceValue(func() []string {
		return presetList()[1:]
	})

	n100OffList = sync.OnceValue(func() []string {
		l := intRange(-100, 0)
		l[0] = "Off"
		return l
	})

	deci50List = sync.OnceValue(func() []string { return deciRange(500) })
	deci20List = sync.OnceValue(func() []string { return deciRange(200) })

	mapParamStatic = sync.OnceValue(func() []string { return intRange(0, 19) })
)

func presetLabel(bank, n int) string {
	if bank < 10 {
		return fmt.Sprintf("F%d-%d", bank, n)
	}
	return fmt.Sprintf("%02d-%d", bank-10, n)
}
