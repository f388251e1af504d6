package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"novamcp/nova"
)

// frameEdit changes a parsed frame in place.
type frameEdit func(nova.Frame) error

type hexFrameReport struct {
	frameReport
	Hex string `json:"hex"`
}

func hexReport(f nova.Frame) hexFrameReport {
	return hexFrameReport{frameReport: describe(f, false), Hex: hex.EncodeToString(f.Bytes())}
}

func patchEdit(fn func(*nova.Patch) error) frameEdit {
	return func(f nova.Frame) error {
		p, ok := f.(*nova.Patch)
		if !ok {
			return fmt.Errorf("%s dump given, want a preset dump", f.Kind())
		}
		return fn(p)
	}
}

func systemEdit(fn func(*nova.SystemDump) error) frameEdit {
	return func(f nova.Frame) error {
		sys, ok := f.(*nova.SystemDump)
		if !ok {
			return fmt.Errorf("%s dump given, want a system dump", f.Kind())
		}
		return fn(sys)
	}
}

// editHexFrame applies edit to a frame written as hex.
func editHexFrame(hexFrame string, edit frameEdit) (nova.Frame, error) {
	b, err := decodeHex(hexFrame)
	if err != nil {
		return nil, err
	}
	f, err := parseFrame(b)
	if err != nil {
		return nil, err
	}
	if err := edit(f); err != nil {
		return nil, err
	}
	return f, nil
}

// editFile applies edit to the frame stored at path and writes it back.
// Nothing is written when the edit fails.
func editFile(path string, edit frameEdit) (nova.Frame, error) {
	f, err := readFrameFile(path)
	if err != nil {
		return nil, err
	}
	if err := edit(f); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, f.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return f, nil
}

func renameEdit(name string) frameEdit {
	return patchEdit(func(p *nova.Patch) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("empty preset name")
		}
		return p.SetName(name)
	})
}

// copyPatch returns a copy of p filed under the user preset named by token.
func copyPatch(p *nova.Patch, token string) (*nova.Patch, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	code, err := parsePresetToken(token)
	if err != nil {
		return nil, err
	}
	if code < nova.FirstUserPreset {
		return nil, fmt.Errorf("preset %s is a factory preset: %w", nova.MapLabel(code), nova.ErrOutOfRange)
	}
	cp, err := nova.ParsePatch(p.Bytes())
	if err != nil {
		return nil, err
	}
	if err := cp.SetPresetCode(code); err != nil {
		return nil, err
	}
	return cp, nil
}

func copyHex(hexFrame, token string) (*nova.Patch, error) {
	b, err := decodeHex(hexFrame)
	if err != nil {
		return nil, err
	}
	p, err := nova.ParsePatch(b)
	if err != nil {
		return nil, err
	}
	return copyPatch(p, token)
}

func copyFile(src, token, dst string) error {
	f, err := readFrameFile(src)
	if err != nil {
		return err
	}
	p, ok := f.(*nova.Patch)
	if !ok {
		return fmt.Errorf("%s: %s dump given, want a preset dump", src, f.Kind())
	}
	cp, err := copyPatch(p, token)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, cp.Bytes(), 0o644); err != nil {
		return err
	}
	log.Info().Str("preset", cp.PresetLabel()).Str("file", dst).Msg("preset copied")
	return nil
}

func ccIndex(name string, mappings []nova.CCMapping) (int, error) {
	key := normalizeName(name)
	for i, m := range mappings {
		if normalizeName(m.Name) == key {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown control %q", name)
}

// ccEdit assigns controller value ("off" or 0..127) to a front panel
// function.
func ccEdit(function, value string) frameEdit {
	return systemEdit(func(sys *nova.SystemDump) error {
		i, err := ccIndex(function, sys.CCMappings())
		if err != nil {
			return err
		}
		var cc *int
		if v := strings.TrimSpace(value); !strings.EqualFold(v, "off") {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid controller %q: %w", value, err)
			}
			cc = &n
		}
		return sys.SetCCMapping(i, cc)
	})
}

// programMapEdit changes one program map entry. For "in" from is the
// received program 1..127 and to a preset or "none"; for "out" from is a
// user preset and to the program 0..127 it sends.
func programMapEdit(direction, from, to string) frameEdit {
	return systemEdit(func(sys *nova.SystemDump) error {
		switch strings.ToLower(strings.TrimSpace(direction)) {
		case "in":
			program, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return fmt.Errorf("invalid program %q: %w", from, err)
			}
			if strings.EqualFold(strings.TrimSpace(to), "none") {
				return sys.SetProgramMapIn(program, nil)
			}
			preset, err := parsePresetToken(to)
			if err != nil {
				return err
			}
			return sys.SetProgramMapIn(program, &preset)
		case "out":
			preset, err := parsePresetToken(from)
			if err != nil {
				return err
			}
			program, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return fmt.Errorf("invalid program %q: %w", to, err)
			}
			return sys.SetProgramMapOut(preset, program)
		default:
			return fmt.Errorf("map direction must be in or out, got %q", direction)
		}
	})
}

// systemSettingsEdit applies "key=value" settings such as
// "channel=omni pc-in=on pedal=0/50/100".
func systemSettingsEdit(text string) frameEdit {
	return systemEdit(func(sys *nova.SystemDump) error {
		tokens := splitTokens(text)
		if len(tokens) == 0 {
			return fmt.Errorf("no settings provided")
		}
		for _, tok := range tokens {
			key, raw, ok := strings.Cut(tok, "=")
			if !ok {
				return fmt.Errorf("invalid setting %q: want key=value", tok)
			}
			if err := applySystemSetting(sys, normalizeName(key), strings.TrimSpace(raw)); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
		return nil
	})
}

func applySystemSetting(sys *nova.SystemDump, key, raw string) error {
	switch key {
	case "channel":
		switch strings.ToLower(raw) {
		case "off":
			return sys.SetMIDIChannel(0)
		case "omni":
			return sys.SetMIDIChannel(17)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if n < 1 || n > 16 {
			return fmt.Errorf("channel %d: %w", n, nova.ErrOutOfRange)
		}
		return sys.SetMIDIChannel(n)
	case "sysexid":
		if strings.EqualFold(raw, "all") {
			return sys.SetSysExID(127)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		return sys.SetSysExID(n)
	case "pcin", "pcout", "clock":
		on, err := parseSwitch(raw)
		if err != nil {
			return err
		}
		switch key {
		case "pcin":
			return sys.SetProgramChangeIn(on)
		case "pcout":
			return sys.SetProgramChangeOut(on)
		default:
			return sys.SetMIDIClock(on)
		}
	case "pedaltype":
		n, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		return sys.SetPedalType(n)
	case "pedal":
		parts := strings.Split(raw, "/")
		if len(parts) != 3 {
			return fmt.Errorf("want min/mid/max, got %q", raw)
		}
		var pts [3]int
		for i, s := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			pts[i] = n
		}
		return sys.SetPedalRange(pts[0], pts[1], pts[2])
	default:
		return fmt.Errorf("unknown setting")
	}
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}

func logEdit(path string, edit frameEdit) error {
	f, err := editFile(path, edit)
	if err != nil {
		return err
	}
	log.Info().Str("file", path).Str("kind", f.Kind().String()).Int("checksum", int(f.Checksum())).Msg("frame updated")
	return nil
}
