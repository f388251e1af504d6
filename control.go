package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"novamcp/nova"
)

type controlSetting struct {
	Name  string
	CC    uint8
	Value uint8
}

// parseControls reads "name=value" tokens such as "drive=on delay=64" and
// resolves each name through the unit's CC assignments. Values are 0..127 or
// on/off.
func parseControls(text string, mappings []nova.CCMapping) ([]controlSetting, error) {
	tokens := splitTokens(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no controls provided")
	}

	out := make([]controlSetting, 0, len(tokens))
	for _, tok := range tokens {
		name, raw, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("invalid control %q: want name=value", tok)
		}
		m, err := findMapping(name, mappings)
		if err != nil {
			return nil, err
		}
		v, err := parseControlValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", m.Name, err)
		}
		out = append(out, controlSetting{Name: m.Name, CC: uint8(*m.CC), Value: v})
	}
	return out, nil
}

// splitTokens splits on whitespace, commas, semicolons and bars.
func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == ';' || r == '|'
	})
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func findMapping(name string, mappings []nova.CCMapping) (nova.CCMapping, error) {
	i, err := ccIndex(name, mappings)
	if err != nil {
		return nova.CCMapping{}, err
	}
	m := mappings[i]
	if m.CC == nil {
		return nova.CCMapping{}, fmt.Errorf("%s has no controller assigned", m.Name)
	}
	return m, nil
}

func parseControlValue(s string) (uint8, error) {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "on":
		return 127, nil
	case "off":
		return 0, nil
	}
	v, err := strconv.Atoi(t)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 127 {
		return 0, fmt.Errorf("value out of range: %d", v)
	}
	return uint8(v), nil
}

func sendControls(dev *Nova, settings []controlSetting) error {
	for _, s := range settings {
		if err := dev.SendControl(s.CC, s.Value); err != nil {
			return fmt.Errorf("control change failed for %s: %w", s.Name, err)
		}
	}
	return nil
}

// parsePresetToken accepts a front panel label ("F3-2", "05-1") or a preset
// code 1..90.
func parsePresetToken(tok string) (int, error) {
	t := strings.ToUpper(strings.TrimSpace(tok))
	if t == "" {
		return 0, fmt.Errorf("empty preset")
	}

	if bankText, posText, ok := strings.Cut(t, "-"); ok {
		factory := strings.HasPrefix(bankText, "F")
		bankText = strings.TrimPrefix(bankText, "F")
		bank, err := strconv.Atoi(bankText)
		if err != nil {
			return 0, fmt.Errorf("invalid bank %q: %w", bankText, err)
		}
		pos, err := strconv.Atoi(posText)
		if err != nil || pos < 1 || pos > 3 {
			return 0, fmt.Errorf("invalid position %q", posText)
		}
		switch {
		case factory && bank >= 0 && bank <= 9:
			return 1 + bank*3 + pos - 1, nil
		case !factory && bank >= 0 && bank <= 19:
			return nova.FirstUserPreset + bank*3 + pos - 1, nil
		default:
			return 0, fmt.Errorf("bank out of range: %q", tok)
		}
	}

	code, err := strconv.Atoi(t)
	if err != nil {
		return 0, fmt.Errorf("invalid preset %q: %w", tok, err)
	}
	if code < 1 || code > nova.LastUserPreset {
		return 0, fmt.Errorf("preset out of range: %d", code)
	}
	return code, nil
}

// programFor finds the incoming program that recalls code. Without a system
// dump the unit's default one to one map is assumed.
func programFor(code int, sys *nova.SystemDump) (uint8, error) {
	if sys == nil {
		return uint8(code - 1), nil
	}
	for _, r := range sys.ProgramMapIn() {
		if r.Preset != nil && *r.Preset == code {
			return uint8(r.Program - 1), nil
		}
	}
	return 0, fmt.Errorf("no program change is mapped to preset %s", nova.MapLabel(code))
}
