package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	"novamcp/nova"
)

type blockReport struct {
	Block        nova.Block      `json:"block"`
	Title        string          `json:"title"`
	Discriminant int             `json:"discriminant"`
	Known        bool            `json:"known"`
	Rows         []nova.SlotView `json:"rows"`
}

type sectionReport struct {
	Name string          `json:"name"`
	Rows []nova.SlotView `json:"rows"`
}

type frameReport struct {
	Kind     string           `json:"kind"`
	Valid    bool             `json:"valid"`
	Error    string           `json:"error,omitempty"`
	DeviceID int              `json:"device_id"`
	Checksum int              `json:"checksum"`
	Name     string           `json:"name,omitempty"`
	Preset   string           `json:"preset,omitempty"`
	Blocks   []blockReport    `json:"blocks,omitempty"`
	Sections []sectionReport  `json:"sections,omitempty"`
	CC       []nova.CCMapping `json:"cc,omitempty"`
	Slots    []nova.SlotView  `json:"slots,omitempty"`
}

type valueReport struct {
	Raw     int    `json:"raw"`
	Display string `json:"display"`
}

type typeReport struct {
	Type    nova.TypeID   `json:"type"`
	Name    string        `json:"name"`
	Offset  int           `json:"offset"`
	Default int           `json:"default"`
	Values  []valueReport `json:"values,omitempty"`
}

type editReport struct {
	Slot nova.SlotView `json:"slot"`
	Hex  string        `json:"hex"`
}

// decodeHex reads a frame written as hex, allowing whitespace between bytes.
func decodeHex(s string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex frame: %w", err)
	}
	return b, nil
}

func describeType(name string) (typeReport, error) {
	id, ok := nova.ParseType(name)
	if !ok {
		return typeReport{}, fmt.Errorf("unknown parameter type %q", name)
	}
	t, _ := nova.Lookup(id)
	r := typeReport{Type: id, Name: t.Name, Offset: t.Offset, Default: t.Default}
	for i, d := range t.List() {
		if d == "" {
			continue
		}
		r.Values = append(r.Values, valueReport{Raw: i + t.Offset, Display: d})
	}
	return r, nil
}

// editFrame parses hexFrame, applies one edit and returns the result.
func editFrame(hexFrame string, slot int, value string) (editReport, error) {
	f, err := editHexFrame(hexFrame, func(f nova.Frame) error {
		return applyEdit(f, slot, value)
	})
	if err != nil {
		return editReport{}, err
	}
	sv, err := f.Slot(slot)
	if err != nil {
		return editReport{}, err
	}
	return editReport{Slot: sv, Hex: hex.EncodeToString(f.Bytes())}, nil
}

// parseFrame parses b and records it. An invalid frame is still returned so
// that it can be described.
func parseFrame(b []byte) (nova.Frame, error) {
	f, err := nova.Parse(b)
	if err != nil {
		return nil, err
	}
	recordFrame(f.Kind(), f.Validate())
	return f, nil
}

// describe builds the report of f. With all set every slot is listed, not
// only the grouped ones.
func describe(f nova.Frame, all bool) frameReport {
	verr := f.Validate()
	r := frameReport{
		Kind:     f.Kind().String(),
		Valid:    verr == nil,
		Checksum: int(f.Checksum()),
	}
	if verr != nil {
		r.Error = verr.Error()
	}

	switch fr := f.(type) {
	case *nova.Patch:
		r.DeviceID = int(fr.DeviceID())
		r.Name = fr.Name()
		r.Preset = fr.PresetLabel()
		for _, b := range nova.Blocks() {
			lay, err := fr.Layout(b)
			if err != nil {
				continue
			}
			rows, _ := fr.View(b)
			r.Blocks = append(r.Blocks, blockReport{
				Block:        b,
				Title:        lay.Title,
				Discriminant: lay.Discriminant,
				Known:        lay.Known,
				Rows:         rows,
			})
		}
	case *nova.SystemDump:
		r.DeviceID = int(fr.DeviceID())
		r.Preset = nova.MapLabel(fr.CurrentPreset())
		for _, sec := range nova.Sections() {
			rows, _ := fr.Section(sec.Name)
			r.Sections = append(r.Sections, sectionReport{Name: sec.Name, Rows: rows})
		}
		r.CC = fr.CCMappings()
	}
	if all {
		r.Slots = f.Slots()
	}
	return r
}

// applyEdit stores value in slot i. The value is tried as a display string
// first and as a raw number second.
func applyEdit(f nova.Frame, i int, value string) error {
	err := f.SetDisplay(i, value)
	if err == nil || !errors.Is(err, nova.ErrOutOfRange) {
		return err
	}
	v, convErr := strconv.Atoi(value)
	if convErr != nil {
		return err
	}
	return f.Set(i, v)
}

func printJSON(v any) error {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(asJson))
	return nil
}

func readFrameFile(path string) (nova.Frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseFrame(data)
}

func describeFile(path string, all bool) error {
	f, err := readFrameFile(path)
	if err != nil {
		return err
	}
	return printJSON(describe(f, all))
}

func validateFile(path string) error {
	f, err := readFrameFile(path)
	if err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	log.Info().Str("file", path).Str("kind", f.Kind().String()).Msg("frame valid")
	return nil
}

func setInFile(path, slotText, value string) error {
	i, err := strconv.Atoi(slotText)
	if err != nil {
		return fmt.Errorf("invalid slot %q: %w", slotText, err)
	}
	f, err := readFrameFile(path)
	if err != nil {
		return err
	}
	if err := applyEdit(f, i, value); err != nil {
		return err
	}
	sv, _ := f.Slot(i)
	log.Info().Int("slot", i).Str("name", sv.Name).Str("display", sv.Display).Msg("slot updated")
	return os.WriteFile(path, f.Bytes(), 0o644)
}

func sendFile(dev *Nova, path string) error {
	f, err := readFrameFile(path)
	if err != nil {
		return err
	}
	return dev.SendFrame(f)
}

func getSystem(ctx context.Context, dev *Nova) error {
	sys, err := dev.RequestSystemDump(ctx)
	if err != nil {
		return fmt.Errorf("failed to read system dump: %w", err)
	}
	return printJSON(describe(sys, false))
}

// bankFile holds the whole user bank as one stream of dumps.
const bankFile = "nova-bank.syx"

func getBank(ctx context.Context, dev *Nova, dir string) error {
	bank, err := dev.RequestUserBank(ctx)
	if err != nil {
		return fmt.Errorf("failed to read user bank: %w", err)
	}
	return saveBank(dir, bank)
}

// saveBank writes one file per preset and the combined bankFile.
func saveBank(dir string, bank *nova.UserBank) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, p := range bank.Patches() {
		recordFrame(nova.KindPatch, nil)
		name := fmt.Sprintf("nova-%s.syx", p.PresetLabel())
		if err := os.WriteFile(filepath.Join(dir, name), p.Bytes(), 0o644); err != nil {
			return err
		}
		log.Info().Str("preset", p.PresetLabel()).Str("name", p.Name()).Msg("saved preset")
	}
	return os.WriteFile(filepath.Join(dir, bankFile), bank.Bytes(), 0o644)
}

// loadBank reads preset dumps from each path, either single presets or a
// saved bank, and files them by preset code.
func loadBank(paths []string) (*nova.UserBank, error) {
	var stream []byte
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		stream = append(stream, data...)
	}
	return nova.ParseUserBank(stream)
}

func sendBank(dev *Nova, paths []string) error {
	bank, err := loadBank(paths)
	if err != nil {
		return err
	}
	if bank.Len() == 0 {
		return fmt.Errorf("no presets to send")
	}
	log.Info().Int("presets", bank.Len()).Msg("sending user presets")
	return dev.SendBank(bank)
}
