package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"novamcp/nova"
)

// sysExBufferSize fits the largest single dump with room to spare.
const sysExBufferSize = 4096

var errNoDevice = errors.New("no Nova System connected")

// Nova is an open connection to the unit.
type Nova struct {
	devID   byte
	channel uint8
	out     drivers.Out
	in      drivers.In
}

// OpenNova opens the output port at outIndex. The input port is opened by
// the listener when a dump is requested.
func OpenNova(devID byte, channel uint8, outIndex, inIndex int) (*Nova, func(), error) {
	outs, err := drivers.Outs()
	if err != nil {
		return nil, nil, err
	}
	if outIndex < 0 || outIndex >= len(outs) {
		return nil, nil, fmt.Errorf("output port index %d out of range", outIndex)
	}
	ins, err := drivers.Ins()
	if err != nil {
		return nil, nil, err
	}
	if inIndex < 0 || inIndex >= len(ins) {
		return nil, nil, fmt.Errorf("input port index %d out of range", inIndex)
	}

	out := outs[outIndex]
	if err := out.Open(); err != nil {
		return nil, nil, err
	}

	closer := func() {
		_ = out.Close()
		drivers.Close()
	}
	log.Info().
		Str("out", out.String()).
		Str("in", ins[inIndex].String()).
		Uint8("device_id", devID).
		Msg("opened Nova System ports")
	return &Nova{devID: devID, channel: channel, out: out, in: ins[inIndex]}, closer, nil
}

// Send transmits a MIDI message to the unit.
func (n *Nova) Send(msg midi.Message) error {
	if n == nil {
		return errNoDevice
	}
	if !n.out.IsOpen() {
		if err := n.out.Open(); err != nil {
			return err
		}
	}
	return n.out.Send(msg.Bytes())
}

func (n *Nova) SendSysEx(data []byte) error {
	return n.Send(midi.Message(data))
}

// SendFrame transmits a frame. Frames that fail validation are refused.
func (n *Nova) SendFrame(f nova.Frame) error {
	if err := f.Validate(); err != nil {
		recordDeviceRequest("send_"+f.Kind().String(), err)
		return fmt.Errorf("refusing to send %s frame: %w", f.Kind(), err)
	}
	data := f.Bytes()
	dumpBytes(data, "sent")
	err := n.SendSysEx(data)
	recordDeviceRequest("send_"+f.Kind().String(), err)
	return err
}

// SendBank transmits the presets of bank in code order and stops at the
// first failure.
func (n *Nova) SendBank(bank *nova.UserBank) error {
	if n == nil {
		return errNoDevice
	}
	for _, p := range bank.Patches() {
		if err := n.SendFrame(p); err != nil {
			return fmt.Errorf("preset %s: %w", p.PresetLabel(), err)
		}
	}
	return nil
}

// RequestSystemDump asks for the system dump and waits for it until ctx is
// done.
func (n *Nova) RequestSystemDump(ctx context.Context) (*nova.SystemDump, error) {
	if n == nil {
		return nil, errNoDevice
	}
	msgs, err := n.collect(ctx, nova.SystemDumpRequest(n.devID), nova.KindSystemDump, 1)
	recordDeviceRequest("system_dump", err)
	if err != nil {
		return nil, err
	}
	sys, err := nova.ParseSystemDump(msgs[0])
	if err != nil {
		return nil, err
	}
	verr := sys.Validate()
	recordFrame(nova.KindSystemDump, verr)
	if verr != nil {
		return nil, fmt.Errorf("received system dump: %w", verr)
	}
	return sys, nil
}

// RequestUserBank asks for the 60 user presets and waits for all of them
// until ctx is done.
func (n *Nova) RequestUserBank(ctx context.Context) (*nova.UserBank, error) {
	if n == nil {
		return nil, errNoDevice
	}
	msgs, err := n.collect(ctx, nova.UserBankRequest(), nova.KindPatch, nova.UserBankSize)
	recordDeviceRequest("user_bank", err)
	if err != nil {
		return nil, err
	}
	var stream []byte
	for _, m := range msgs {
		stream = append(stream, m...)
	}
	return nova.ParseUserBank(stream)
}

// collect sends req and gathers want dumps of kind.
func (n *Nova) collect(ctx context.Context, req []byte, kind nova.Kind, want int) ([][]byte, error) {
	msgCh := make(chan []byte, want)

	stop, err := midi.ListenTo(n.in, func(msg midi.Message, _ int32) {
		if !nova.IsDumpStart(msg, kind) {
			return
		}
		buf := make([]byte, len(msg))
		copy(buf, msg)
		select {
		case msgCh <- buf:
		default:
		}
	}, midi.UseSysEx(), midi.SysExBufferSize(sysExBufferSize))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for %s dump: %w", kind, err)
	}
	defer stop()

	log.Debug().Uint8("device_id", n.devID).Str("kind", kind.String()).Msg("requesting dump")
	if err := n.SendSysEx(req); err != nil {
		return nil, fmt.Errorf("failed to request %s dump: %w", kind, err)
	}

	out := make([][]byte, 0, want)
	for len(out) < want {
		select {
		case msg := <-msgCh:
			dumpBytes(msg, "received")
			out = append(out, msg)
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s dump (%d of %d received): %w", kind, len(out), want, ctx.Err())
		}
	}
	return out, nil
}

// RecallPreset selects a preset by program change.
func (n *Nova) RecallPreset(program uint8) error {
	if n == nil {
		return errNoDevice
	}
	err := n.Send(midi.ProgramChange(n.channel, program))
	recordDeviceRequest("program_change", err)
	return err
}

// SendControl sends one controller change on the configured channel.
func (n *Nova) SendControl(controller, value uint8) error {
	if n == nil {
		return errNoDevice
	}
	return n.Send(midi.ControlChange(n.channel, controller, value))
}

func dumpBytes(data []byte, direction string) {
	log.Debug().
		Str("direction", direction).
		Int("len", len(data)).
		Str("hex", hex.EncodeToString(data)).
		Msg("sysex")
}
