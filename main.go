package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"novamcp/nova"
)

const usage = `usage: novamcp [-config path] <command> [args]

commands:
  describe <file.syx> [all]     print a frame as JSON
  validate <file.syx>           check signature, checksum and trailer
  set <file.syx> <slot> <value> edit one slot in place
  send <file.syx>               transmit a valid frame
  rename <file.syx> <name>      rename a preset in place
  copy <file.syx> <preset> <out.syx>
                                file a copy of a preset under a user preset
  set-cc <system.syx> <function> <cc|off>
                                assign a controller to a front panel function
  set-program-map <system.syx> in <program> <preset|none>
  set-program-map <system.syx> out <preset> <program>
                                change one program map entry
  set-system <system.syx> "<key>=<value> ..."
                                channel, sysex-id, pc-in, pc-out, clock,
                                pedal-type, pedal=min/mid/max
  send-bank <file.syx>...       transmit user presets in code order
  get-system                    request and print the system dump
  get-bank [dir]                request the user bank and save it as .syx files
  recall <preset>               recall a preset (F0-1..F9-3, 00-1..19-3 or 1..90)
  controls "<name>=<value> ..." send CC messages through the unit's assignments
  mcp                           run the MCP stdio server
  serve                         run the HTTP API
  config-init [path]            write a default config file
`

func main() {
	configFlag := flag.String("config", "", "config file (default $"+configEnv+" or "+defaultConfigPath+")")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 && args[0] == "config-init" {
		path := configPath(*configFlag)
		if len(args) > 1 {
			path = args[1]
		}
		initLogger("novamcp", "info")
		if err := writeTemplate(path, false); err != nil {
			log.Fatal().Err(err).Msg("config-init failed")
		}
		log.Info().Str("path", path).Msg("config written")
		return
	}

	cfg, err := loadConfig(configPath(*configFlag))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := initLogger("novamcp", cfg.Log.Level)
	registerMetrics(cfg.Metrics.Namespace)

	if len(args) == 0 {
		flag.Usage()
		log.Info().Msg("exiting: no command specified")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MIDI.timeout())
	defer cancel()

	switch args[0] {
	case "describe":
		need(args, 2)
		err = describeFile(args[1], len(args) > 2 && args[2] == "all")
	case "validate":
		need(args, 2)
		err = validateFile(args[1])
	case "set":
		need(args, 4)
		err = setInFile(args[1], args[2], args[3])
	case "send":
		need(args, 2)
		dev, closer := mustConnect(cfg)
		defer closer()
		err = sendFile(dev, args[1])
	case "rename":
		need(args, 3)
		err = logEdit(args[1], renameEdit(strings.Join(args[2:], " ")))
	case "copy":
		need(args, 4)
		err = copyFile(args[1], args[2], args[3])
	case "set-cc":
		need(args, 4)
		err = logEdit(args[1], ccEdit(args[2], args[3]))
	case "set-program-map":
		need(args, 5)
		err = logEdit(args[1], programMapEdit(args[2], args[3], args[4]))
	case "set-system":
		need(args, 3)
		err = logEdit(args[1], systemSettingsEdit(strings.Join(args[2:], " ")))
	case "send-bank":
		need(args, 2)
		dev, closer := mustConnect(cfg)
		defer closer()
		err = sendBank(dev, args[1:])
	case "get-system":
		dev, closer := mustConnect(cfg)
		defer closer()
		err = getSystem(ctx, dev)
	case "get-bank":
		dir := "."
		if len(args) > 1 {
			dir = args[1]
		}
		dev, closer := mustConnect(cfg)
		defer closer()
		err = getBank(ctx, dev, dir)
	case "recall":
		need(args, 2)
		dev, closer := mustConnect(cfg)
		defer closer()
		err = recall(ctx, dev, args[1])
	case "controls":
		need(args, 2)
		dev, closer := mustConnect(cfg)
		defer closer()
		err = controls(ctx, dev, strings.Join(args[1:], " "))
	case "mcp":
		// The server still answers codec tools without a unit attached.
		dev, closer, connErr := connect(cfg)
		if connErr != nil {
			log.Warn().Err(connErr).Msg("no Nova System found, device tools disabled")
		} else {
			defer closer()
		}
		err = runMCP(dev, cfg)
	case "serve":
		err = serve(cfg, logger)
	default:
		flag.Usage()
		log.Fatal().Str("command", args[0]).Msg("unknown command")
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("command failed")
	}
}

func need(args []string, n int) {
	if len(args) < n {
		flag.Usage()
		log.Fatal().Str("command", args[0]).Msg("missing arguments")
	}
}

// connect opens the first ports whose names contain the configured hint.
func connect(cfg Config) (*Nova, func(), error) {
	log.Debug().Str("outputs", midi.GetOutPorts().String()).Msg("available MIDI outputs")

	outIdx, err := findOutPort(cfg.MIDI.PortHint)
	if err != nil {
		return nil, nil, fmt.Errorf("could not find Nova System MIDI out port: %w", err)
	}
	inIdx, err := findInPort(cfg.MIDI.PortHint)
	if err != nil {
		return nil, nil, fmt.Errorf("could not find Nova System MIDI in port: %w", err)
	}
	return OpenNova(byte(cfg.MIDI.DeviceID), uint8(cfg.MIDI.Channel), outIdx, inIdx)
}

func mustConnect(cfg Config) (*Nova, func()) {
	dev, closer, err := connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open Nova System")
	}
	return dev, closer
}

func findOutPort(nameFragment string) (int, error) {
	outs := midi.GetOutPorts()
	if len(outs) == 0 {
		return -1, fmt.Errorf("no MIDI outputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, out := range outs {
		if strings.Contains(strings.ToLower(out.String()), lower) {
			return out.Number(), nil
		}
	}

	return -1, fmt.Errorf("no MIDI output contains %q", nameFragment)
}

func findInPort(nameFragment string) (int, error) {
	ins := midi.GetInPorts()
	if len(ins) == 0 {
		return -1, fmt.Errorf("no MIDI inputs available")
	}

	lower := strings.ToLower(nameFragment)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			return in.Number(), nil
		}
	}

	return -1, fmt.Errorf("no MIDI input contains %q", nameFragment)
}

// recall sends the program change that the unit maps to the preset. The
// system dump is read first so a custom program map is honoured; when it
// cannot be read the default map is used.
func recall(ctx context.Context, dev *Nova, token string) error {
	code, err := parsePresetToken(token)
	if err != nil {
		return err
	}
	sys, err := dev.RequestSystemDump(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("system dump unavailable, assuming default program map")
	}
	program, err := programFor(code, sys)
	if err != nil {
		return err
	}
	log.Info().Str("preset", nova.MapLabel(code)).Int("program", int(program)+1).Msg("recalling preset")
	return dev.RecallPreset(program)
}

func controls(ctx context.Context, dev *Nova, text string) error {
	sys, err := dev.RequestSystemDump(ctx)
	if err != nil {
		return fmt.Errorf("CC assignments unavailable: %w", err)
	}
	settings, err := parseControls(text, sys.CCMappings())
	if err != nil {
		return err
	}
	return sendControls(dev, settings)
}
