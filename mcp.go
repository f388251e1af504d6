package main

import (
	"context"
	"encoding/json"
	"fmt"

	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"novamcp/nova"
)

func runMCP(dev *Nova, cfg Config) error {

	s := server.NewMCPServer(
		"Nova System MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	docTool := mcp.NewTool("nova_describe-format",
		mcp.WithDescription("Returns the SysEx dump format of the TC Electronic Nova System."),
	)
	s.AddTool(docTool, docToolHandler)

	describeTool := mcp.NewTool("nova_describe-frame",
		mcp.WithDescription("Decodes a preset or system dump and lists its parameters grouped by effect block."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The dump as hex bytes, starting with F0 and ending with F7.")),
		mcp.WithBoolean("all", mcp.Description("Also list every raw slot.")),
	)
	s.AddTool(describeTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log.Debug().Str("tool", "describe-frame").Msg("[mcp] handling request")

		f, err := frameArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(describe(f, request.GetBool("all", false)))
	})

	validateTool := mcp.NewTool("nova_validate-frame",
		mcp.WithDescription("Checks the signature, trailer and checksum of a dump."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The dump as hex bytes.")),
	)
	s.AddTool(validateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		f, err := frameArg(request)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := f.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Valid %s dump, checksum 0x%02X.", f.Kind(), f.Checksum())), nil
	})

	setTool := mcp.NewTool("nova_set-parameter",
		mcp.WithDescription("Changes one slot of a dump and returns the updated dump with a fresh checksum."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The dump as hex bytes.")),
		mcp.WithNumber("slot", mcp.Required(), mcp.Description("The slot index (0-120 for presets, 0-128 for the system dump).")),
		mcp.WithString("value", mcp.Required(), mcp.Description("The display value (e.g. \"1.00k\", \"On\") or a raw number.")),
	)
	s.AddTool(setTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		slot, err := request.RequireInt("slot")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value, err := request.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		rep, err := editFrame(hexFrame, slot, value)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(rep)
	})

	renameTool := mcp.NewTool("nova_rename-preset",
		mcp.WithDescription("Renames a preset dump. Names are cut to 24 characters and non-ASCII characters become '?'."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The preset dump as hex bytes.")),
		mcp.WithString("name", mcp.Required(), mcp.Description("The new preset name.")),
	)
	s.AddTool(renameTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return editResult(editHexFrame(hexFrame, renameEdit(name)))
	})

	copyTool := mcp.NewTool("nova_copy-preset",
		mcp.WithDescription("Files a copy of a preset dump under another user preset so it can be sent to that location."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The preset dump as hex bytes.")),
		mcp.WithString("preset", mcp.Required(), mcp.Description("The target user preset, 00-1..19-3 or a code 31-90.")),
	)
	s.AddTool(copyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		preset, err := request.RequireString("preset")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, err := copyHex(hexFrame, preset)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(hexReport(p))
	})

	ccTool := mcp.NewTool("nova_set-cc",
		mcp.WithDescription("Assigns a MIDI controller to a front panel function in a system dump."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The system dump as hex bytes.")),
		mcp.WithString("function", mcp.Required(), mcp.Description("Tap Tempo, Drive, Compressor, Noise Gate, EQ, Boost, Modulation, Pitch, Delay, Reverb or Expression.")),
		mcp.WithString("cc", mcp.Required(), mcp.Description("The controller number 0-127 or \"off\".")),
	)
	s.AddTool(ccTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		function, err := request.RequireString("function")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cc, err := request.RequireString("cc")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return editResult(editHexFrame(hexFrame, ccEdit(function, cc)))
	})

	mapTool := mcp.NewTool("nova_set-program-map",
		mcp.WithDescription("Changes one program map entry of a system dump."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The system dump as hex bytes.")),
		mcp.WithString("direction", mcp.Required(), mcp.Description("\"in\" maps a received program to a preset, \"out\" maps a user preset to the program it sends.")),
		mcp.WithString("from", mcp.Required(), mcp.Description("For in the program 1-127, for out the user preset.")),
		mcp.WithString("to", mcp.Required(), mcp.Description("For in a preset or \"none\", for out the program 0-127.")),
	)
	s.AddTool(mapTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		direction, err := request.RequireString("direction")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		from, err := request.RequireString("from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := request.RequireString("to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return editResult(editHexFrame(hexFrame, programMapEdit(direction, from, to)))
	})

	systemSetTool := mcp.NewTool("nova_set-system",
		mcp.WithDescription("Changes MIDI and pedal settings of a system dump."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("The system dump as hex bytes.")),
		mcp.WithString("settings", mcp.Required(), mcp.Description("key=value pairs: channel (1-16, omni, off), sysex-id (0-126, all), pc-in, pc-out, clock (on/off), pedal-type, pedal=min/mid/max.")),
	)
	s.AddTool(systemSetTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrame, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		settings, err := request.RequireString("settings")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return editResult(editHexFrame(hexFrame, systemSettingsEdit(settings)))
	})

	layoutTool := mcp.NewTool("nova_layout",
		mcp.WithDescription("Lists the active parameters of an effect block for one type value."),
		mcp.WithString("block", mcp.Required(), mcp.Description("global, compressor, drive, boost, modulation, delay, reverb, eq, gate or pitch.")),
		mcp.WithNumber("mode", mcp.Description("The block's type value. Ignored for blocks without one.")),
	)
	s.AddTool(layoutTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		block, err := request.RequireString("block")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		lay, err := nova.Dispatch(nova.Block(block), request.GetInt("mode", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(lay)
	})

	valuesTool := mcp.NewTool("nova_list-values",
		mcp.WithDescription("Lists the display values a parameter type accepts with their raw numbers."),
		mcp.WithString("type", mcp.Required(), mcp.Description("The type name (e.g. \"hi cut\", \"reverb type\") or id.")),
	)
	s.AddTool(valuesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rep, err := describeType(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(rep)
	})

	systemTool := mcp.NewTool("nova_get-system-dump",
		mcp.WithDescription("Reads the system settings from the connected Nova System."),
	)
	s.AddTool(systemTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, cancel := context.WithTimeout(ctx, cfg.MIDI.timeout())
		defer cancel()

		sys, err := dev.RequestSystemDump(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read system dump: %v", err)), nil
		}
		return jsonResult(hexReport(sys))
	})

	recallTool := mcp.NewTool("nova_recall-preset",
		mcp.WithDescription("Recalls a preset on the connected Nova System by program change."),
		mcp.WithString("preset", mcp.Required(), mcp.Description("F0-1..F9-3, 00-1..19-3 or a preset code 1-90.")),
	)
	s.AddTool(recallTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		preset, err := request.RequireString("preset")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ctx, cancel := context.WithTimeout(ctx, cfg.MIDI.timeout())
		defer cancel()

		if err := recall(ctx, dev, preset); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("Preset recalled."), nil
	})

	bankTool := mcp.NewTool("nova_send-bank",
		mcp.WithDescription("Sends user preset dumps to the connected Nova System in preset order."),
		mcp.WithString("hex", mcp.Required(), mcp.Description("One or more concatenated user preset dumps as hex bytes.")),
	)
	s.AddTool(bankTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		hexFrames, err := request.RequireString("hex")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := decodeHex(hexFrames)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		bank, err := nova.ParseUserBank(b)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if bank.Len() == 0 {
			return mcp.NewToolResultError("no presets to send"), nil
		}
		if err := dev.SendBank(bank); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Sent %d presets.", bank.Len())), nil
	})

	log.Info().Msg("starting Nova System MCP server")
	return server.ServeStdio(s)
}

//go:embed nova_sysex_format.txt
var sysexDoc string

func docToolHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Debug().Str("tool", "describe-format").Msg("[mcp] handling request")

	return mcp.NewToolResultText(sysexDoc), nil
}

func frameArg(request mcp.CallToolRequest) (nova.Frame, error) {
	hexFrame, err := request.RequireString("hex")
	if err != nil {
		return nil, err
	}
	b, err := decodeHex(hexFrame)
	if err != nil {
		return nil, err
	}
	return parseFrame(b)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	asJson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func editResult(f nova.Frame, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hexReport(f))
}
