package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolTimerStatus = mcp.NewTool("timer_status",
	mcp.WithDescription("Get the current timer session: preset, current step, banked and remaining time, running/muted/keep-awake flags, and the latest advisory."),
)

var toolStartTimer = mcp.NewTool("start_timer",
	mcp.WithDescription("Start or resume the timer session. A no-op while already running or after completion."),
)

var toolPauseTimer = mcp.NewTool("pause_timer",
	mcp.WithDescription("Pause the running session, banking progress into the current step."),
)

var toolResetTimer = mcp.NewTool("reset_timer",
	mcp.WithDescription("Reset the session to the start of the selected preset."),
)

var toolSelectPreset = mcp.NewTool("select_preset",
	mcp.WithDescription("Select a preset by id, discarding the current session. Unknown ids are a no-op."),
	mcp.WithString("preset_id", mcp.Required(), mcp.Description("Preset id from list_presets")),
)

var toolToggleMute = mcp.NewTool("toggle_mute",
	mcp.WithDescription("Toggle audio cues at step boundaries."),
)

var toolListPresets = mcp.NewTool("list_presets",
	mcp.WithDescription("List all interval presets with their ordered steps and durations."),
)

var toolCreatePreset = mcp.NewTool("create_preset",
	mcp.WithDescription("Create a new preset and select it. With base_id, duplicates that preset; without, creates a minimal work/rest pair."),
	mcp.WithString("base_id", mcp.Description("Preset id to duplicate")),
)

// --- Tool handlers ---

func (h *handlers) statusResult() (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.ctrl.Status())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) timerStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.statusResult()
}

func (h *handlers) startTimer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Start()
	return h.statusResult()
}

func (h *handlers) pauseTimer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Pause()
	return h.statusResult()
}

func (h *handlers) resetTimer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.Reset()
	return h.statusResult()
}

func (h *handlers) selectPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("preset_id")
	if err != nil {
		return mcp.NewToolResultError("preset_id parameter is required"), nil
	}
	h.ctrl.SelectPreset(id)
	return h.statusResult()
}

func (h *handlers) toggleMute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ctrl.ToggleMute()
	return h.statusResult()
}

func (h *handlers) listPresets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(h.ctrl.Presets())
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) createPreset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	baseID := req.GetString("base_id", "")
	p, ok := h.ctrl.AddPreset(baseID)
	if !ok {
		return mcp.NewToolResultError("unknown base preset " + baseID), nil
	}
	result, err := mcp.NewToolResultJSON(p)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) timerResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.ctrl.Status())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) presetsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.ctrl.Presets())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
