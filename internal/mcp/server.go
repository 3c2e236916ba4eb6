// Package mcp exposes the timer engine to assistants over the Model
// Context Protocol: session control and preset browsing as tools, plus
// read-only resources for the live status and preset collection.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/pacer/internal/engine"
	"github.com/meltforce/pacer/internal/model"
)

// Controller abstracts the engine surface the MCP handlers drive.
// *engine.Engine satisfies it.
type Controller interface {
	Status() engine.Status
	Presets() []model.IntervalPreset
	Start()
	Pause()
	Reset()
	SelectPreset(id string)
	ToggleMute()
	AddPreset(baseID string) (model.IntervalPreset, bool)
}

// Compile-time check: *engine.Engine satisfies Controller.
var _ Controller = (*engine.Engine)(nil)

// New creates an MCP server with all tools and resources registered.
func New(ctrl Controller, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Pacer", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Pacer interval workout timer. Inspect and control the running session (start, pause, reset, select preset, mute) and browse the preset collection."),
	)

	h := &handlers{ctrl: ctrl, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolTimerStatus, Handler: h.timerStatus},
		server.ServerTool{Tool: toolStartTimer, Handler: h.startTimer},
		server.ServerTool{Tool: toolPauseTimer, Handler: h.pauseTimer},
		server.ServerTool{Tool: toolResetTimer, Handler: h.resetTimer},
		server.ServerTool{Tool: toolSelectPreset, Handler: h.selectPreset},
		server.ServerTool{Tool: toolToggleMute, Handler: h.toggleMute},
		server.ServerTool{Tool: toolListPresets, Handler: h.listPresets},
		server.ServerTool{Tool: toolCreatePreset, Handler: h.createPreset},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resTimer, Handler: h.timerResource},
		server.ServerResource{Resource: resPresets, Handler: h.presetsResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ctrl Controller
	log  *slog.Logger
}

// --- Resource definitions ---

var resTimer = mcp.NewResource(
	"pacer://timer",
	"Timer Status",
	mcp.WithResourceDescription("Current session: preset, step, progress, remaining time, and the latest advisory"),
	mcp.WithMIMEType("application/json"),
)

var resPresets = mcp.NewResource(
	"pacer://presets",
	"Preset Collection",
	mcp.WithResourceDescription("All interval presets with their ordered steps"),
	mcp.WithMIMEType("application/json"),
)
