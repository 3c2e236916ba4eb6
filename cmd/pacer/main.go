package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/meltforce/pacer/internal/config"
	"github.com/meltforce/pacer/internal/engine"
	"github.com/meltforce/pacer/internal/mcp"
	"github.com/meltforce/pacer/internal/model"
	"github.com/meltforce/pacer/internal/platform"
	"github.com/meltforce/pacer/internal/server"
	"github.com/meltforce/pacer/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	mcpStdio := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("Pacer starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Open the state store — SQLite when a directory is configured,
	// in-memory otherwise.
	var kv store.KV
	if cfg.Storage.Dir != "" {
		sq, err := store.OpenSQLite(cfg.Storage.Dir)
		if err != nil {
			log.Error("failed to open state store", "error", err)
			os.Exit(1)
		}
		kv = sq
		log.Info("state store opened", "dir", cfg.Storage.Dir)
	} else {
		kv = store.NewMemory()
		log.Info("no storage.dir configured, state is in-memory only")
	}
	defer kv.Close()

	adapter := store.NewAdapter(kv, log)

	// Seed presets from file on an empty store.
	if cfg.Timer.PresetsPath != "" {
		if _, ok := adapter.LoadPresets(); !ok {
			seedPresets(adapter, cfg.Timer.PresetsPath, log)
		}
	}

	// Create engine
	eng := engine.New(engine.Options{
		Store:        adapter,
		Audio:        platform.LogAudio{Log: log},
		WakeLock:     platform.LogWakeLock{Log: log},
		TickInterval: time.Duration(cfg.Timer.TickIntervalMs) * time.Millisecond,
		Log:          log,
	})
	defer eng.Close()

	if *mcpStdio {
		log.Info("serving MCP over stdio")
		if err := mcpserver.ServeStdio(mcp.New(eng, Version, log)); err != nil {
			log.Error("mcp server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Create HTTP control server
	srv := server.New(eng, cfg.Auth.APIKey, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("control server starting", "addr", addr)

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// seedPresets loads a YAML preset file into an empty store. A broken seed
// file is logged and skipped; the engine falls back to the built-ins.
func seedPresets(adapter *store.Adapter, path string, log *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("reading preset seed file", "path", path, "error", err)
		return
	}
	presets, err := model.ParsePresetFile(data)
	if err != nil {
		log.Warn("parsing preset seed file", "path", path, "error", err)
		return
	}
	adapter.SavePresets(presets)
	log.Info("seeded presets", "path", path, "count", len(presets))
}
