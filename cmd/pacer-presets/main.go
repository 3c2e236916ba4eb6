package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/pacer/internal/config"
	"github.com/meltforce/pacer/internal/model"
	"github.com/meltforce/pacer/internal/store"
)

// pacer-presets imports interval presets from a YAML file into the state
// store. Presets with a matching id are replaced; the rest are appended.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to preset YAML file (required)")
	dryRun := flag.Bool("dry-run", false, "validate and report without writing to the store")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: pacer-presets -config config.yaml -file presets.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Error("reading preset file", "path", *filePath, "error", err)
		os.Exit(1)
	}
	incoming, err := model.ParsePresetFile(data)
	if err != nil {
		log.Error("invalid preset file", "path", *filePath, "error", err)
		os.Exit(1)
	}
	for _, p := range incoming {
		log.Info("parsed preset", "name", p.Name, "steps", len(p.Steps), "total_ms", p.TotalDurationMs())
	}

	if *dryRun {
		log.Info("dry-run: store untouched", "count", len(incoming))
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Storage.Dir == "" {
		log.Error("storage.dir is not configured; nothing durable to import into")
		os.Exit(1)
	}

	kv, err := store.OpenSQLite(cfg.Storage.Dir)
	if err != nil {
		log.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer kv.Close()

	adapter := store.NewAdapter(kv, log)
	existing, _ := adapter.LoadPresets()
	merged := merge(existing, incoming)
	adapter.SavePresets(merged)
	log.Info("import complete", "imported", len(incoming), "total", len(merged))
}

func merge(existing, incoming []model.IntervalPreset) []model.IntervalPreset {
	out := make([]model.IntervalPreset, len(existing))
	copy(out, existing)
next:
	for _, in := range incoming {
		for i, have := range out {
			if have.ID == in.ID {
				out[i] = in
				continue next
			}
		}
		out = append(out, in)
	}
	return out
}
