package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"graphconv-forge/internal/checkpoint"
	"graphconv-forge/internal/config"
	"graphconv-forge/internal/dataset"
	"graphconv-forge/internal/device"
	"graphconv-forge/internal/graph"
	"graphconv-forge/internal/metrics"
	"graphconv-forge/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Optional YAML or HCL config file")
	fromFlags := config.Default()
	fromFlags.RegisterFlags(flag.CommandLine)

	flag.Parse()

	cfg := fromFlags
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		loaded.ApplyOverrides(config.Overrides{From: fromFlags, Set: set})
		cfg = loaded
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	runID := uuid.New().String()
	log.SetPrefix(fmt.Sprintf("run=%s ", runID[:8]))
	log.Printf("config %+v data=%+v", *cfg, *cfg.Data)

	dev, err := device.Resolve(cfg.GPU)
	if err != nil {
		log.Fatalf("resolve device: %v", err)
	}

	data, err := dataset.Load(*cfg.Data)
	if err != nil {
		log.Fatalf("load dataset: %v", err)
	}

	norm, err := graph.ParseNormalization(cfg.Normalization)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	var rec *metrics.Recorder
	if cfg.MetricsOut != "" {
		rec = metrics.NewRecorder(runID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := trainer.RunConfig{
		Dataset:       data,
		Device:        dev,
		Hidden:        cfg.Hidden,
		Layers:        cfg.Layers,
		Dropout:       cfg.Dropout,
		LearningRate:  cfg.LearningRate,
		WeightDecay:   cfg.WeightDecay,
		Normalization: norm,
		SelfLoop:      cfg.SelfLoop,
		Epochs:        cfg.Epochs,
		LogEvery:      cfg.LogEvery,
		Seed:          cfg.Seed,
		Recorder:      rec,
	}

	res, err := trainer.Run(ctx, runCfg)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if rec != nil {
		if err := rec.WriteTextfile(cfg.MetricsOut); err != nil {
			log.Fatalf("write metrics: %v", err)
		}
		log.Printf("metrics written to %s", cfg.MetricsOut)
	}
	if cfg.Checkpoint != "" {
		if err := checkpoint.SaveFile(cfg.Checkpoint, res.Model.Params()); err != nil {
			log.Fatalf("write checkpoint: %v", err)
		}
		log.Printf("checkpoint written to %s", cfg.Checkpoint)
	}
}
