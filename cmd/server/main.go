package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/godlykids/radio-engine/config"
	"github.com/godlykids/radio-engine/internal/broadcast"
	"github.com/godlykids/radio-engine/internal/cache"
	"github.com/godlykids/radio-engine/internal/script"
	"github.com/godlykids/radio-engine/internal/segments"
	"github.com/godlykids/radio-engine/internal/server"
	"github.com/godlykids/radio-engine/internal/speech"
	"github.com/godlykids/radio-engine/internal/storage"
)

func main() {
	port := flag.String("port", "", "Server port (overrides config)")
	configPath := flag.String("config", "./config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// Audio storage
	var audioStore storage.AudioStore
	switch cfg.Storage.Type {
	case "memory":
		audioStore = storage.NewMemoryStore()
	default:
		gcs, err := storage.NewGCSStorage(ctx, cfg.Storage.Bucket, cfg.Storage.ObjectPrefix,
			cfg.Storage.PublicBaseURL, cfg.Storage.CredentialsFile)
		if err != nil {
			slog.Error("Failed to initialize GCS storage", "error", err)
			os.Exit(1)
		}
		defer gcs.Close()
		audioStore = gcs
	}

	// Segment database
	store, err := segments.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		slog.Error("Failed to open segment store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Speech backends. Tier 1 is optional; without credentials the
	// synthesizer goes straight to Tier 2.
	var tier1 speech.Tier1Backend
	if cfg.Generator.SpeechCredentialsFile != "" {
		gemini, err := speech.NewGeminiTTSClient(ctx, cfg.Generator.SpeechCredentialsFile, cfg.Generator.SpeechModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini TTS", "error", err)
			os.Exit(1)
		}
		tier1 = gemini
	} else {
		slog.Warn("No speech credentials configured, Tier-1 synthesis disabled")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	synth := speech.NewSynthesizer(tier1, speech.NewCloudTTSClient(), audioStore, speech.NewVoicePicker(rng))

	composer := script.NewComposer(script.NewGeminiClient(cfg.Generator.TextModel))
	generator := broadcast.NewGenerator(composer, synth, cache.NewIntroCache())
	assembler := broadcast.NewAssembler(rng)

	// Create and start server
	srv := server.New(cfg, store, assembler, generator)

	listenPort := cfg.Server.Port
	if *port != "" {
		listenPort = *port
	}

	slog.Info("Starting radio engine API server", "port", listenPort)
	if err := srv.Start(listenPort); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
