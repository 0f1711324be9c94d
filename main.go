package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"tldreel-pipeline/config"
	"tldreel-pipeline/pipeline"
	"tldreel-pipeline/storage"
	"tldreel-pipeline/types"
)

func main() {
	// Load .env (local dev only — deployments use real env vars)
	_ = godotenv.Load()

	topicFlag := flag.String("topic", "", "topic to generate a reel for")
	configFlag := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if *topicFlag == "" {
		log.Fatal("usage: tldreel -topic \"Photosynthesis\"")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	p, err := pipeline.FromConfig(cfg, os.Getenv("OPENAI_API_KEY"), os.Getenv("ELEVENLABS_API_KEY"))
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	reelStorage, err := storage.FromConfig(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to build storage: %v", err)
	}

	log.Printf("🎬 TLDReel pipeline starting — topic: %q", *topicFlag)

	ctx := context.Background()
	state := &types.PipelineState{
		StartedAt: time.Now().UTC().Format(time.RFC3339),
		Topic:     *topicFlag,
	}

	reelPath, err := p.CreateFinalReel(ctx, *topicFlag)
	state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		state.Error = err.Error()
		saveState(cfg.Pipeline.OutputDir, state)
		log.Fatalf("❌ Pipeline failed: %v", err)
	}
	state.ReelFile = reelPath

	location, err := reelStorage.Save(ctx, reelPath, filepath.Base(reelPath))
	if err != nil {
		log.Printf("⚠️  Could not move reel to storage: %v — reel kept at %s", err, reelPath)
		location = reelPath
	}
	state.ReelFile = location
	saveState(cfg.Pipeline.OutputDir, state)

	log.Printf("✅ Final reel ready: %s", location)
}

func saveState(dir string, state *types.PipelineState) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: could not create output dir: %v", err)
		return
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal pipeline state: %v", err)
		return
	}
	path := filepath.Join(dir, "pipeline_state.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
