package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"tldreel-pipeline/config"
	"tldreel-pipeline/content"
	"tldreel-pipeline/llm"
	"tldreel-pipeline/pipeline"
	"tldreel-pipeline/server"
	"tldreel-pipeline/storage"
	"tldreel-pipeline/store"
)

func main() {
	_ = godotenv.Load()

	configFlag := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	openaiKey := os.Getenv("OPENAI_API_KEY")

	p, err := pipeline.FromConfig(cfg, openaiKey, os.Getenv("ELEVENLABS_API_KEY"))
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	reelStorage, err := storage.FromConfig(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to build storage: %v", err)
	}

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	contentService := content.NewService(llm.New(openaiKey, cfg.Content.Model), cfg.Content.MaxInputLen)

	srv := server.New(contentService, p, st, reelStorage)
	log.Printf("🚀 reeld listening on %s", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Router()); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
