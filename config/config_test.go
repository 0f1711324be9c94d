package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
avatar:
  protocol: sync
  predict_endpoint: https://example.com/predict
pipeline:
  scene_parallelism: 2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Avatar.Protocol != "sync" {
		t.Errorf("protocol = %q", cfg.Avatar.Protocol)
	}
	if cfg.Pipeline.SceneParallelism != 2 {
		t.Errorf("parallelism = %d", cfg.Pipeline.SceneParallelism)
	}

	// Everything unset falls back to defaults.
	if cfg.Avatar.MaxWait() != 300*time.Second {
		t.Errorf("max wait = %v", cfg.Avatar.MaxWait())
	}
	if cfg.Avatar.PollInterval() != 5*time.Second {
		t.Errorf("poll interval = %v", cfg.Avatar.PollInterval())
	}
	if cfg.Compose.Width != 1280 || cfg.Compose.Height != 720 {
		t.Errorf("frame = %dx%d", cfg.Compose.Width, cfg.Compose.Height)
	}
	if cfg.Narration.VoiceID == "" || cfg.Narration.ModelID == "" {
		t.Errorf("narration defaults missing: %+v", cfg.Narration)
	}
	if cfg.Explainer.Strategy != "remote" {
		t.Errorf("explainer strategy = %q", cfg.Explainer.Strategy)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("avatar: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Fatalf("err = %v, want os.IsNotExist", err)
	}
}
