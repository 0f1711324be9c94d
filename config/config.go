package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storyboard StoryboardConfig `yaml:"storyboard"`
	Narration  NarrationConfig  `yaml:"narration"`
	Avatar     AvatarConfig     `yaml:"avatar"`
	Explainer  ExplainerConfig  `yaml:"explainer"`
	Compose    ComposeConfig    `yaml:"compose"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Content    ContentConfig    `yaml:"content"`
	Storage    StorageConfig    `yaml:"storage"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
}

type StoryboardConfig struct {
	Model      string `yaml:"model"`
	SceneCount int    `yaml:"scene_count"`
	Fixed      bool   `yaml:"fixed"`
}

type NarrationConfig struct {
	Endpoint        string  `yaml:"endpoint"`
	VoiceID         string  `yaml:"voice_id"`
	ModelID         string  `yaml:"model_id"`
	OutputFormat    string  `yaml:"output_format"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	Style           float64 `yaml:"style"`
	SpeakerBoost    bool    `yaml:"speaker_boost"`
	TimeoutSec      int     `yaml:"timeout_sec"`
}

type AvatarConfig struct {
	Protocol          string `yaml:"protocol"` // sync | async
	PredictEndpoint   string `yaml:"predict_endpoint"`
	ReferenceImageURL string `yaml:"reference_image_url"`
	AnimationMode     string `yaml:"animation_mode"`
	QueueEndpoint     string `yaml:"queue_endpoint"`
	SourceVideoURL    string `yaml:"source_video_url"`
	SubmitTimeoutSec  int    `yaml:"submit_timeout_sec"`
	MaxWaitSec        int    `yaml:"max_wait_sec"`
	PollIntervalSec   int    `yaml:"poll_interval_sec"`
}

type ExplainerConfig struct {
	Strategy       string `yaml:"strategy"` // local | remote
	Model          string `yaml:"model"`
	Quality        string `yaml:"quality"`
	RemoteEndpoint string `yaml:"remote_endpoint"`
	TimeoutSec     int    `yaml:"timeout_sec"`
}

type ComposeConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type PipelineConfig struct {
	OutputDir        string `yaml:"output_dir"`
	SceneParallelism int    `yaml:"scene_parallelism"`
}

type ContentConfig struct {
	Model       string `yaml:"model"`
	MaxInputLen int    `yaml:"max_input_len"`
}

type StorageConfig struct {
	Provider string   `yaml:"provider"` // local | s3
	LocalDir string   `yaml:"local_dir"`
	S3       S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	UseSSL   bool   `yaml:"use_ssl"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML config file and fills in defaults for anything unset
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied, no file needed
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storyboard.Model == "" {
		c.Storyboard.Model = "gpt-4o-mini"
	}
	if c.Storyboard.SceneCount == 0 {
		c.Storyboard.SceneCount = 3
	}
	if c.Narration.Endpoint == "" {
		c.Narration.Endpoint = "https://api.elevenlabs.io"
	}
	if c.Narration.VoiceID == "" {
		c.Narration.VoiceID = "pNInz6obpgDQGcFmaJgB"
	}
	if c.Narration.ModelID == "" {
		c.Narration.ModelID = "eleven_turbo_v2_5"
	}
	if c.Narration.OutputFormat == "" {
		c.Narration.OutputFormat = "mp3_22050_32"
	}
	if c.Narration.SimilarityBoost == 0 {
		c.Narration.SimilarityBoost = 1.0
	}
	if c.Narration.TimeoutSec == 0 {
		c.Narration.TimeoutSec = 60
	}
	if c.Avatar.Protocol == "" {
		c.Avatar.Protocol = "async"
	}
	if c.Avatar.AnimationMode == "" {
		c.Avatar.AnimationMode = "human"
	}
	if c.Avatar.SubmitTimeoutSec == 0 {
		c.Avatar.SubmitTimeoutSec = 30
	}
	if c.Avatar.MaxWaitSec == 0 {
		c.Avatar.MaxWaitSec = 300
	}
	if c.Avatar.PollIntervalSec == 0 {
		c.Avatar.PollIntervalSec = 5
	}
	if c.Explainer.Strategy == "" {
		c.Explainer.Strategy = "remote"
	}
	if c.Explainer.Model == "" {
		c.Explainer.Model = "gpt-4o-mini"
	}
	if c.Explainer.Quality == "" {
		c.Explainer.Quality = "-ql"
	}
	if c.Explainer.TimeoutSec == 0 {
		c.Explainer.TimeoutSec = 300
	}
	if c.Compose.Width == 0 {
		c.Compose.Width = 1280
	}
	if c.Compose.Height == 0 {
		c.Compose.Height = 720
	}
	if c.Pipeline.OutputDir == "" {
		c.Pipeline.OutputDir = "output"
	}
	if c.Pipeline.SceneParallelism == 0 {
		c.Pipeline.SceneParallelism = 1
	}
	if c.Content.Model == "" {
		c.Content.Model = "gpt-4o-mini"
	}
	if c.Content.MaxInputLen == 0 {
		c.Content.MaxInputLen = 300
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "local"
	}
	if c.Storage.LocalDir == "" {
		c.Storage.LocalDir = "uploads"
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = "us-east-1"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/tldreel.db"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// SubmitTimeout is the bounded wait for synchronous avatar submission
func (a AvatarConfig) SubmitTimeout() time.Duration {
	return time.Duration(a.SubmitTimeoutSec) * time.Second
}

// MaxWait is the overall wall-clock bound on async avatar polling
func (a AvatarConfig) MaxWait() time.Duration {
	return time.Duration(a.MaxWaitSec) * time.Second
}

// PollInterval is the fixed delay between async job status checks
func (a AvatarConfig) PollInterval() time.Duration {
	return time.Duration(a.PollIntervalSec) * time.Second
}
