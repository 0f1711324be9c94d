package pipeline

import (
	"fmt"
	"time"

	"tldreel-pipeline/avatar"
	"tldreel-pipeline/compose"
	"tldreel-pipeline/config"
	"tldreel-pipeline/explainer"
	"tldreel-pipeline/llm"
	"tldreel-pipeline/narration"
	"tldreel-pipeline/storyboard"
)

// FromConfig assembles a Pipeline from configuration: storyboard builder,
// avatar protocol and explainer strategy are all selected here so the
// orchestrator itself stays agnostic. API keys are read-only inputs.
func FromConfig(cfg *config.Config, openaiKey, elevenLabsKey string) (*Pipeline, error) {
	var builder storyboard.Builder
	if cfg.Storyboard.Fixed {
		builder = storyboard.NewFixedBuilder()
	} else {
		builder = storyboard.NewLLMBuilder(llm.New(openaiKey, cfg.Storyboard.Model), cfg.Storyboard.SceneCount)
	}

	synth := narration.New(cfg.Narration, elevenLabsKey)

	var avatarRenderer AvatarRenderer
	switch cfg.Avatar.Protocol {
	case "sync":
		avatarRenderer = avatar.NewSyncRenderer(cfg.Avatar)
	case "async":
		jobs := avatar.NewQueueClient(cfg.Avatar.QueueEndpoint, cfg.Avatar.SourceVideoURL, cfg.Avatar.SubmitTimeout())
		avatarRenderer = avatar.NewAsyncRenderer(jobs, cfg.Avatar.MaxWait(), cfg.Avatar.PollInterval())
	default:
		return nil, fmt.Errorf("unknown avatar protocol %q", cfg.Avatar.Protocol)
	}

	var explainerRenderer ExplainerRenderer
	switch cfg.Explainer.Strategy {
	case "local":
		explainerRenderer = explainer.NewLocalRenderer(llm.New(openaiKey, cfg.Explainer.Model), cfg.Explainer.Quality)
	case "remote":
		explainerRenderer = explainer.NewRemoteRenderer(cfg.Explainer.RemoteEndpoint, time.Duration(cfg.Explainer.TimeoutSec)*time.Second)
	default:
		return nil, fmt.Errorf("unknown explainer strategy %q", cfg.Explainer.Strategy)
	}

	return New(
		cfg.Pipeline,
		builder,
		synth,
		avatarRenderer,
		explainerRenderer,
		compose.NewComposer(cfg.Compose.Width, cfg.Compose.Height),
		compose.NewAssembler(),
	), nil
}
