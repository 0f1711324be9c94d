package storyboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tldreel-pipeline/llm"
	"tldreel-pipeline/types"
)

// ErrMalformedStoryboard is returned when the generation backend's response
// does not parse into a valid storyboard.
var ErrMalformedStoryboard = errors.New("malformed storyboard")

// Builder turns a topic into an ordered storyboard
type Builder interface {
	Build(ctx context.Context, topic string) (*types.Storyboard, error)
}

const storyboardPrompt = `You are an educational video storyboard writer.
Create a storyboard of exactly %d scenes for a short vertical "reel" video explaining: %s

Respond with ONLY valid JSON, no markdown, no explanation, in this format:
{"scenes": [{"id": "scene1", "narration": "words to speak aloud, 1-3 sentences", "visual_prompt": "prompt for an animated explainer visual", "optional_image_prompt": null}]}

Rules:
- scene ids must be unique ("scene1", "scene2", ...)
- narration and visual_prompt must be non-empty for every scene
- first scene introduces the topic, last scene summarizes the takeaways`

// LLMBuilder generates storyboards through a text-generation backend
type LLMBuilder struct {
	completer  llm.Completer
	sceneCount int
}

// NewLLMBuilder creates a Builder backed by the given completer
func NewLLMBuilder(completer llm.Completer, sceneCount int) *LLMBuilder {
	if sceneCount < 1 {
		sceneCount = 3
	}
	return &LLMBuilder{completer: completer, sceneCount: sceneCount}
}

// Build asks the backend for a scene list and validates it against the
// storyboard schema. No retries; the caller decides retry policy.
func (b *LLMBuilder) Build(ctx context.Context, topic string) (*types.Storyboard, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}

	raw, err := b.completer.CompleteJSON(ctx, fmt.Sprintf(storyboardPrompt, b.sceneCount, topic))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStoryboard, err)
	}

	var parsed struct {
		Scenes []types.Scene `json:"scenes"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrMalformedStoryboard, err)
	}

	sb := &types.Storyboard{Topic: topic, Scenes: parsed.Scenes}
	if err := Validate(sb); err != nil {
		return nil, err
	}
	return sb, nil
}

// FixedBuilder produces a deterministic three-scene storyboard straight
// from the topic, with no backend call. Used for offline runs.
type FixedBuilder struct{}

func NewFixedBuilder() *FixedBuilder {
	return &FixedBuilder{}
}

func (b *FixedBuilder) Build(_ context.Context, topic string) (*types.Storyboard, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}
	return &types.Storyboard{
		Topic: topic,
		Scenes: []types.Scene{
			{
				ID:           "scene1",
				Narration:    fmt.Sprintf("Introduction to %s. Explaining the basics.", topic),
				VisualPrompt: fmt.Sprintf("Create an animation that visually explains the basic principles of %s.", topic),
			},
			{
				ID:           "scene2",
				Narration:    fmt.Sprintf("Deep dive into %s. Discussing detailed aspects.", topic),
				VisualPrompt: fmt.Sprintf("Generate an animation showing the dynamic behavior of %s.", topic),
			},
			{
				ID:           "scene3",
				Narration:    fmt.Sprintf("Conclusion on %s. Summarize the key takeaways.", topic),
				VisualPrompt: fmt.Sprintf("Create a summary animation for %s.", topic),
			},
		},
	}, nil
}

// Validate checks the storyboard invariants: at least one scene, unique
// non-empty ids, non-empty narration and visual prompt on every scene.
func Validate(sb *types.Storyboard) error {
	if sb == nil || len(sb.Scenes) == 0 {
		return fmt.Errorf("%w: no scenes", ErrMalformedStoryboard)
	}
	seen := make(map[string]bool, len(sb.Scenes))
	for i, scene := range sb.Scenes {
		if strings.TrimSpace(scene.ID) == "" {
			return fmt.Errorf("%w: scene %d has empty id", ErrMalformedStoryboard, i)
		}
		if seen[scene.ID] {
			return fmt.Errorf("%w: duplicate scene id %q", ErrMalformedStoryboard, scene.ID)
		}
		seen[scene.ID] = true
		if strings.TrimSpace(scene.Narration) == "" {
			return fmt.Errorf("%w: scene %q has empty narration", ErrMalformedStoryboard, scene.ID)
		}
		if strings.TrimSpace(scene.VisualPrompt) == "" {
			return fmt.Errorf("%w: scene %q has empty visual prompt", ErrMalformedStoryboard, scene.ID)
		}
	}
	return nil
}

var (
	_ Builder = (*LLMBuilder)(nil)
	_ Builder = (*FixedBuilder)(nil)
)
