package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tldreel-pipeline/config"
	"tldreel-pipeline/storyboard"
	"tldreel-pipeline/types"
)

// Synthesizer produces narration audio and transcodes audio containers
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
	Transcode(ctx context.Context, inPath, outPath string) error
}

// AvatarRenderer produces a lip-synced avatar video from narration audio
type AvatarRenderer interface {
	Render(ctx context.Context, audioPath, outPath string) error
}

// ExplainerRenderer produces an animated explainer video from a prompt
type ExplainerRenderer interface {
	Render(ctx context.Context, prompt, outPath string) error
}

// Composer merges one explainer video and one avatar video into a clip
type Composer interface {
	ComposeScene(ctx context.Context, explainerPath, avatarPath, outPath string) error
}

// Assembler concatenates composed clips, in order, into the final reel
type Assembler interface {
	AssembleReel(ctx context.Context, clips []string, outPath string) error
}

// Pipeline orchestrates every stage of a reel run. It owns artifact
// lifecycle: all intermediates live in a per-run temp directory removed
// on success and failure alike; only the final reel survives.
type Pipeline struct {
	cfg       config.PipelineConfig
	builder   storyboard.Builder
	synth     Synthesizer
	avatar    AvatarRenderer
	explainer ExplainerRenderer
	composer  Composer
	assembler Assembler
}

func New(cfg config.PipelineConfig, builder storyboard.Builder, synth Synthesizer, avatarRenderer AvatarRenderer, explainerRenderer ExplainerRenderer, composer Composer, assembler Assembler) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		builder:   builder,
		synth:     synth,
		avatar:    avatarRenderer,
		explainer: explainerRenderer,
		composer:  composer,
		assembler: assembler,
	}
}

// CreateFinalReel builds a storyboard for the topic and renders it
func (p *Pipeline) CreateFinalReel(ctx context.Context, topic string) (string, error) {
	sb, err := p.builder.Build(ctx, topic)
	if err != nil {
		return "", &StageError{Stage: StageStoryboard, Err: err}
	}
	return p.CreateFinalReelFromStoryboard(ctx, sb)
}

// CreateFinalReelFromStoryboard runs the media stages over an existing
// storyboard and returns the final reel path. On any stage failure the
// run aborts, temp artifacts are released, and a StageError naming the
// scene and stage is returned; no partial reel is left behind.
func (p *Pipeline) CreateFinalReelFromStoryboard(ctx context.Context, sb *types.Storyboard) (string, error) {
	if err := storyboard.Validate(sb); err != nil {
		return "", &StageError{Stage: StageStoryboard, Err: err}
	}

	runID := uuid.NewString()[:8]
	workDir, err := os.MkdirTemp("", "reelrun-"+runID+"-")
	if err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	sceneIDs := make([]string, len(sb.Scenes))
	for i, scene := range sb.Scenes {
		sceneIDs[i] = scene.ID
	}
	run := newRun(runID, workDir, sceneIDs)
	log.Printf("[pipeline] run %s: %d scenes, workdir %s", runID, len(sb.Scenes), workDir)

	clips := make([]string, len(sb.Scenes))
	g, gctx := errgroup.WithContext(ctx)
	parallelism := p.cfg.SceneParallelism
	if parallelism < 1 {
		parallelism = 1
	}
	g.SetLimit(parallelism)

	for i, scene := range sb.Scenes {
		i, scene := i, scene
		g.Go(func() error {
			clip, err := p.processScene(gctx, run, i, scene)
			if err != nil {
				return err
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return "", &StageError{Stage: StageAssemble, Err: err}
	}
	outPath := filepath.Join(p.cfg.OutputDir, fmt.Sprintf("reel_%s.mp4", uuid.NewString()))
	if err := p.assembler.AssembleReel(ctx, clips, outPath); err != nil {
		os.Remove(outPath)
		return "", &StageError{Stage: StageAssemble, Err: err}
	}

	log.Printf("[pipeline] run %s: final reel %s", runID, outPath)
	return outPath, nil
}

// processScene drives one scene to its composed clip. Narration, its
// transcode and the avatar render are strictly sequential; the explainer
// render has no dependency on them and runs alongside.
func (p *Pipeline) processScene(ctx context.Context, run *Run, idx int, scene types.Scene) (string, error) {
	log.Printf("[pipeline] run %s: processing %s", run.ID, scene.ID)
	prefix := filepath.Join(run.WorkDir, fmt.Sprintf("scene_%03d", idx))

	narrationMP3 := prefix + "_narration.mp3"
	narrationWAV := prefix + "_narration.wav"
	avatarVideo := prefix + "_avatar.mp4"
	explainerVideo := prefix + "_explainer.mp4"
	clip := prefix + "_clip.mp4"

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := p.synth.Synthesize(gctx, scene.Narration, narrationMP3); err != nil {
			return &StageError{Stage: StageNarration, SceneID: scene.ID, Err: err}
		}
		if err := p.synth.Transcode(gctx, narrationMP3, narrationWAV); err != nil {
			return &StageError{Stage: StageNarration, SceneID: scene.ID, Err: err}
		}
		run.setStage(scene.ID, SceneNarrationDone)

		if err := p.avatar.Render(gctx, narrationWAV, avatarVideo); err != nil {
			return &StageError{Stage: StageAvatar, SceneID: scene.ID, Err: err}
		}
		run.setStage(scene.ID, SceneAvatarDone)
		return nil
	})
	g.Go(func() error {
		if err := p.explainer.Render(gctx, scene.VisualPrompt, explainerVideo); err != nil {
			return &StageError{Stage: StageExplainer, SceneID: scene.ID, Err: err}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}
	run.setStage(scene.ID, SceneExplainerDone)

	if err := p.composer.ComposeScene(ctx, explainerVideo, avatarVideo, clip); err != nil {
		return "", &StageError{Stage: StageCompose, SceneID: scene.ID, Err: err}
	}
	run.setStage(scene.ID, SceneComposed)

	// Inputs consumed; only the composed clip is still needed.
	for _, f := range []string{narrationMP3, narrationWAV, avatarVideo, explainerVideo} {
		_ = os.Remove(f)
	}
	return clip, nil
}
