package pipeline

import "sync"

// SceneStage is a scene's position in the per-scene state machine
type SceneStage string

const (
	ScenePending       SceneStage = "pending"
	SceneNarrationDone SceneStage = "narration_done"
	SceneAvatarDone    SceneStage = "avatar_done"
	SceneExplainerDone SceneStage = "explainer_done"
	SceneComposed      SceneStage = "composed"
)

// Run tracks one pipeline execution: its identity, its scoped working
// directory, and each scene's current stage. Safe for concurrent scene
// workers; no state is shared across runs.
type Run struct {
	ID      string
	WorkDir string

	mu     sync.Mutex
	stages map[string]SceneStage
}

func newRun(id, workDir string, sceneIDs []string) *Run {
	stages := make(map[string]SceneStage, len(sceneIDs))
	for _, id := range sceneIDs {
		stages[id] = ScenePending
	}
	return &Run{ID: id, WorkDir: workDir, stages: stages}
}

func (r *Run) setStage(sceneID string, stage SceneStage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages[sceneID] = stage
}

// SceneStage reports the recorded stage for a scene
func (r *Run) SceneStage(sceneID string) SceneStage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stages[sceneID]
}
