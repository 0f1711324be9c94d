package pipeline

import "fmt"

// Stage names the pipeline step where a failure happened
type Stage string

const (
	StageStoryboard Stage = "storyboard"
	StageNarration  Stage = "narration"
	StageAvatar     Stage = "avatar"
	StageExplainer  Stage = "explainer"
	StageCompose    Stage = "compose"
	StageAssemble   Stage = "assemble"
)

// StageError identifies the stage and scene behind a failed run. The
// wrapped error carries the component's own sentinel, so callers can
// classify with errors.Is on both layers.
type StageError struct {
	Stage   Stage
	SceneID string
	Err     error
}

func (e *StageError) Error() string {
	if e.SceneID == "" {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s: scene %s: %v", e.Stage, e.SceneID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
