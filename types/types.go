package types

import "encoding/json"

// Scene is one unit of a storyboard: the words to speak and the visual to
// animate while they are spoken. Scenes are immutable once built.
type Scene struct {
	ID                  string  `json:"id"`
	Narration           string  `json:"narration"`
	VisualPrompt        string  `json:"visual_prompt"`
	OptionalImagePrompt *string `json:"optional_image_prompt,omitempty"`
}

// Storyboard is the ordered scene list for one topic. Order is output order.
type Storyboard struct {
	Topic  string  `json:"topic"`
	Scenes []Scene `json:"scenes"`
}

// PipelineState is the persisted summary of one pipeline run
type PipelineState struct {
	RunID       string      `json:"run_id"`
	StartedAt   string      `json:"started_at"`
	CompletedAt string      `json:"completed_at"`
	Topic       string      `json:"topic"`
	Storyboard  *Storyboard `json:"storyboard"`
	ReelFile    string      `json:"reel_file"`
	Error       string      `json:"error,omitempty"`
}

// GeneratedTopics groups suggested study topics by difficulty
type GeneratedTopics struct {
	Difficult []string `json:"difficult"`
	Medium    []string `json:"medium"`
	Easy      []string `json:"easy"`
}

// QuizOption is one answer choice of a quiz question
type QuizOption struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// QuizQuestion is one generated quiz question with its choices
type QuizQuestion struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Options []QuizOption `json:"options"`
}

// Topic is a stored user topic
type Topic struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserInput string `json:"user_input"`
	CreatedAt string `json:"created_at"`
}

// QuizRecord is a stored quiz keyed by its topic
type QuizRecord struct {
	ID        string         `json:"id"`
	TopicID   string         `json:"topic_id"`
	Questions []QuizQuestion `json:"questions"`
	CreatedAt string         `json:"created_at"`
}

// RoadmapRecord is a stored learning roadmap keyed by its topic.
// The payload is the hierarchical JSON the generator produced, kept opaque.
type RoadmapRecord struct {
	ID        string          `json:"id"`
	TopicID   string          `json:"topic_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt string          `json:"created_at"`
}
