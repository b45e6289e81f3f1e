package types

// Segment is one narrated beat of the script, paired with the prompt
// used to generate its illustration.
type Segment struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
}

// Document is the structured script for one video. It is created by the
// script writer and extended by the narrator (audio/subtitle paths) and
// the illustrator (image paths). Persisted as <topic-slug>.json.
type Document struct {
	Title        string    `json:"title"`
	ViralComment string    `json:"viral_comment"`
	Segments     []Segment `json:"segments"`
	ImagePaths   []string  `json:"image_paths,omitempty"`
	AudioPath    string    `json:"audio_path,omitempty"`
	SubtitlePath string    `json:"subtitle_path,omitempty"`
}

// Narration returns the full narration text, segments joined in order.
func (d *Document) Narration() string {
	out := ""
	for i, s := range d.Segments {
		if i > 0 {
			out += " "
		}
		out += s.Text
	}
	return out
}

// PipelineState tracks the full state of one pipeline run
type PipelineState struct {
	RunID       string `json:"run_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	Topic       string `json:"topic"`
	ScriptFile  string `json:"script_file"`
	AudioFile   string `json:"audio_file"`
	VideoFile   string `json:"video_file"`
	YouTubeID   string `json:"youtube_id"`
	YouTubeURL  string `json:"youtube_url"`
	PublishNote string `json:"publish_note,omitempty"`
	Error       string `json:"error,omitempty"`
}
