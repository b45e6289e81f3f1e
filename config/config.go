package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Topic  TopicConfig  `yaml:"topic"`
	Script ScriptConfig `yaml:"script"`
	Audio  AudioConfig  `yaml:"audio"`
	Images ImagesConfig `yaml:"images"`
	Render RenderConfig `yaml:"render"`
	Upload UploadConfig `yaml:"upload"`
	Paths  PathsConfig  `yaml:"paths"`
}

type LLMConfig struct {
	Models          []string `yaml:"models"`
	AttemptDelaySec int      `yaml:"attempt_delay_sec"`
}

type TopicConfig struct {
	Channel       string `yaml:"channel"`
	FallbackTopic string `yaml:"fallback_topic"`
}

type ScriptConfig struct {
	MaxWords     int `yaml:"max_words"`
	HookMaxWords int `yaml:"hook_max_words"`
	SegmentCount int `yaml:"segment_count"`
}

type AudioConfig struct {
	Voice        string `yaml:"voice"`
	Rate         string `yaml:"rate"`
	FallbackLang string `yaml:"fallback_lang"`
}

type ImagesConfig struct {
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	Width             int    `yaml:"width"`
	Height            int    `yaml:"height"`
	StyleSuffix       string `yaml:"style_suffix"`
	Attempts          int    `yaml:"attempts"`
	RetryPauseSec     int    `yaml:"retry_pause_sec"`
	RequestPauseSec   int    `yaml:"request_pause_sec"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
}

type RenderConfig struct {
	FPS            int     `yaml:"fps"`
	TargetHeight   int     `yaml:"target_height"`
	TargetWidth    int     `yaml:"target_width"`
	ZoomFactor     float64 `yaml:"zoom_factor"`
	Darken         float64 `yaml:"darken"`
	MusicVolume    float64 `yaml:"music_volume"`
	MusicFadeSec   float64 `yaml:"music_fade_sec"`
	TitleDuration  float64 `yaml:"title_duration"`
	TitleWrapWidth int     `yaml:"title_wrap_width"`
	TitleFontSize  int     `yaml:"title_font_size"`
	Preset         string  `yaml:"preset"`
}

type UploadConfig struct {
	CategoryID      string   `yaml:"category_id"`
	Visibility      string   `yaml:"visibility"`
	Tags            []string `yaml:"tags"`
	CommentDelaySec int      `yaml:"comment_delay_sec"`
}

type PathsConfig struct {
	HistoryFile     string `yaml:"history_file"`
	AssetsRoot      string `yaml:"assets_root"`
	BackgroundMusic string `yaml:"background_music"`
	Logs            string `yaml:"logs"`
}

// Load reads config.yaml and returns a Config struct
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
