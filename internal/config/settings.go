package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. YDL_SAVE_PATH
const EnvPrefix = "YDL"

// Default values
const (
	DefaultSavePath         = "./downloads"
	DefaultQuality          = "best"
	DefaultRetries          = 3
	DefaultRetryDelay       = 5 * time.Second
	DefaultSocketTimeout    = 30 * time.Second
	DefaultEngine           = "yt-dlp"
	DefaultFilenameTemplate = "%(title)s.%(ext)s"
	DefaultMergeFormat      = "mp4"
	DefaultAudioCodec       = "mp3"
	DefaultLanguage         = "system"
	DefaultLogLevel         = "warn"
)

// Settings holds every tunable of a run. Values are layered: defaults,
// then the YAML file, then YDL_* environment variables, then explicit flags.
type Settings struct {
	SavePath         string        `yaml:"save_path" split_words:"true"`
	Quality          string        `yaml:"quality"`
	AudioOnly        bool          `yaml:"audio_only" split_words:"true"`
	Retries          int           `yaml:"retries"`
	RetryDelay       time.Duration `yaml:"retry_delay" split_words:"true"`
	SocketTimeout    time.Duration `yaml:"socket_timeout" split_words:"true"`
	Engine           string        `yaml:"engine"`
	FilenameTemplate string        `yaml:"filename_template" split_words:"true"`
	MergeFormat      string        `yaml:"merge_format" split_words:"true"`
	AudioCodec       string        `yaml:"audio_codec" split_words:"true"`
	AutoInstall      bool          `yaml:"auto_install" split_words:"true"`
	Language         string        `yaml:"language"`
	StrictExit       bool          `yaml:"strict_exit" split_words:"true"`
	LogLevel         string        `yaml:"log_level" split_words:"true"`
}

// NewSettings returns settings populated with defaults
func NewSettings() *Settings {
	return &Settings{
		SavePath:         DefaultSavePath,
		Quality:          DefaultQuality,
		Retries:          DefaultRetries,
		RetryDelay:       DefaultRetryDelay,
		SocketTimeout:    DefaultSocketTimeout,
		Engine:           DefaultEngine,
		FilenameTemplate: DefaultFilenameTemplate,
		MergeFormat:      DefaultMergeFormat,
		AudioCodec:       DefaultAudioCodec,
		Language:         DefaultLanguage,
		LogLevel:         DefaultLogLevel,
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values; unset variables leave the
// file or default value untouched.
func Load(configPath string) (*Settings, error) {
	s := NewSettings()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return s, nil
}

// Validate checks value ranges that flags cannot express
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Engine) == "" {
		return fmt.Errorf("engine is required")
	}
	if s.RetryDelay < 0 {
		return fmt.Errorf("retry_delay must not be negative")
	}
	if s.SocketTimeout <= 0 {
		return fmt.Errorf("socket_timeout must be positive")
	}
	if strings.TrimSpace(s.FilenameTemplate) == "" {
		return fmt.Errorf("filename_template is required")
	}
	if _, ok := s.GetLanguageOptions()[s.Language]; !ok {
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	if _, err := ParseLogLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// GetLanguageOptions returns available language options
func (s *Settings) GetLanguageOptions() map[string]string {
	return map[string]string{
		"system": "System Default",
		"en":     "English",
		"ru":     "Русский",
	}
}

// SlogLevel returns the configured log level, falling back to warn
func (s *Settings) SlogLevel() slog.Level {
	level, err := ParseLogLevel(s.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return level
}

// ParseLogLevel converts debug/info/warn/error into a slog.Level
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("unsupported log level %q", s)
	}
	return level, nil
}
