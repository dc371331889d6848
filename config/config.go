// Package config defines the static configuration for a recording session.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the application configuration. It is loaded once at startup
// and passed to each component at construction; nothing mutates it while a
// session is running.
type Config struct {
	// Audio capture configuration
	AudioSampleRate  int // device capture rate in Hz
	TargetSampleRate int // rate the saved WAV is resampled to for whisper
	AudioChannels    int
	AudioBufferSize  int // frames per buffer

	// Recording ceiling in minutes; recording auto-stops when reached
	MaxRecordingMinutes int

	// Whisper configuration
	WhisperBinaryPath string
	WhisperModelPath  string // directory holding ggml model files
	WhisperModelType  string // tiny, base, small, medium, large
	WhisperLanguage   string
	WhisperThreads    int

	// Ollama inference service configuration
	OllamaHost           string
	OllamaModel          string
	OllamaTimeoutSeconds int
	OllamaRetries        int // extra attempts when the service is unreachable

	// PromptTemplate overrides the built-in lecture-analysis prompt when set.
	// It must contain a single %s placeholder for the transcript.
	PromptTemplate string

	// Output configuration
	OutputDir       string
	WrapWidth       int
	CopyToClipboard bool

	// Logging
	LogLevel string
	Debug    bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	modelDir := "./models/" // fallback when the home directory is unavailable
	if dir, err := GetModelDir(); err == nil {
		modelDir = dir
	}

	return &Config{
		// 44.1kHz mono capture, resampled to 16kHz for whisper
		AudioSampleRate:  44100,
		TargetSampleRate: 16000,
		AudioChannels:    1,
		AudioBufferSize:  1024,

		MaxRecordingMinutes: 90,

		WhisperBinaryPath: "whisper-cli",
		WhisperModelPath:  modelDir,
		WhisperModelType:  "base",
		WhisperLanguage:   "en",
		WhisperThreads:    8,

		OllamaHost:           "http://localhost:11434",
		OllamaModel:          "granite3.3:2b",
		OllamaTimeoutSeconds: 300,
		OllamaRetries:        1,

		OutputDir:       ".",
		WrapWidth:       80,
		CopyToClipboard: false,

		LogLevel: "info",
		Debug:    false,
	}
}

// MaxRecordingDuration returns the recording ceiling as a duration.
func (c *Config) MaxRecordingDuration() time.Duration {
	return time.Duration(c.MaxRecordingMinutes) * time.Minute
}

// OllamaTimeout returns the summarization request timeout as a duration.
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.OllamaTimeoutSeconds) * time.Second
}

// Validate fills unset fields with defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.AudioSampleRate <= 0 {
		c.AudioSampleRate = 44100
	}
	if c.TargetSampleRate <= 0 {
		c.TargetSampleRate = 16000
	}
	if c.AudioChannels <= 0 {
		c.AudioChannels = 1
	}
	if c.AudioBufferSize <= 0 {
		c.AudioBufferSize = 1024
	}
	if c.MaxRecordingMinutes <= 0 {
		c.MaxRecordingMinutes = 90
	}
	if c.WhisperThreads <= 0 {
		c.WhisperThreads = 8
	}
	if c.WhisperBinaryPath == "" {
		return fmt.Errorf("whisper binary path is required")
	}
	if c.WhisperModelPath == "" {
		return fmt.Errorf("whisper model path is required")
	}
	if c.OllamaHost == "" {
		return fmt.Errorf("ollama host is required")
	}
	if c.OllamaModel == "" {
		return fmt.Errorf("ollama model is required")
	}
	if c.OllamaTimeoutSeconds <= 0 {
		c.OllamaTimeoutSeconds = 300
	}
	if c.OllamaRetries < 0 {
		c.OllamaRetries = 0
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.WrapWidth <= 0 {
		c.WrapWidth = 80
	}
	return nil
}

// GetAppDir returns the path to the .lectern directory
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, ".lectern")

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create .lectern directory: %w", err)
	}

	return appDir, nil
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.json"), nil
}

// GetModelDir returns the path to the whisper model directory
func GetModelDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	modelDir := filepath.Join(appDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	return modelDir, nil
}

// Load reads the configuration from path, falling back to the default config
// file location when path is empty. A missing file yields the defaults and
// writes them back so the user has something to edit.
func Load(path string) (*Config, error) {
	var err error
	if path == "" {
		path, err = GetConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config file path: %w", err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if saveErr := Save(cfg, path); saveErr != nil {
			return nil, saveErr
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
