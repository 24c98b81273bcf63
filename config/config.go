package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Generator GeneratorConfig `yaml:"generator"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "gcs" or "memory"
	Type string `yaml:"type"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	PublicBaseURL   string `yaml:"public_base_url"`
	CredentialsFile string `yaml:"credentials_file"`

	// SQLite segment database path
	DatabasePath string `yaml:"database_path"`
}

type GeneratorConfig struct {
	// Gemini text model used for script composition
	TextModel string `yaml:"text_model"`

	// Gemini speech model used for Tier-1 synthesis
	SpeechModel string `yaml:"speech_model"`

	// Service account JSON used to mint Tier-1 access tokens
	SpeechCredentialsFile string `yaml:"speech_credentials_file"`
}

type BroadcastConfig struct {
	// Insert a host break before every Nth song
	BreakFrequency int `yaml:"break_frequency"`

	RotateHosts bool `yaml:"rotate_hosts"`
	Shuffle     bool `yaml:"shuffle"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}

	// Set defaults if not provided
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}

	if config.Storage.Type == "" {
		config.Storage.Type = "gcs"
	}

	if config.Storage.DatabasePath == "" {
		config.Storage.DatabasePath = "data/segments.db"
	}

	if config.Generator.TextModel == "" {
		config.Generator.TextModel = "gemini-2.0-flash"
	}

	if config.Generator.SpeechModel == "" {
		config.Generator.SpeechModel = "gemini-2.5-flash-preview-tts"
	}

	if config.Broadcast.BreakFrequency < 1 {
		config.Broadcast.BreakFrequency = 3
	}

	return config, nil
}
