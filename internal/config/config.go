// Package config loads process-wide configuration once at startup.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// SlotTime is a single UTC hour/minute at which the scheduler fires one
// debate attempt.
type SlotTime struct {
	Hour   int `yaml:"hour"`
	Minute int `yaml:"minute"`
}

// TopicSelectionMode controls which topic pool the scheduler draws from.
type TopicSelectionMode string

const (
	ModeHybrid      TopicSelectionMode = "hybrid"
	ModeUserOnly    TopicSelectionMode = "user_only"
	ModeBacklogOnly TopicSelectionMode = "backlog_only"
)

// Config is the process-wide configuration, loaded once at boot.
type Config struct {
	DatabaseURL string

	ProviderAPIKeys map[string]string

	TopicSelectionMode          TopicSelectionMode `yaml:"topic_selection_mode"`
	DebateSlots                 []SlotTime         `yaml:"debate_slots"`
	MinUserVotes                int                `yaml:"min_user_votes"`
	MatchupCooldownDays         int                `yaml:"matchup_cooldown_days"`
	MaxContentFilterRestarts    int                `yaml:"max_content_filter_restarts"`
	StuckDebateThresholdMinutes int                `yaml:"stuck_debate_threshold_minutes"`
	JudgeAPITimeoutSeconds      int                `yaml:"judge_api_timeout_seconds"`
	EloKFactor                  int                `yaml:"elo_k_factor"`
}

// Defaults returns the spec-mandated default values for everything that
// isn't supplied by the YAML file.
func Defaults() Config {
	return Config{
		TopicSelectionMode:          ModeHybrid,
		DebateSlots:                 []SlotTime{{2, 0}, {6, 0}, {10, 0}, {14, 0}, {18, 0}, {22, 0}},
		MinUserVotes:                5,
		MatchupCooldownDays:         7,
		MaxContentFilterRestarts:    3,
		StuckDebateThresholdMinutes: 5,
		JudgeAPITimeoutSeconds:      120,
		EloKFactor:                  32,
	}
}

// Load reads a .env file if present (mirroring the teacher's
// cmd/pipeline bootstrap), an optional YAML file for static settings, and
// overlays environment variables for secrets and the database URL.
func Load(yamlPath string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config yaml %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config yaml %s: %w", yamlPath, err)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	cfg.ProviderAPIKeys = map[string]string{
		"openai":    os.Getenv("OPENAI_API_KEY"),
		"anthropic": os.Getenv("ANTHROPIC_API_KEY"),
		"google":    os.Getenv("GEMINI_API_KEY"),
		"mistral":   os.Getenv("MISTRAL_API_KEY"),
		"xai":       os.Getenv("XAI_API_KEY"),
		"deepseek":  os.Getenv("DEEPSEEK_API_KEY"),
	}

	if v := os.Getenv("MIN_USER_VOTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MinUserVotes = n
		}
	}
	if v := os.Getenv("MAX_CONTENT_FILTER_RESTARTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxContentFilterRestarts = n
		}
	}

	return cfg, nil
}
