package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const configFileName = "designa.yaml"

// EngineConfig holds the rotation-engine tuning values. It is an explicit
// value object passed into the ranking engine and assignment generator at
// call time, never shared global state, so concurrent or test-isolated
// calls cannot interfere.
type EngineConfig struct {
	// RecentWindowWeeks is the lookback window used when counting recent
	// participations for ranking explanations.
	RecentWindowWeeks int `yaml:"recentWindowWeeks" validate:"min=1"`

	// MaxLookbackWeeks caps how far back the history aggregator looks when
	// computing days-since-last.
	MaxLookbackWeeks int `yaml:"maxLookbackWeeks" validate:"min=1"`

	// ExactHistoryThreshold is the number of exact part-type records below
	// which the ranking engine falls back to category-level history.
	ExactHistoryThreshold int `yaml:"exactHistoryThreshold" validate:"min=0"`

	// CooldownWeeks is the blocking window after a primary participation:
	// the generator skips publishers who served more recently. Zero
	// disables the block.
	CooldownWeeks int `yaml:"cooldownWeeks" validate:"min=0"`

	// HelperCooldownWeeks is the shorter blocking window started by a
	// helper participation.
	HelperCooldownWeeks int `yaml:"helperCooldownWeeks" validate:"min=0"`

	// MeetingWeekday is the weekday the midweek meeting is held on,
	// 0=Sunday through 6=Saturday. Availability is checked against the
	// meeting date computed from the week's Monday.
	MeetingWeekday int `yaml:"meetingWeekday" validate:"min=0,max=6"`
}

// DefaultEngineConfig returns the engine tuning used when the config file
// does not override it.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		RecentWindowWeeks:     12,
		MaxLookbackWeeks:      52,
		ExactHistoryThreshold: 1,
		CooldownWeeks:         3,
		HelperCooldownWeeks:   2,
		MeetingWeekday:        4, // Thursday
	}
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	CongregationName string `yaml:"congregationName" validate:"required"`

	// GenerationWeeks is the default number of weeks a generation run covers
	// when no explicit week list is given.
	GenerationWeeks int `yaml:"generationWeeks" validate:"min=1"`

	Engine EngineConfig `yaml:"engine"`

	GmailUserID string `yaml:"gmailUserID,omitempty"`
	GmailSender string `yaml:"gmailSender,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from designa.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		GenerationWeeks: 4,
		Engine:          DefaultEngineConfig(),
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches for designa.yaml in current directory and home directory
func findConfigFile() (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
