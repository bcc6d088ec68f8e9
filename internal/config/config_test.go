package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		DatabaseURL:      "postgres://localhost:5432/designa",
		CongregationName: "Central",
		GenerationWeeks:  4,
		Engine:           DefaultEngineConfig(),
		GmailUserID:      "user@example.com",
		GmailSender:      "sender@example.com",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		CongregationName: "Central",
		GenerationWeeks:  4,
		Engine:           DefaultEngineConfig(),
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}

func TestValidate_InvalidMeetingWeekday(t *testing.T) {
	cfg := &Config{
		DatabaseURL:      "postgres://localhost:5432/designa",
		CongregationName: "Central",
		GenerationWeeks:  4,
		Engine:           DefaultEngineConfig(),
	}
	cfg.Engine.MeetingWeekday = 7

	err := Validate(cfg)
	assert.Error(t, err)
}

func TestLoadFromPath_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designa.yaml")
	content := `
databaseURL: postgres://localhost:5432/designa
congregationName: Central
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.GenerationWeeks)
	assert.Equal(t, DefaultEngineConfig(), cfg.Engine)
}

func TestLoadFromPath_EngineOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designa.yaml")
	content := `
databaseURL: postgres://localhost:5432/designa
congregationName: Central
generationWeeks: 8
engine:
  recentWindowWeeks: 6
  maxLookbackWeeks: 26
  exactHistoryThreshold: 2
  meetingWeekday: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.GenerationWeeks)
	assert.Equal(t, 6, cfg.Engine.RecentWindowWeeks)
	assert.Equal(t, 26, cfg.Engine.MaxLookbackWeeks)
	assert.Equal(t, 2, cfg.Engine.ExactHistoryThreshold)
	assert.Equal(t, 2, cfg.Engine.MeetingWeekday)
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
