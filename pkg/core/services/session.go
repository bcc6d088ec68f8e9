package services

import (
	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/generator"
	"github.com/tcardoso/designa/pkg/core/ranking"
)

// Session owns the per-session orchestration state, most importantly the
// undo ledger. Each logical session (one CLI invocation, one agent
// conversation) holds its own Session so undo history is never shared
// process-wide.
type Session struct {
	undo *generator.UndoLedger
}

// NewSession creates a session with an empty undo ledger.
func NewSession() *Session {
	return &Session{undo: generator.NewUndoLedger()}
}

// Undo exposes the session's undo ledger.
func (s *Session) Undo() *generator.UndoLedger {
	return s.undo
}

// rankingConfig maps the application engine config onto the ranking tuning
// value object.
func rankingConfig(engine config.EngineConfig) ranking.Config {
	return ranking.Config{
		RecentWindowWeeks:     engine.RecentWindowWeeks,
		MaxLookbackWeeks:      engine.MaxLookbackWeeks,
		ExactHistoryThreshold: engine.ExactHistoryThreshold,
		CooldownWeeks:         engine.CooldownWeeks,
		HelperCooldownWeeks:   engine.HelperCooldownWeeks,
	}
}
