package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tcardoso/designa/pkg/core/model"
)

// maxUndoDepth bounds the snapshot stack. A depth of one matches the
// single "revert last commit" behavior the generator needs; deeper history
// would only require raising this constant.
const maxUndoDepth = 1

// Snapshot is a batch of pre-mutation part states captured before a commit.
// It is consumed at most once by Undo, then discarded.
type Snapshot struct {
	ID          string
	Description string
	CapturedAt  time.Time
	Parts       []model.Part
}

// UndoStore is the persistence surface needed to restore captured parts.
type UndoStore interface {
	UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error
}

// UndoLedger holds the bounded stack of snapshots. Each logical session owns
// its own ledger; it is never process-global state.
type UndoLedger struct {
	stack []Snapshot
}

// NewUndoLedger creates an empty ledger.
func NewUndoLedger() *UndoLedger {
	return &UndoLedger{}
}

// CaptureBatch records the prior state of the given parts under one
// description. Must be called before the mutation is applied.
func (l *UndoLedger) CaptureBatch(parts []model.Part, description string) {
	snapshot := Snapshot{
		ID:          uuid.NewString(),
		Description: description,
		CapturedAt:  time.Now(),
		Parts:       make([]model.Part, len(parts)),
	}
	copy(snapshot.Parts, parts)

	l.stack = append(l.stack, snapshot)
	if len(l.stack) > maxUndoDepth {
		l.stack = l.stack[len(l.stack)-maxUndoDepth:]
	}
}

// CaptureSingle records the prior state of one part.
func (l *UndoLedger) CaptureSingle(part model.Part, description string) {
	l.CaptureBatch([]model.Part{part}, description)
}

// CanUndo reports whether a snapshot is available.
func (l *UndoLedger) CanUndo() bool {
	return len(l.stack) > 0
}

// LastDescription returns the description of the most recent snapshot.
func (l *UndoLedger) LastDescription() string {
	if len(l.stack) == 0 {
		return ""
	}
	return l.stack[len(l.stack)-1].Description
}

// UndoResult reports the outcome of an undo attempt.
type UndoResult struct {
	Success     bool
	Description string
	Message     string
}

// Undo restores every captured part to its prior assignment state and
// discards the snapshot. Calling it with nothing captured is a no-op
// failure, not an error.
func (l *UndoLedger) Undo(ctx context.Context, store UndoStore) (UndoResult, error) {
	if len(l.stack) == 0 {
		return UndoResult{Success: false, Message: "nothing to undo"}, nil
	}

	snapshot := l.stack[len(l.stack)-1]
	l.stack = l.stack[:len(l.stack)-1]

	for i := range snapshot.Parts {
		prior := &snapshot.Parts[i]
		update := model.PartUpdate{
			ResolvedPublisherID:   &prior.ResolvedPublisherID,
			ResolvedPublisherName: &prior.ResolvedPublisherName,
			Status:                &prior.Status,
			Title:                 &prior.Title,
		}
		if err := store.UpdatePart(ctx, prior.ID, update); err != nil {
			return UndoResult{}, fmt.Errorf("failed to restore part %s: %w", prior.ID, err)
		}
	}

	return UndoResult{
		Success:     true,
		Description: snapshot.Description,
		Message:     fmt.Sprintf("reverted %q (%d parts)", snapshot.Description, len(snapshot.Parts)),
	}, nil
}
