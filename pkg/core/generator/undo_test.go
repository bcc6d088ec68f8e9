package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcardoso/designa/pkg/core/model"
)

func TestUndoLedger_EmptyStack(t *testing.T) {
	undo := NewUndoLedger()

	assert.False(t, undo.CanUndo())
	assert.Empty(t, undo.LastDescription())

	result, err := undo.Undo(context.Background(), newMockPartStore())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "nothing to undo", result.Message)
}

func TestUndoLedger_RestoresPriorState(t *testing.T) {
	prior := model.Part{
		ID:                    "p1",
		WeekID:                "2026-08-24",
		Title:                 "Bible reading",
		ResolvedPublisherID:   "",
		ResolvedPublisherName: "",
		Status:                model.StatusPending,
	}

	undo := NewUndoLedger()
	undo.CaptureSingle(prior, "generation run")

	store := newMockPartStore()
	result, err := undo.Undo(context.Background(), store)

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "generation run", result.Description)

	update := store.updates["p1"]
	require.NotNil(t, update.Status)
	assert.Equal(t, model.StatusPending, *update.Status)
	require.NotNil(t, update.ResolvedPublisherName)
	assert.Empty(t, *update.ResolvedPublisherName)

	// The snapshot is consumed.
	assert.False(t, undo.CanUndo())
}

func TestUndoLedger_DepthBoundKeepsNewest(t *testing.T) {
	undo := NewUndoLedger()
	undo.CaptureBatch([]model.Part{{ID: "old"}}, "first run")
	undo.CaptureBatch([]model.Part{{ID: "new"}}, "second run")

	assert.Equal(t, "second run", undo.LastDescription())

	store := newMockPartStore()
	result, err := undo.Undo(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Contains(t, store.updates, "new")
	assert.NotContains(t, store.updates, "old")

	// Only the newest snapshot survived the bound.
	assert.False(t, undo.CanUndo())
}

func TestUndoLedger_SnapshotIsolatedFromCaller(t *testing.T) {
	parts := []model.Part{{ID: "p1", Status: model.StatusPending}}
	undo := NewUndoLedger()
	undo.CaptureBatch(parts, "run")

	// Mutating the caller's slice must not leak into the snapshot.
	parts[0].Status = model.StatusProposed
	parts[0].ResolvedPublisherName = "Someone"

	store := newMockPartStore()
	_, err := undo.Undo(context.Background(), store)
	require.NoError(t, err)

	update := store.updates["p1"]
	require.NotNil(t, update.Status)
	assert.Equal(t, model.StatusPending, *update.Status)
	require.NotNil(t, update.ResolvedPublisherName)
	assert.Empty(t, *update.ResolvedPublisherName)
}

func TestUndoLedger_StoreFailureSurfaces(t *testing.T) {
	undo := NewUndoLedger()
	undo.CaptureSingle(model.Part{ID: "p1"}, "run")

	store := newMockPartStore()
	store.failIDs["p1"] = true

	_, err := undo.Undo(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p1")
}
