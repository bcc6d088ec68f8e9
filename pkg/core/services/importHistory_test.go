package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tcardoso/designa/pkg/core/model"
)

type mockImportStore struct {
	publishers []model.Publisher
	inserted   []model.HistoryRecord
}

func (m *mockImportStore) LoadPublishers(ctx context.Context) ([]model.Publisher, error) {
	return m.publishers, nil
}

func (m *mockImportStore) InsertHistoryRecords(ctx context.Context, records []model.HistoryRecord) error {
	m.inserted = append(m.inserted, records...)
	return nil
}

func TestImportHistory_CanonicalizesAndResolves(t *testing.T) {
	store := &mockImportStore{
		publishers: []model.Publisher{
			{ID: "1", Name: "João Silva", Aliases: []string{"J. Silva"}},
		},
	}

	rows := []ImportedRow{
		{WeekID: "2026-07-06", Date: "2026-07-09", PartTitle: "Leitura da Bíblia",
			Role: model.RolePrimary, PublisherName: "J. Silva"},
		{WeekID: "2026-07-06", Date: "2026-07-09", PartTitle: "4. Iniciando conversas",
			Role: model.RolePrimary, PublisherName: "Unknown Person"},
	}

	result, err := ImportHistory(context.Background(), store, zap.NewNop(), rows)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Inserted)
	assert.NotEmpty(t, result.BatchID)
	require.Len(t, store.inserted, 2)

	first := store.inserted[0]
	assert.Equal(t, model.PartBibleReading, first.Type)
	assert.Equal(t, "João Silva", first.ResolvedPublisherName)
	assert.Equal(t, "J. Silva", first.RawPublisherName)
	assert.Equal(t, model.ProvenanceImported, first.Provenance)
	assert.Equal(t, result.BatchID, first.ImportBatchID)

	second := store.inserted[1]
	assert.Equal(t, model.PartStartingDemo, second.Type)
	assert.Empty(t, second.ResolvedPublisherName)
	assert.Equal(t, []string{"Unknown Person"}, result.Unresolved)
}

func TestImportHistory_SkipsUnusableRows(t *testing.T) {
	store := &mockImportStore{}

	rows := []ImportedRow{
		{WeekID: "2026-07-06", PartTitle: "Coffee break", PublisherName: "Someone"},
		{WeekID: "2026-07-06", PartTitle: "Cântico 42", PublisherName: "Someone"},
		{WeekID: "2026-07-06", PartTitle: "Bible reading", PublisherName: ""},
	}

	result, err := ImportHistory(context.Background(), store, zap.NewNop(), rows)

	require.NoError(t, err)
	assert.Zero(t, result.Inserted)
	assert.Empty(t, store.inserted)
	require.Len(t, result.Skipped, 3)
	assert.Contains(t, result.Skipped[0], "unrecognized part")
	assert.Contains(t, result.Skipped[1], "not an assignable part")
	assert.Contains(t, result.Skipped[2], "no publisher name")
}

func TestImportHistory_DefaultsInvalidRoleToPrimary(t *testing.T) {
	store := &mockImportStore{}

	rows := []ImportedRow{
		{WeekID: "2026-07-06", Date: "2026-07-09", PartTitle: "Bible reading",
			Role: "", PublisherName: "Someone"},
	}

	result, err := ImportHistory(context.Background(), store, zap.NewNop(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, model.RolePrimary, store.inserted[0].Role)
}
