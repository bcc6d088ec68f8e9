package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tcardoso/designa/pkg/core/model"
)

type mockExplainStore struct {
	publishers []model.Publisher
	parts      []model.Part
	history    []model.HistoryRecord
}

func (m *mockExplainStore) LoadPublishers(ctx context.Context) ([]model.Publisher, error) {
	return m.publishers, nil
}

func (m *mockExplainStore) GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error) {
	return m.parts, nil
}

func (m *mockExplainStore) LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error) {
	return m.history, nil
}

func TestExplainRanking_RanksAndExplainsExclusions(t *testing.T) {
	store := &mockExplainStore{
		publishers: []model.Publisher{
			testPublisher("Sister A", model.GenderSister),
			testPublisher("Sister B", model.GenderSister),
		},
		parts: []model.Part{
			{ID: "demo", WeekID: "2026-08-24", Date: "2026-08-27", Seq: 4,
				Type: model.PartStartingDemo, Role: model.RolePrimary, Status: model.StatusPending},
		},
		history: []model.HistoryRecord{
			{ID: "r1", Date: "2026-08-20", Type: model.PartStartingDemo,
				Role: model.RolePrimary, ResolvedPublisherName: "Sister A"},
		},
	}
	optedOut := testPublisher("Sister C", model.GenderSister)
	optedOut.RequestedNoParticipation = true
	store.publishers = append(store.publishers, optedOut)

	result, err := ExplainRanking(context.Background(), store, testConfig(), zap.NewNop(), "demo")

	require.NoError(t, err)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "Sister B", result.Candidates[0].Name)
	assert.Contains(t, result.Candidates[0].Explanation, "never served")
	assert.Equal(t, "Sister A", result.Candidates[1].Name)

	require.Len(t, result.Excluded, 1)
	assert.Equal(t, "Sister C", result.Excluded[0].Name)
	assert.Contains(t, result.Excluded[0].Reason, "no participation")
}

func TestExplainRanking_HelperUsesResolvedPrimary(t *testing.T) {
	primary := model.Part{ID: "demo", WeekID: "2026-08-24", Date: "2026-08-27", Seq: 4,
		Type: model.PartStartingDemo, Role: model.RolePrimary,
		ResolvedPublisherName: "Sister A", Status: model.StatusConfirmed}
	helper := model.Part{ID: "demo-helper", WeekID: "2026-08-24", Date: "2026-08-27", Seq: 4,
		Type: model.PartStartingDemo, Role: model.RoleHelper, Status: model.StatusPending}

	store := &mockExplainStore{
		publishers: []model.Publisher{
			testPublisher("Sister A", model.GenderSister),
			testPublisher("Sister B", model.GenderSister),
			testPublisher("Brother C", model.GenderBrother),
		},
		parts: []model.Part{primary, helper},
	}

	result, err := ExplainRanking(context.Background(), store, testConfig(), zap.NewNop(), "demo-helper")

	require.NoError(t, err)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Sister B", result.Candidates[0].Name)

	reasons := make(map[string]string)
	for _, e := range result.Excluded {
		reasons[e.Name] = e.Reason
	}
	assert.Contains(t, reasons["Sister A"], "primary on this part")
	assert.Contains(t, reasons["Brother C"], "gender")
}

func TestExplainRanking_HelperWithUnresolvedPrimary(t *testing.T) {
	helper := model.Part{ID: "demo-helper", WeekID: "2026-08-24", Date: "2026-08-27", Seq: 4,
		Type: model.PartStartingDemo, Role: model.RoleHelper, Status: model.StatusPending}

	store := &mockExplainStore{
		publishers: []model.Publisher{testPublisher("Sister B", model.GenderSister)},
		parts:      []model.Part{helper},
	}

	result, err := ExplainRanking(context.Background(), store, testConfig(), zap.NewNop(), "demo-helper")

	require.NoError(t, err)
	assert.Empty(t, result.Candidates)
	require.Len(t, result.Excluded, 1)
	assert.Contains(t, result.Excluded[0].Reason, "manual selection")
}

func TestExplainRanking_PartNotFound(t *testing.T) {
	store := &mockExplainStore{}

	_, err := ExplainRanking(context.Background(), store, testConfig(), zap.NewNop(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
