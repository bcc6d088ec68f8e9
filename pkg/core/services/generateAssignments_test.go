package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tcardoso/designa/internal/config"
	"github.com/tcardoso/designa/pkg/core/model"
)

type mockGenerateStore struct {
	publishers []model.Publisher
	parts      []model.Part
	history    []model.HistoryRecord

	updates     map[string]model.PartUpdate
	failUpdates bool
}

func newMockGenerateStore() *mockGenerateStore {
	return &mockGenerateStore{updates: make(map[string]model.PartUpdate)}
}

func (m *mockGenerateStore) LoadPublishers(ctx context.Context) ([]model.Publisher, error) {
	return m.publishers, nil
}

func (m *mockGenerateStore) GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error) {
	return m.parts, nil
}

func (m *mockGenerateStore) LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error) {
	return m.history, nil
}

func (m *mockGenerateStore) UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error {
	if m.failUpdates {
		return fmt.Errorf("storage unavailable")
	}
	m.updates[id] = fields
	return nil
}

var testNow = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		DatabaseURL:      "postgres://localhost/designa_test",
		CongregationName: "Test Congregation",
		GenerationWeeks:  4,
		Engine:           config.DefaultEngineConfig(),
	}
}

func testPublisher(name string, gender model.Gender) model.Publisher {
	return model.Publisher{
		ID:                name,
		Name:              name,
		Gender:            gender,
		Condition:         model.ConditionPublisher,
		AgeGroup:          model.AgeGroupAdult,
		IsBaptized:        true,
		IsServing:         true,
		SectionPrivileges: model.SectionPrivileges{Treasures: true, Ministry: true, Living: true},
		Availability:      model.Availability{Mode: model.AvailabilityAlways},
	}
}

func TestGenerateAssignments_CommitsPlan(t *testing.T) {
	store := newMockGenerateStore()
	store.publishers = []model.Publisher{
		testPublisher("Sister A", model.GenderSister),
		testPublisher("Sister B", model.GenderSister),
	}
	store.parts = []model.Part{
		{ID: "demo", WeekID: "2026-08-24", Seq: 4, Type: model.PartStartingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
	}

	session := NewSession()
	result, err := GenerateAssignments(context.Background(), store, testConfig(), zap.NewNop(), session,
		GenerateOptions{Weeks: []string{"2026-08-24"}, Now: testNow})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Assigned, 1)
	assert.Equal(t, 1, result.Committed)
	assert.Empty(t, result.Errors)

	update, ok := store.updates["demo"]
	require.True(t, ok)
	require.NotNil(t, update.Status)
	assert.Equal(t, model.StatusProposed, *update.Status)

	// The run is revertible within the session.
	assert.True(t, session.Undo().CanUndo())
}

func TestGenerateAssignments_DryRunPersistsNothing(t *testing.T) {
	store := newMockGenerateStore()
	store.publishers = []model.Publisher{testPublisher("Sister A", model.GenderSister)}
	store.parts = []model.Part{
		{ID: "demo", WeekID: "2026-08-24", Seq: 4, Type: model.PartStartingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
	}

	session := NewSession()
	result, err := GenerateAssignments(context.Background(), store, testConfig(), zap.NewNop(), session,
		GenerateOptions{Weeks: []string{"2026-08-24"}, DryRun: true, Now: testNow})

	require.NoError(t, err)
	assert.True(t, result.DryRun)
	require.Len(t, result.Assigned, 1)
	assert.Empty(t, store.updates)
	assert.False(t, session.Undo().CanUndo())
}

func TestGenerateAssignments_FillsMissingMeetingDates(t *testing.T) {
	store := newMockGenerateStore()
	away := testPublisher("Sister A", model.GenderSister)
	// Unavailable on the computed Thursday meeting date.
	away.Availability.ExceptionDates = []string{"2026-08-27"}
	store.publishers = []model.Publisher{away}
	store.parts = []model.Part{
		{ID: "demo", WeekID: "2026-08-24", Seq: 4, Type: model.PartStartingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
	}

	session := NewSession()
	result, err := GenerateAssignments(context.Background(), store, testConfig(), zap.NewNop(), session,
		GenerateOptions{Weeks: []string{"2026-08-24"}, Now: testNow})

	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "no eligible candidate")
}

func TestGenerateAssignments_InactivePublishersExcluded(t *testing.T) {
	store := newMockGenerateStore()
	inactive := testPublisher("Sister A", model.GenderSister)
	inactive.IsServing = false
	store.publishers = []model.Publisher{inactive}
	store.parts = []model.Part{
		{ID: "demo", WeekID: "2026-08-24", Seq: 4, Type: model.PartStartingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
	}

	session := NewSession()
	result, err := GenerateAssignments(context.Background(), store, testConfig(), zap.NewNop(), session,
		GenerateOptions{Weeks: []string{"2026-08-24"}, Now: testNow})

	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	assert.Len(t, result.Skipped, 1)
}

func TestGenerateAssignments_CommitErrorsReported(t *testing.T) {
	store := newMockGenerateStore()
	store.publishers = []model.Publisher{testPublisher("Sister A", model.GenderSister)}
	store.parts = []model.Part{
		{ID: "demo", WeekID: "2026-08-24", Seq: 4, Type: model.PartStartingDemo,
			Role: model.RolePrimary, Status: model.StatusPending},
	}
	store.failUpdates = true

	session := NewSession()
	result, err := GenerateAssignments(context.Background(), store, testConfig(), zap.NewNop(), session,
		GenerateOptions{Weeks: []string{"2026-08-24"}, Now: testNow})

	require.NoError(t, err)
	assert.Zero(t, result.Committed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Message, "1 of 1 commits failed")
}
