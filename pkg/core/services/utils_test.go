package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcardoso/designa/pkg/core/model"
)

func TestMondayOf(t *testing.T) {
	// 2026-08-30 is a Sunday, still in the week of Monday the 24th.
	sunday := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-24", mondayOf(sunday).Format(weekIDLayout))

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-24", mondayOf(monday).Format(weekIDLayout))
}

func TestUpcomingWeekIDs(t *testing.T) {
	from := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

	weeks, err := upcomingWeekIDs(from, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-24", "2026-08-31", "2026-09-07"}, weeks)
}

func TestMeetingDate(t *testing.T) {
	// Thursday of the week starting Monday 2026-08-24.
	date, err := meetingDate("2026-08-24", 4)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-27", date)

	// A Sunday meeting falls at the end of the week, not before its Monday.
	date, err = meetingDate("2026-08-24", 0)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-30", date)

	_, err = meetingDate("not-a-week", 4)
	assert.Error(t, err)
}

func TestActivePublishers(t *testing.T) {
	pubs := []model.Publisher{
		{Name: "A", IsServing: true},
		{Name: "B", IsServing: false},
		{Name: "C", IsServing: true},
	}

	active := activePublishers(pubs)

	require.Len(t, active, 2)
	assert.Equal(t, "A", active[0].Name)
	assert.Equal(t, "C", active[1].Name)
}
