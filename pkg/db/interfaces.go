package db

import (
	"context"

	"github.com/tcardoso/designa/pkg/core/model"
)

// PublisherStore defines publisher persistence operations.
type PublisherStore interface {
	LoadPublishers(ctx context.Context) ([]model.Publisher, error)
	UpsertPublisher(ctx context.Context, publisher *model.Publisher) error
}

// PartStore defines workbook part persistence operations.
type PartStore interface {
	GetPartsByWeekID(ctx context.Context, weekID string) ([]model.Part, error)
	GetPartsFromWeek(ctx context.Context, fromWeekID string) ([]model.Part, error)
	InsertParts(ctx context.Context, parts []model.Part) error
	UpdatePart(ctx context.Context, id string, fields model.PartUpdate) error
}

// HistoryStore defines participation ledger operations. Records are
// append-only; there is deliberately no update operation.
type HistoryStore interface {
	LoadHistoryRecords(ctx context.Context) ([]model.HistoryRecord, error)
	InsertHistoryRecords(ctx context.Context, records []model.HistoryRecord) error
}

// SettingsStore defines key/value settings operations.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Database is the full persistence surface. The postgres.DB implementation
// satisfies it; services depend only on the narrow slices they need.
type Database interface {
	PublisherStore
	PartStore
	HistoryStore
	SettingsStore
}
