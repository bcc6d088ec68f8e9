package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/tcardoso/designa/pkg/core/generator"
)

// UndoLast reverts the most recent captured mutation batch in this session.
// An empty undo stack is a no-op reported in the result, not an error.
func UndoLast(
	ctx context.Context,
	store generator.UndoStore,
	logger *zap.Logger,
	session *Session,
) (generator.UndoResult, error) {
	result, err := session.Undo().Undo(ctx, store)
	if err != nil {
		return result, err
	}

	if result.Success {
		logger.Info("Undo applied", zap.String("description", result.Description))
	} else {
		logger.Info("Nothing to undo")
	}
	return result, nil
}
