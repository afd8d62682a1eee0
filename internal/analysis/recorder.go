package analysis

import (
	"context"
	"github.com/myrjola/sentinels/internal/history"
	"github.com/myrjola/sentinels/internal/models"
)

// HistoryRecorder records into a process-local history.Store.
type HistoryRecorder struct {
	Store *history.Store
}

func (h HistoryRecorder) Record(
	_ context.Context,
	input models.CaseInput,
	result models.AnalysisResult,
) (models.CaseRecord, error) {
	return h.Store.Record(input, result), nil
}
