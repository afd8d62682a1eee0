package repositories

import (
	"context"
	"encoding/gob"
	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/history"
	"github.com/myrjola/sentinels/internal/models"
	"log/slog"
	"time"
)

var ErrCaseNotFound = errors.NewSentinel("case not found")

const casesSessionKey = "cases"

func init() {
	// The session store gob-encodes values held as interface{} so the concrete type must be registered.
	gob.Register([]models.CaseRecord{})
}

// CaseRepository keeps the case history of the session found in the request context.
type CaseRepository struct {
	sessionManager *scs.SessionManager
	logger         *slog.Logger
	now            func() time.Time
}

func NewCaseRepository(sessionManager *scs.SessionManager, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		sessionManager: sessionManager,
		logger:         logger.With("source", "CaseRepository"),
		now:            time.Now,
	}
}

func (r *CaseRepository) load(ctx context.Context) []models.CaseRecord {
	records, ok := r.sessionManager.Get(ctx, casesSessionKey).([]models.CaseRecord)
	if !ok {
		return nil
	}
	for i := range records {
		records[i].Result = records[i].Result.WithDefaults()
	}
	return records
}

// Record appends a finished analysis to the session history and returns the new record.
func (r *CaseRepository) Record(
	ctx context.Context,
	input models.CaseInput,
	result models.AnalysisResult,
) (models.CaseRecord, error) {
	store := history.FromRecords(r.load(ctx), history.WithClock(r.now))
	record := store.Record(input, result)
	r.sessionManager.Put(ctx, casesSessionKey, store.List())
	r.logger.LogAttrs(ctx, slog.LevelDebug, "case recorded",
		slog.String("case_id", record.ID), slog.Int("history_len", store.Len()))
	return record, nil
}

// List returns the session history, newest first.
func (r *CaseRepository) List(ctx context.Context) ([]models.CaseRecord, error) {
	return history.FromRecords(r.load(ctx)).List(), nil
}

// Get returns the case with the given id or ErrCaseNotFound.
func (r *CaseRepository) Get(ctx context.Context, id string) (models.CaseRecord, error) {
	record, ok := history.FromRecords(r.load(ctx)).Get(id)
	if !ok {
		return models.CaseRecord{}, errors.Wrap(ErrCaseNotFound, "get case", slog.String("case_id", id))
	}
	return record, nil
}

// Count returns the number of cases in the session history.
func (r *CaseRepository) Count(ctx context.Context) int {
	return len(r.load(ctx))
}
