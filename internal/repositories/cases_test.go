package repositories_test

import (
	"context"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/internal/repositories"
	"github.com/myrjola/sentinels/internal/testhelpers"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
)

func newSession(t *testing.T) (*scs.SessionManager, context.Context) {
	t.Helper()
	sessionManager := scs.New()
	sessionManager.Store = memstore.New()
	ctx, err := sessionManager.Load(context.Background(), "")
	require.NoError(t, err)
	return sessionManager, ctx
}

func sampleInput(name string) models.CaseInput {
	return models.CaseInput{
		Name:              name,
		Age:               "34",
		LastKnownLocation: "Union Square, San Francisco",
		LastSeenDate:      time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		ReferenceImage: &models.ReferenceImage{
			Filename: "photo.png",
			MIMEType: "image/png",
			Data:     "iVBORw0KGgo=",
		},
	}
}

func sampleResult() models.AnalysisResult {
	result := models.NewAnalysisResult()
	result.PersonOverview.Summary = "Adult, average build."
	result.PotentialMatches = []models.PotentialMatch{{ID: "MATCH-001", Confidence: 88, Source: "CCTV"}}
	return result
}

func TestCaseRepository_Record(t *testing.T) {
	sessionManager, ctx := newSession(t)
	repo := repositories.NewCaseRepository(sessionManager, testhelpers.NewLogger(io.Discard))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
	require.Zero(t, repo.Count(ctx))

	first, err := repo.Record(ctx, sampleInput("Jane Doe"), sampleResult())
	require.NoError(t, err)
	second, err := repo.Record(ctx, sampleInput("John Doe"), models.NewAnalysisResult())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.CaseRecord{second, first}, list)
	require.Equal(t, 2, repo.Count(ctx))

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first, got)

	_, err = repo.Get(ctx, "unknown")
	require.ErrorIs(t, err, repositories.ErrCaseNotFound)
}

func TestCaseRepository_SurvivesSessionStore(t *testing.T) {
	sessionManager, ctx := newSession(t)
	repo := repositories.NewCaseRepository(sessionManager, testhelpers.NewLogger(io.Discard))

	record, err := repo.Record(ctx, sampleInput("Jane Doe"), sampleResult())
	require.NoError(t, err)

	token, _, err := sessionManager.Commit(ctx)
	require.NoError(t, err)

	reloaded, err := sessionManager.Load(context.Background(), token)
	require.NoError(t, err)
	got, err := repo.Get(reloaded, record.ID)
	require.NoError(t, err)
	require.Equal(t, record.Input.Name, got.Input.Name)
	require.Equal(t, record.Result, got.Result)
	require.Equal(t, record.Input.ReferenceImage, got.Input.ReferenceImage)
	require.True(t, record.CreatedAt.Equal(got.CreatedAt))
}

func TestCaseRepository_SessionsAreIsolated(t *testing.T) {
	sessionManager, ctx := newSession(t)
	repo := repositories.NewCaseRepository(sessionManager, testhelpers.NewLogger(io.Discard))
	otherCtx, err := sessionManager.Load(context.Background(), "")
	require.NoError(t, err)

	_, err = repo.Record(ctx, sampleInput("Jane Doe"), sampleResult())
	require.NoError(t, err)

	require.Equal(t, 1, repo.Count(ctx))
	require.Zero(t, repo.Count(otherCtx))
}
