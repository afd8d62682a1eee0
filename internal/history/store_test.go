package history_test

import (
	"fmt"
	"github.com/myrjola/sentinels/internal/history"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

func TestStore_RecordPrepends(t *testing.T) {
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	tick := 0
	store := history.New(history.WithClock(func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Minute)
	}))
	require.Empty(t, store.List())
	require.NotNil(t, store.List())

	const n = 5
	ids := map[string]bool{}
	for i := range n {
		input := models.CaseInput{Name: fmt.Sprintf("Case %d", i), LastKnownLocation: "Pier 39"}
		record := store.Record(input, models.NewAnalysisResult())
		require.NotEmpty(t, record.ID)
		require.False(t, ids[record.ID], "ids must be unique")
		ids[record.ID] = true

		list := store.List()
		require.Len(t, list, i+1)
		require.Equal(t, record, list[0], "most recent record must be first")
	}

	list := store.List()
	for i, record := range list {
		require.Equal(t, fmt.Sprintf("Case %d", n-1-i), record.Input.Name)
	}
	require.True(t, list[0].CreatedAt.After(list[n-1].CreatedAt))
	require.Equal(t, n, store.Len())
}

func TestStore_ListIsACopy(t *testing.T) {
	store := history.New()
	store.Record(models.CaseInput{Name: "Jane Doe"}, models.NewAnalysisResult())

	list := store.List()
	list[0].Input.Name = "tampered"
	require.Equal(t, "Jane Doe", store.List()[0].Input.Name)
}

func TestStore_Get(t *testing.T) {
	store := history.New()
	first := store.Record(models.CaseInput{Name: "First"}, models.NewAnalysisResult())
	store.Record(models.CaseInput{Name: "Second"}, models.NewAnalysisResult())

	got, ok := store.Get(first.ID)
	require.True(t, ok)
	require.Equal(t, first, got)

	_, ok = store.Get("missing")
	require.False(t, ok)
}

func TestFromRecords(t *testing.T) {
	original := history.New()
	original.Record(models.CaseInput{Name: "First"}, models.NewAnalysisResult())
	snapshot := original.List()

	restored := history.FromRecords(snapshot)
	latest := restored.Record(models.CaseInput{Name: "Second"}, models.NewAnalysisResult())
	require.Equal(t, []models.CaseRecord{latest, snapshot[0]}, restored.List())
	require.Len(t, snapshot, 1, "snapshot must not be modified")
}

func TestStore_ConcurrentRecords(t *testing.T) {
	store := history.New()
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Record(models.CaseInput{Name: "Jane Doe"}, models.NewAnalysisResult())
			_ = store.List()
		}()
	}
	wg.Wait()
	require.Equal(t, 20, store.Len())
}
