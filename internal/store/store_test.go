package store

import (
	"context"
	"testing"
	"time"

	"pr-readiness-api/internal/models"
	"pr-readiness-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestReadinessStore_RoundTrip(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := NewReadinessStore(db)
	ctx := context.Background()

	_, _, ok, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok, "expected miss before save")

	report := models.ReadinessReport{
		PRID:    1,
		Verdict: models.VerdictReady,
		Checks: []models.ReadinessCheck{
			{Name: "approved", Passed: true},
		},
		Approvals:   2,
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, 1, report))

	loaded, storedAt, ok, err := s.Load(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, report.Verdict, loaded.Verdict)
	require.Equal(t, report.Approvals, loaded.Approvals)
	require.WithinDuration(t, time.Now(), storedAt, 5*time.Second)
}

func TestReadinessStore_SaveOverwrites(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := NewReadinessStore(db)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, models.ReadinessReport{PRID: 7, Verdict: models.VerdictNeedsWork}))
	require.NoError(t, s.Save(ctx, 7, models.ReadinessReport{PRID: 7, Verdict: models.VerdictReady}))

	loaded, _, ok, err := s.Load(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.VerdictReady, loaded.Verdict)
}

func TestReadinessStore_DeleteMissingIsNoop(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := NewReadinessStore(db)

	require.NoError(t, s.Delete(context.Background(), 99))
}

func TestTimelineStore_RoundTrip(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := NewTimelineStore(db)
	ctx := context.Background()

	timeline := models.Timeline{
		Owner:  "acme",
		Repo:   "widgets",
		Number: 42,
		Events: []models.TimelineEvent{
			{Type: "reviewed", Actor: "alice", State: "approved", CreatedAt: time.Now().UTC()},
		},
		FetchedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Save(ctx, "acme/widgets/42", timeline))

	loaded, storedAt, ok, err := s.Load(ctx, "acme/widgets/42")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "acme", loaded.Owner)
	require.Len(t, loaded.Events, 1)
	require.Equal(t, "approved", loaded.Events[0].State)
	require.WithinDuration(t, time.Now(), storedAt, 5*time.Second)

	require.NoError(t, s.Delete(ctx, "acme/widgets/42"))
	_, _, ok, err = s.Load(ctx, "acme/widgets/42")
	require.NoError(t, err)
	require.False(t, ok, "expected miss after delete")
}
