package prediction

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "predict.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestService_PredictSaveAndROI(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	course := mustCourse(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	for _, c := range []store.Card{
		{CardID: "c1", CourseCode: "TST", TopicID: "t1", Front: "q1", Back: "a1"},
		{CardID: "c2", CourseCode: "TST", TopicID: "t3", Front: "q2", Back: "a2"},
		{CardID: "c3", CourseCode: "TST", TopicID: "t3", Front: "q3", Back: "a3"},
	} {
		require.NoError(t, s.Cards().Upsert(ctx, c))
	}

	last := now.Add(-48 * time.Hour)
	require.NoError(t, s.CardStates().Upsert(ctx, spacedrep.CardState{
		LearnerID: "alice", CardID: "c2", State: spacedrep.Review,
		Difficulty: 4, Stability: 40, Retrievability: 1, Due: now, LastReview: &last, Reps: 5,
	}))
	require.NoError(t, s.Mastery().Upsert(ctx, store.TopicMasteryRecord{
		LearnerID: "alice", TopicID: "t3", Score: 0.9, TotalReviews: 5, CorrectReviews: 5, UpdatedAt: now,
	}))
	ev := &spacedrep.ReviewEvent{
		ID: "ev1", LearnerID: "alice", CardID: "c2", Rating: spacedrep.Good,
		StateBefore: spacedrep.Review, StateAfter: spacedrep.Review,
		ResponseTime: 90 * time.Second, ReviewedAt: now, Due: now.Add(24 * time.Hour),
	}
	require.NoError(t, s.Events().Append(ctx, ev))

	svc := NewService(s, mustEngine(t, DefaultConfig()), nil)
	svc.now = func() time.Time { return now }

	res, err := svc.Predict(ctx, "alice", course)
	require.NoError(t, err)
	assert.InDelta(t, 0.36, res.WeightedMastery, 1e-9)
	assert.Equal(t, 1, res.StudiedTopics)
	assert.Equal(t, 2, res.WeakTopicCount)

	snap, err := svc.Save(ctx, "alice", res)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.SnapshotID)

	hist, err := svc.History(ctx, "alice", "TST", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, snap.SnapshotID, hist[0].SnapshotID)
	assert.InDelta(t, res.PassProbability, hist[0].PassProbability, 1e-9)

	roi, err := svc.ROI(ctx, "alice", course)
	require.NoError(t, err)
	assert.Equal(t, 3, roi.TotalCards)
	assert.Equal(t, 1, roi.MasteredCards)
	assert.Equal(t, 2, roi.RemainingCards)
	assert.InDelta(t, 90, roi.SecondsPerCard, 1e-9)
	assert.InDelta(t, 0.05, roi.EstimatedHoursRemaining, 1e-9)
	assert.InDelta(t, 0.025, roi.TotalStudyHours, 1e-9)
}

func TestService_ROIIgnoresUntimedReviews(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	course := mustCourse(t)
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Cards().Upsert(ctx, store.Card{CardID: "c1", CourseCode: "TST", TopicID: "t1", Front: "q", Back: "a"}))
	for i := range 10 {
		ev := &spacedrep.ReviewEvent{
			ID: fmt.Sprintf("ev%d", i), LearnerID: "alice", CardID: "c1", Rating: spacedrep.Good,
			StateBefore: spacedrep.Learning, StateAfter: spacedrep.Learning,
			ReviewedAt: now.Add(time.Duration(i) * time.Minute), Due: now.Add(time.Hour),
		}
		if i == 0 {
			ev.ResponseTime = time.Minute
		}
		require.NoError(t, s.Events().Append(ctx, ev))
	}

	svc := NewService(s, mustEngine(t, DefaultConfig()), nil)
	roi, err := svc.ROI(ctx, "alice", course)
	require.NoError(t, err)
	assert.InDelta(t, 60, roi.SecondsPerCard, 1e-9)
	assert.InDelta(t, 1.0/60, roi.TotalStudyHours, 1e-9)
}
