package review

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

var testNow = time.Date(2025, 5, 10, 8, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	for _, c := range []store.Card{
		{CardID: "cisa-001", CourseCode: "CISA", TopicID: "cisa-1-planning", Front: "q", Back: "a"},
		{CardID: "cisa-002", CourseCode: "CISA", TopicID: "cisa-1-planning", Front: "q", Back: "a"},
		{CardID: "cisa-003", CourseCode: "CISA", TopicID: "cisa-2-governance", Front: "q", Back: "a"},
		{CardID: "loose-001", CourseCode: "CISA", Front: "q", Back: "a"},
	} {
		require.NoError(t, st.Cards().Upsert(ctx, c))
	}

	sched, err := spacedrep.NewScheduler(spacedrep.DefaultConfig())
	require.NoError(t, err)
	svc, err := NewService(st, sched, spacedrep.DefaultDesiredRetention, nil)
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	return svc, st
}

func TestSubmit_NewCard(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	out, err := svc.Submit(ctx, Submission{
		LearnerID: "alice", CardID: "cisa-001", Rating: spacedrep.Good, ResponseTime: 8 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, spacedrep.Learning, out.State.State)
	assert.Equal(t, 1, out.State.Reps)
	assert.True(t, out.State.Due.After(testNow))
	assert.Equal(t, int64(1), out.Event.Sequence)
	assert.Len(t, out.Event.ID, 26)
	assert.Equal(t, spacedrep.New, out.Event.StateBefore)

	require.NotNil(t, out.Mastery)
	assert.Equal(t, "cisa-1-planning", out.Mastery.TopicID)
	assert.InDelta(t, 0.3, out.Mastery.Score, 1e-12)

	saved, err := st.CardStates().Get(ctx, "alice", "cisa-001")
	require.NoError(t, err)
	assert.Equal(t, out.State.State, saved.State)
	assert.True(t, out.State.Due.Equal(saved.Due))

	events, err := st.Events().ListByCard(ctx, "alice", "cisa-001")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, out.Event.ID, events[0].ID)
	assert.Equal(t, 8*time.Second, events[0].ResponseTime)
}

func TestSubmit_InvalidRatingLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	_, err := svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "cisa-001", Rating: 5})
	require.ErrorIs(t, err, spacedrep.ErrInvalidRating)

	_, err = st.CardStates().Get(ctx, "alice", "cisa-001")
	assert.ErrorIs(t, err, store.ErrNotFound)
	events, err := st.Events().ListByLearner(ctx, "alice", store.QueryOpts{})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSubmit_UnknownCard(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Submit(context.Background(), Submission{LearnerID: "alice", CardID: "nope", Rating: spacedrep.Good})
	assert.ErrorIs(t, err, ErrUnknownCard)
}

func TestSubmit_UnmappedCardSkipsMastery(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	out, err := svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "loose-001", Rating: spacedrep.Easy})
	require.NoError(t, err)
	assert.Nil(t, out.Mastery)
	assert.Equal(t, spacedrep.Review, out.State.State)

	recs, err := st.Mastery().ListByLearner(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSubmit_LapseFromReview(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	out, err := svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "cisa-002", Rating: spacedrep.Easy})
	require.NoError(t, err)
	require.Equal(t, spacedrep.Review, out.State.State)

	svc.now = func() time.Time { return out.State.Due }
	out, err = svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "cisa-002", Rating: spacedrep.Again})
	require.NoError(t, err)
	assert.Equal(t, spacedrep.Relearning, out.State.State)
	assert.Equal(t, 1, out.State.Lapses)
	assert.True(t, out.Event.Lapsed())
	assert.Less(t, out.Event.StabilityAfter, out.Event.StabilityBefore)
}

func TestSubmit_ConcurrentSameCardSerializes(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "cisa-003", Rating: spacedrep.Good})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	saved, err := st.CardStates().Get(ctx, "alice", "cisa-003")
	require.NoError(t, err)
	assert.Equal(t, n, saved.Reps)

	events, err := st.Events().ListByCard(ctx, "alice", "cisa-003")
	require.NoError(t, err)
	require.Len(t, events, n)
	for i, ev := range events {
		assert.Equal(t, int64(i+1), ev.Sequence)
	}

	rec, err := st.Mastery().Get(ctx, "alice", "cisa-2-governance")
	require.NoError(t, err)
	assert.Equal(t, n, rec.TotalReviews)
	assert.Equal(t, 0, svc.locks.size())
}

func TestEnrollAndRetention(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	_, err := svc.Enroll(ctx, "alice", "CISA", 1.5)
	require.ErrorIs(t, err, ErrInvalidRetention)

	e, err := svc.Enroll(ctx, "alice", "CISA", 0)
	require.NoError(t, err)
	assert.InDelta(t, spacedrep.DefaultDesiredRetention, e.DesiredRetention, 1e-12)

	_, err = svc.Enroll(ctx, "alice", "CISA", 0.8)
	require.NoError(t, err)
	dr, err := svc.retention(ctx, st.Repos, "alice", "cisa-001")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, dr, 1e-12)

	dr, err = svc.retention(ctx, st.Repos, "bob", "cisa-001")
	require.NoError(t, err)
	assert.InDelta(t, spacedrep.DefaultDesiredRetention, dr, 1e-12)
}

func TestPreview(t *testing.T) {
	svc, _ := newTestService(t)
	got, err := svc.Preview(context.Background(), "alice", "cisa-001")
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, spacedrep.Review, got[spacedrep.Easy].State)
	assert.Equal(t, spacedrep.Learning, got[spacedrep.Again].State)

	_, err = svc.Preview(context.Background(), "alice", "missing")
	assert.True(t, errors.Is(err, ErrUnknownCard))
}

func TestDue(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Submit(ctx, Submission{LearnerID: "alice", CardID: "cisa-001", Rating: spacedrep.Again})
	require.NoError(t, err)

	due, err := svc.Due(ctx, DueQuery{LearnerID: "alice", CourseCode: "CISA"})
	require.NoError(t, err)
	assert.Empty(t, due, "learning card is not due until its step elapses")

	svc.now = func() time.Time { return testNow.Add(time.Hour) }
	due, err = svc.Due(ctx, DueQuery{LearnerID: "alice", CourseCode: "CISA", NewCards: 2})
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, spacedrep.New, due[0].State)
	assert.Equal(t, "cisa-002", due[0].CardID)
	assert.Equal(t, "cisa-003", due[1].CardID)
	assert.Equal(t, "cisa-001", due[2].CardID)
	assert.Equal(t, spacedrep.Learning, due[2].State)

	due, err = svc.Due(ctx, DueQuery{LearnerID: "alice", CourseCode: "CISA", NewCards: 2, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, due, 1)

	due, err = svc.Due(ctx, DueQuery{LearnerID: "alice", TopicID: "cisa-2-governance", NewCards: 5})
	require.NoError(t, err)
	require.Len(t, due, 1, "only the governance card is in scope")
	assert.Equal(t, "cisa-003", due[0].CardID)

	due, err = svc.Due(ctx, DueQuery{LearnerID: "alice", CourseCode: "CISA", TopicID: "cisa-1-planning", NewCards: 5})
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "cisa-002", due[0].CardID)
	assert.Equal(t, "cisa-001", due[1].CardID)
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	unlock := k.Lock("a")
	done := make(chan struct{})
	go func() {
		u := k.Lock("a")
		u()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}
	unlock()
	<-done
	assert.Equal(t, 0, k.size())
}
