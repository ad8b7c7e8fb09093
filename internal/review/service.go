// Package review commits graded reviews: it advances the card's memory
// state, appends the review event and refreshes topic mastery.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/abhisek/mnemos/internal/mastery"
	"github.com/abhisek/mnemos/internal/metrics"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

var (
	ErrUnknownCard      = errors.New("unknown card")
	ErrInvalidRetention = errors.New("desired retention out of range")
)

// Submission is one self-graded answer.
type Submission struct {
	LearnerID    string
	CardID       string
	Rating       spacedrep.Rating
	ResponseTime time.Duration
	// ReviewedAt defaults to the service clock when zero.
	ReviewedAt time.Time
}

// Outcome is the committed result of a submission.
type Outcome struct {
	State spacedrep.CardState
	Event spacedrep.ReviewEvent
	// Mastery is the refreshed topic, nil when the card has no topic or the
	// update failed.
	Mastery *mastery.TopicMastery
}

// Service is safe for concurrent use. Submissions for the same learner and
// card are serialized; each commits in a single transaction.
type Service struct {
	store            *store.Store
	scheduler        *spacedrep.Scheduler
	aggregator       *mastery.Aggregator
	desiredRetention float64
	logger           *slog.Logger
	locks            *keyedMutex
	masteryMu        sync.Mutex
	now              func() time.Time
}

// NewService wires a review service. desiredRetention is the fallback for
// learners without an enrollment on the card's course.
func NewService(st *store.Store, scheduler *spacedrep.Scheduler, desiredRetention float64, logger *slog.Logger) (*Service, error) {
	if desiredRetention < spacedrep.MinDesiredRetention || desiredRetention > spacedrep.MaxDesiredRetention {
		return nil, fmt.Errorf("%w: %.2f", ErrInvalidRetention, desiredRetention)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		store:            st,
		scheduler:        scheduler,
		aggregator:       mastery.NewAggregator(st.Cards(), st.Mastery(), logger),
		desiredRetention: desiredRetention,
		logger:           logger,
		locks:            newKeyedMutex(),
		now:              time.Now,
	}, nil
}

// Submit grades a card. The state change and the event are committed
// together; topic mastery is refreshed afterwards and its failure does not
// fail the submission.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if !sub.Rating.Valid() {
		metrics.Inc(metrics.InvalidRatingsTotal)
		return nil, fmt.Errorf("%w: %d", spacedrep.ErrInvalidRating, int(sub.Rating))
	}
	at := sub.ReviewedAt
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	unlock := s.locks.Lock(sub.LearnerID + "\x00" + sub.CardID)
	defer unlock()

	var (
		next spacedrep.CardState
		ev   spacedrep.ReviewEvent
	)
	err := s.store.WithTx(ctx, func(tx store.Repos) error {
		if _, err := tx.Cards().Get(ctx, sub.CardID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrUnknownCard, sub.CardID)
			}
			return err
		}
		cur, err := s.loadState(ctx, tx, sub.LearnerID, sub.CardID, at)
		if err != nil {
			return err
		}
		dr, err := s.retention(ctx, tx, sub.LearnerID, sub.CardID)
		if err != nil {
			return err
		}

		seed := spacedrep.ReviewSeed(sub.LearnerID, sub.CardID, cur.Reps)
		next, ev, err = s.scheduler.Review(cur, sub.Rating, at, dr, seed)
		if err != nil {
			return err
		}
		ev.ID = ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
		ev.ResponseTime = sub.ResponseTime

		if err := tx.Events().Append(ctx, &ev); err != nil {
			return err
		}
		return tx.CardStates().Upsert(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	metrics.Inc(metrics.ReviewsTotal)
	if ev.Lapsed() {
		metrics.Inc(metrics.LapsesTotal)
	}
	if ev.Adjustments != 0 {
		metrics.Inc(metrics.ClampsTotal)
		s.logger.Warn("review inputs clamped",
			"learner", ev.LearnerID,
			"card", ev.CardID,
			"event", ev.ID,
			"adjustments", ev.Adjustments.String())
	}

	out := &Outcome{State: next, Event: ev}
	s.masteryMu.Lock()
	m, err := s.aggregator.Apply(ctx, ev)
	s.masteryMu.Unlock()
	if err != nil {
		metrics.Inc(metrics.MasteryErrors)
		s.logger.Error("mastery update failed",
			"learner", ev.LearnerID,
			"card", ev.CardID,
			"event", ev.ID,
			"error", err)
	}
	out.Mastery = m
	return out, nil
}

func (s *Service) loadState(ctx context.Context, repos store.Repos, learnerID, cardID string, now time.Time) (spacedrep.CardState, error) {
	st, err := repos.CardStates().Get(ctx, learnerID, cardID)
	if errors.Is(err, store.ErrNotFound) {
		return s.scheduler.NewCard(learnerID, cardID, now), nil
	}
	if err != nil {
		return spacedrep.CardState{}, err
	}
	return *st, nil
}

func (s *Service) retention(ctx context.Context, repos store.Repos, learnerID, cardID string) (float64, error) {
	dr, err := repos.Enrollments().RetentionForCard(ctx, learnerID, cardID)
	if errors.Is(err, store.ErrNotFound) {
		return s.desiredRetention, nil
	}
	if err != nil {
		return 0, err
	}
	return dr, nil
}

// Preview returns what each rating would do to a card right now.
func (s *Service) Preview(ctx context.Context, learnerID, cardID string) (map[spacedrep.Rating]spacedrep.CardState, error) {
	now := s.now().UTC()
	if _, err := s.store.Cards().Get(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
		}
		return nil, err
	}
	cur, err := s.loadState(ctx, s.store.Repos, learnerID, cardID, now)
	if err != nil {
		return nil, err
	}
	dr, err := s.retention(ctx, s.store.Repos, learnerID, cardID)
	if err != nil {
		return nil, err
	}
	seed := spacedrep.ReviewSeed(learnerID, cardID, cur.Reps)
	return s.scheduler.Preview(cur, now, dr, seed), nil
}

// Enroll records a learner's retention target for a course.
func (s *Service) Enroll(ctx context.Context, learnerID, courseCode string, desiredRetention float64) (store.Enrollment, error) {
	if desiredRetention == 0 {
		desiredRetention = s.desiredRetention
	}
	if desiredRetention < spacedrep.MinDesiredRetention || desiredRetention > spacedrep.MaxDesiredRetention {
		return store.Enrollment{}, fmt.Errorf("%w: %.2f", ErrInvalidRetention, desiredRetention)
	}
	e := store.Enrollment{
		LearnerID:        learnerID,
		CourseCode:       courseCode,
		DesiredRetention: desiredRetention,
		CreatedAt:        s.now().UTC(),
	}
	if err := s.store.Enrollments().Upsert(ctx, e); err != nil {
		return store.Enrollment{}, err
	}
	return e, nil
}
