package mastery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/mnemos/internal/metrics"
	"github.com/abhisek/mnemos/internal/spacedrep"
	"github.com/abhisek/mnemos/internal/store"
)

// ErrMissingMapping marks an event whose card has no topic.
var ErrMissingMapping = errors.New("card has no topic mapping")

// TopicLookup resolves which topic a card belongs to.
type TopicLookup interface {
	TopicForCard(ctx context.Context, cardID string) (topicID string, ok bool, err error)
}

// Aggregator folds review events into topic mastery records.
type Aggregator struct {
	topics  TopicLookup
	records store.TopicMasteryRepo
	logger  *slog.Logger
}

// NewAggregator creates an aggregator. A nil logger discards output.
func NewAggregator(topics TopicLookup, records store.TopicMasteryRepo, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{topics: topics, records: records, logger: logger}
}

// Apply updates the topic of ev's card. Events for unmapped cards are
// skipped and logged; the returned mastery is nil in that case.
func (a *Aggregator) Apply(ctx context.Context, ev spacedrep.ReviewEvent) (*TopicMastery, error) {
	topicID, ok, err := a.topics.TopicForCard(ctx, ev.CardID)
	if err != nil {
		return nil, fmt.Errorf("resolve topic for %s: %w", ev.CardID, err)
	}
	if !ok {
		metrics.Inc(metrics.MasterySkipped)
		a.logger.Warn("skipping mastery update",
			"reason", ErrMissingMapping.Error(),
			"learner", ev.LearnerID,
			"card", ev.CardID,
			"event", ev.ID)
		return nil, nil
	}

	m, err := a.load(ctx, ev.LearnerID, topicID)
	if err != nil {
		return nil, err
	}
	m.Apply(ev.Correct(), ev.ResponseTime, ev.ReviewedAt)
	if err := a.records.Upsert(ctx, m.record()); err != nil {
		return nil, err
	}
	metrics.Inc(metrics.MasteryUpdates)
	return m, nil
}

func (a *Aggregator) load(ctx context.Context, learnerID, topicID string) (*TopicMastery, error) {
	rec, err := a.records.Get(ctx, learnerID, topicID)
	if errors.Is(err, store.ErrNotFound) {
		return NewTopicMastery(learnerID, topicID), nil
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(*rec), nil
}

// Replay folds events, in the order given, into fresh topic records keyed
// by topic id. It returns the number of events skipped for missing mappings.
func (a *Aggregator) Replay(ctx context.Context, events []spacedrep.ReviewEvent) (map[string]*TopicMastery, int, error) {
	out := make(map[string]*TopicMastery)
	cache := make(map[string]string)
	skipped := 0
	for _, ev := range events {
		topicID, seen := cache[ev.CardID]
		if !seen {
			id, ok, err := a.topics.TopicForCard(ctx, ev.CardID)
			if err != nil {
				return nil, 0, fmt.Errorf("resolve topic for %s: %w", ev.CardID, err)
			}
			if ok {
				topicID = id
			}
			cache[ev.CardID] = topicID
		}
		if topicID == "" {
			skipped++
			continue
		}
		m := out[topicID]
		if m == nil {
			m = NewTopicMastery(ev.LearnerID, topicID)
			out[topicID] = m
		}
		m.Apply(ev.Correct(), ev.ResponseTime, ev.ReviewedAt)
	}
	return out, skipped, nil
}

// EventLog is the read side of the review log needed for a rebuild.
type EventLog interface {
	ListByLearner(ctx context.Context, learnerID string, opts store.QueryOpts) ([]spacedrep.ReviewEvent, error)
}

// RebuildResult summarises a rebuild.
type RebuildResult struct {
	Events  int
	Topics  int
	Skipped int
}

// Rebuild discards a learner's topic records and recomputes them from the
// review log. Run it inside a transaction to make the swap atomic.
func (a *Aggregator) Rebuild(ctx context.Context, learnerID string, log EventLog) (RebuildResult, error) {
	events, err := log.ListByLearner(ctx, learnerID, store.QueryOpts{})
	if err != nil {
		return RebuildResult{}, err
	}
	topics, skipped, err := a.Replay(ctx, events)
	if err != nil {
		return RebuildResult{}, err
	}
	if err := a.records.DeleteByLearner(ctx, learnerID); err != nil {
		return RebuildResult{}, err
	}
	for _, m := range topics {
		if err := a.records.Upsert(ctx, m.record()); err != nil {
			return RebuildResult{}, err
		}
	}
	a.logger.Info("rebuilt topic mastery",
		"learner", learnerID,
		"events", len(events),
		"topics", len(topics),
		"skipped", skipped)
	return RebuildResult{Events: len(events), Topics: len(topics), Skipped: skipped}, nil
}
