package store

import (
	"context"
	"time"

	"github.com/abhisek/mnemos/internal/spacedrep"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Card is a study card and its place in the catalog.
type Card struct {
	CardID     string
	CourseCode string
	TopicID    string
	Front      string
	Back       string
	CreatedAt  time.Time
}

// CardFilter narrows card listings. Empty fields match everything.
type CardFilter struct {
	CourseCode string
	TopicID    string
}

// CardRepo manages the card catalog mapping.
type CardRepo interface {
	// Upsert inserts a card or replaces its content and mapping.
	Upsert(ctx context.Context, c Card) error

	// Get returns a card or ErrNotFound.
	Get(ctx context.Context, cardID string) (*Card, error)

	// List returns cards ordered by card id.
	List(ctx context.Context, f CardFilter) ([]Card, error)

	// CountByCourse returns the number of cards in a course.
	CountByCourse(ctx context.Context, courseCode string) (int, error)

	// TopicForCard resolves the topic a card belongs to. ok is false when
	// the card has no mapping.
	TopicForCard(ctx context.Context, cardID string) (topicID string, ok bool, err error)
}

// TopicCardState is a card state joined with its topic mapping.
type TopicCardState struct {
	spacedrep.CardState
	CourseCode string
	TopicID    string
}

// CardStateRepo persists per-learner card memory states.
type CardStateRepo interface {
	// Get returns the state, or ErrNotFound if the learner never reviewed the card.
	Get(ctx context.Context, learnerID, cardID string) (*spacedrep.CardState, error)

	// Upsert writes the full state keyed by learner and card.
	Upsert(ctx context.Context, st spacedrep.CardState) error

	// ListByLearner returns all tracked states for a learner, optionally
	// restricted to one course.
	ListByLearner(ctx context.Context, learnerID, courseCode string) ([]TopicCardState, error)
}

// ReviewEventRepo is the append-only review log.
type ReviewEventRepo interface {
	// Append assigns the next global sequence to ev and stores it.
	Append(ctx context.Context, ev *spacedrep.ReviewEvent) error

	// ListByLearner returns a learner's events in sequence order.
	ListByLearner(ctx context.Context, learnerID string, opts QueryOpts) ([]spacedrep.ReviewEvent, error)

	// ListByCard returns the events for one learner and card in sequence order.
	ListByCard(ctx context.Context, learnerID, cardID string) ([]spacedrep.ReviewEvent, error)

	// LatencyStats returns the number of timed reviews and their summed
	// response time for a learner, optionally restricted to one course.
	// Reviews recorded without a response time are not counted.
	LatencyStats(ctx context.Context, learnerID, courseCode string) (count int, total time.Duration, err error)
}

// TopicMasteryRecord is the persisted topic mastery cache.
type TopicMasteryRecord struct {
	LearnerID      string
	TopicID        string
	Score          float64
	TotalReviews   int
	CorrectReviews int
	AvgResponseMs  float64
	UpdatedAt      time.Time
}

// TopicMasteryRepo persists derived topic mastery.
type TopicMasteryRepo interface {
	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, learnerID, topicID string) (*TopicMasteryRecord, error)

	// Upsert writes the record keyed by learner and topic.
	Upsert(ctx context.Context, rec TopicMasteryRecord) error

	// ListByLearner returns all topic records for a learner ordered by topic id.
	ListByLearner(ctx context.Context, learnerID string) ([]TopicMasteryRecord, error)

	// DeleteByLearner removes every record for a learner. Used before a rebuild.
	DeleteByLearner(ctx context.Context, learnerID string) error
}

// Enrollment links a learner to a course with their retention target.
type Enrollment struct {
	LearnerID        string
	CourseCode       string
	DesiredRetention float64
	CreatedAt        time.Time
}

// EnrollmentRepo manages learner enrollments.
type EnrollmentRepo interface {
	Upsert(ctx context.Context, e Enrollment) error
	// Get returns the enrollment or ErrNotFound.
	Get(ctx context.Context, learnerID, courseCode string) (*Enrollment, error)
	ListByLearner(ctx context.Context, learnerID string) ([]Enrollment, error)
	// RetentionForCard returns the desired retention of the enrollment that
	// covers the card's course, or ErrNotFound.
	RetentionForCard(ctx context.Context, learnerID, cardID string) (float64, error)
}

// PredictionSnapshot is a saved readiness estimate.
type PredictionSnapshot struct {
	SnapshotID      string
	LearnerID       string
	CourseCode      string
	PredictedScore  float64
	PassProbability float64
	WeightedMastery float64
	WeakTopicCount  int
	CreatedAt       time.Time
}

// PredictionRepo keeps the history of readiness estimates.
type PredictionRepo interface {
	Save(ctx context.Context, snap PredictionSnapshot) error
	// List returns the most recent snapshots first. limit <= 0 means all.
	List(ctx context.Context, learnerID, courseCode string, limit int) ([]PredictionSnapshot, error)
}
