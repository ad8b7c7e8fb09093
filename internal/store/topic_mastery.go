package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type topicMasteryRepo struct {
	ex dialect.ExecQuerier
}

var topicMasteryColumns = []string{
	"learner_id", "topic_id", "score", "total_reviews", "correct_reviews", "avg_response_ms", "updated_at",
}

func (r *topicMasteryRepo) Upsert(ctx context.Context, rec TopicMasteryRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	q := builder.Insert(TopicMasteryTable.Name).
		Columns(topicMasteryColumns...).
		Values(rec.LearnerID, rec.TopicID, rec.Score, rec.TotalReviews, rec.CorrectReviews, rec.AvgResponseMs, rec.UpdatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("learner_id", "topic_id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("upsert topic mastery %s/%s: %w", rec.LearnerID, rec.TopicID, err)
	}
	return nil
}

func scanTopicMastery(rows entsql.ColumnScanner) (TopicMasteryRecord, error) {
	var rec TopicMasteryRecord
	err := rows.Scan(&rec.LearnerID, &rec.TopicID, &rec.Score, &rec.TotalReviews, &rec.CorrectReviews, &rec.AvgResponseMs, &rec.UpdatedAt)
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, err
}

func (r *topicMasteryRepo) Get(ctx context.Context, learnerID, topicID string) (*TopicMasteryRecord, error) {
	q := builder.Select(topicMasteryColumns...).
		From(builder.Table(TopicMasteryTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("topic_id", topicID),
		))

	var found *TopicMasteryRecord
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		rec, err := scanTopicMastery(rows)
		found = &rec
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get topic mastery: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("topic mastery %s/%s: %w", learnerID, topicID, ErrNotFound)
	}
	return found, nil
}

func (r *topicMasteryRepo) ListByLearner(ctx context.Context, learnerID string) ([]TopicMasteryRecord, error) {
	q := builder.Select(topicMasteryColumns...).
		From(builder.Table(TopicMasteryTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("topic_id")

	var out []TopicMasteryRecord
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		rec, err := scanTopicMastery(rows)
		out = append(out, rec)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list topic mastery: %w", err)
	}
	return out, nil
}

func (r *topicMasteryRepo) DeleteByLearner(ctx context.Context, learnerID string) error {
	q := builder.Delete(TopicMasteryTable.Name).Where(entsql.EQ("learner_id", learnerID))
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("delete topic mastery: %w", err)
	}
	return nil
}
