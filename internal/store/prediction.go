package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type predictionRepo struct {
	ex dialect.ExecQuerier
}

var predictionColumns = []string{
	"snapshot_id", "learner_id", "course_code", "predicted_score",
	"pass_probability", "weighted_mastery", "weak_topic_count", "created_at",
}

func (r *predictionRepo) Save(ctx context.Context, snap PredictionSnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	q := builder.Insert(PredictionSnapshotsTable.Name).
		Columns(predictionColumns...).
		Values(
			snap.SnapshotID, snap.LearnerID, snap.CourseCode, snap.PredictedScore,
			snap.PassProbability, snap.WeightedMastery, snap.WeakTopicCount, snap.CreatedAt.UTC(),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("save prediction snapshot: %w", err)
	}
	return nil
}

func (r *predictionRepo) List(ctx context.Context, learnerID, courseCode string, limit int) ([]PredictionSnapshot, error) {
	q := builder.Select(predictionColumns...).
		From(builder.Table(PredictionSnapshotsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("course_code", courseCode),
		)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id"))
	if limit > 0 {
		q.Limit(limit)
	}

	var out []PredictionSnapshot
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		var s PredictionSnapshot
		err := rows.Scan(
			&s.SnapshotID, &s.LearnerID, &s.CourseCode, &s.PredictedScore,
			&s.PassProbability, &s.WeightedMastery, &s.WeakTopicCount, &s.CreatedAt,
		)
		s.CreatedAt = s.CreatedAt.UTC()
		out = append(out, s)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list prediction snapshots: %w", err)
	}
	return out, nil
}
