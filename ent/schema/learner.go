package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// TopicMastery caches the derived mastery of one topic. It can be rebuilt
// from the review log at any time.
type TopicMastery struct {
	ent.Schema
}

func (TopicMastery) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "topic_mastery"}}
}

func (TopicMastery) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("topic_id").NotEmpty(),
		field.Float("score").
			Range(0, 1).
			Comment("EMA of review outcomes"),
		field.Int("total_reviews"),
		field.Int("correct_reviews"),
		field.Float("avg_response_ms"),
		field.Time("updated_at"),
	}
}

func (TopicMastery) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "topic_id").Unique(),
	}
}

// Enrollment links a learner to a course with a retention target.
type Enrollment struct {
	ent.Schema
}

func (Enrollment) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("course_code").NotEmpty(),
		field.Float("desired_retention").
			Range(0.70, 0.99),
		field.Time("created_at"),
	}
}

func (Enrollment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "course_code").Unique(),
	}
}

// PredictionSnapshot is a saved readiness estimate.
type PredictionSnapshot struct {
	ent.Schema
}

func (PredictionSnapshot) Fields() []ent.Field {
	return []ent.Field{
		field.String("snapshot_id").
			Unique().
			Immutable(),
		field.String("learner_id").NotEmpty(),
		field.String("course_code").NotEmpty(),
		field.Float("predicted_score"),
		field.Float("pass_probability"),
		field.Float("weighted_mastery"),
		field.Int("weak_topic_count"),
		field.Time("created_at"),
	}
}

func (PredictionSnapshot) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "course_code"),
	}
}

// GlobalSequence holds the next review event sequence number.
type GlobalSequence struct {
	ent.Schema
}

func (GlobalSequence) Annotations() []schema.Annotation {
	return []schema.Annotation{entsql.Annotation{Table: "global_sequence"}}
}

func (GlobalSequence) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("next_val").Default(1),
	}
}
