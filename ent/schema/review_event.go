package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ReviewEvent records one graded review with the memory state on either
// side of it. Rows are never updated.
type ReviewEvent struct {
	ent.Schema
}

func (ReviewEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ReviewEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").
			NotEmpty().
			Immutable(),
		field.String("card_id").
			NotEmpty().
			Immutable(),
		field.Int("rating").
			Range(1, 4).
			Immutable().
			Comment("1 again, 2 hard, 3 good, 4 easy"),
		field.Int("state_before").Immutable(),
		field.Int("state_after").Immutable(),
		field.Float("difficulty_before").Immutable(),
		field.Float("difficulty_after").Immutable(),
		field.Float("stability_before").Immutable(),
		field.Float("stability_after").Immutable(),
		field.Float("retrievability").
			Immutable().
			Comment("Recall probability at the moment of review"),
		field.Float("elapsed_days").Immutable(),
		field.Float("scheduled_days").Immutable(),
		field.Int64("response_time_ms").Immutable(),
		field.Int("adjustments").
			Default(0).
			Immutable().
			Comment("Bit set of clamps applied to the inputs"),
		field.Time("reviewed_at").Immutable(),
		field.Time("due").Immutable(),
	}
}

func (ReviewEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "sequence"),
		index.Fields("card_id"),
	}
}
