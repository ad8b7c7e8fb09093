package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Card maps a study card onto its course and topic.
type Card struct {
	ent.Schema
}

func (Card) Fields() []ent.Field {
	return []ent.Field{
		field.String("card_id").
			Unique().
			NotEmpty(),
		field.String("course_code").
			NotEmpty(),
		field.String("topic_id").
			NotEmpty().
			Comment("Leaf topic in the course catalog"),
		field.Text("front"),
		field.Text("back"),
		field.Time("created_at"),
	}
}

func (Card) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("course_code"),
		index.Fields("topic_id"),
	}
}

// CardState is a learner's memory state for one card.
type CardState struct {
	ent.Schema
}

func (CardState) Fields() []ent.Field {
	return []ent.Field{
		field.String("learner_id").NotEmpty(),
		field.String("card_id").NotEmpty(),
		field.Int("state").
			Comment("new, learning, review or relearning"),
		field.Int("step").
			Default(0).
			Comment("Index into the learning or relearning steps"),
		field.Float("difficulty").
			Range(1, 10),
		field.Float("stability").
			Comment("Days until recall probability falls to 90%"),
		field.Float("retrievability"),
		field.Time("due"),
		field.Time("last_review").
			Optional().
			Nillable(),
		field.Int("reps").Default(0),
		field.Int("lapses").Default(0),
		field.Time("updated_at"),
	}
}

func (CardState) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "card_id").Unique(),
		index.Fields("learner_id", "due"),
	}
}
