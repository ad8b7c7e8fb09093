package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Migration tables, kept in step with the entities in ent/schema.
var (
	// CardsColumns holds the columns for the "cards" table.
	CardsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "card_id", Type: field.TypeString, Unique: true},
		{Name: "course_code", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeString},
		{Name: "front", Type: field.TypeString, Size: 2147483647},
		{Name: "back", Type: field.TypeString, Size: 2147483647},
		{Name: "created_at", Type: field.TypeTime},
	}
	// CardsTable holds the schema information for the "cards" table.
	CardsTable = &schema.Table{
		Name:       "cards",
		Columns:    CardsColumns,
		PrimaryKey: []*schema.Column{CardsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "card_course_code", Unique: false, Columns: []*schema.Column{CardsColumns[2]}},
			{Name: "card_topic_id", Unique: false, Columns: []*schema.Column{CardsColumns[3]}},
		},
	}

	// CardStatesColumns holds the columns for the "card_states" table.
	CardStatesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "card_id", Type: field.TypeString},
		{Name: "state", Type: field.TypeInt},
		{Name: "step", Type: field.TypeInt, Default: 0},
		{Name: "difficulty", Type: field.TypeFloat64},
		{Name: "stability", Type: field.TypeFloat64},
		{Name: "retrievability", Type: field.TypeFloat64},
		{Name: "due", Type: field.TypeTime},
		{Name: "last_review", Type: field.TypeTime, Nullable: true},
		{Name: "reps", Type: field.TypeInt, Default: 0},
		{Name: "lapses", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// CardStatesTable holds the schema information for the "card_states" table.
	CardStatesTable = &schema.Table{
		Name:       "card_states",
		Columns:    CardStatesColumns,
		PrimaryKey: []*schema.Column{CardStatesColumns[0]},
		Indexes: []*schema.Index{
			{Name: "cardstate_learner_id_card_id", Unique: true, Columns: []*schema.Column{CardStatesColumns[1], CardStatesColumns[2]}},
			{Name: "cardstate_learner_id_due", Unique: false, Columns: []*schema.Column{CardStatesColumns[1], CardStatesColumns[8]}},
		},
	}

	// ReviewEventsColumns holds the columns for the "review_events" table.
	ReviewEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "card_id", Type: field.TypeString},
		{Name: "rating", Type: field.TypeInt},
		{Name: "state_before", Type: field.TypeInt},
		{Name: "state_after", Type: field.TypeInt},
		{Name: "difficulty_before", Type: field.TypeFloat64},
		{Name: "difficulty_after", Type: field.TypeFloat64},
		{Name: "stability_before", Type: field.TypeFloat64},
		{Name: "stability_after", Type: field.TypeFloat64},
		{Name: "retrievability", Type: field.TypeFloat64},
		{Name: "elapsed_days", Type: field.TypeFloat64},
		{Name: "scheduled_days", Type: field.TypeFloat64},
		{Name: "response_time_ms", Type: field.TypeInt64},
		{Name: "adjustments", Type: field.TypeInt, Default: 0},
		{Name: "reviewed_at", Type: field.TypeTime},
		{Name: "due", Type: field.TypeTime},
	}
	// ReviewEventsTable holds the schema information for the "review_events" table.
	ReviewEventsTable = &schema.Table{
		Name:       "review_events",
		Columns:    ReviewEventsColumns,
		PrimaryKey: []*schema.Column{ReviewEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reviewevent_learner_id_sequence", Unique: false, Columns: []*schema.Column{ReviewEventsColumns[3], ReviewEventsColumns[2]}},
			{Name: "reviewevent_card_id", Unique: false, Columns: []*schema.Column{ReviewEventsColumns[4]}},
		},
	}

	// TopicMasteryColumns holds the columns for the "topic_mastery" table.
	TopicMasteryColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "topic_id", Type: field.TypeString},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "total_reviews", Type: field.TypeInt},
		{Name: "correct_reviews", Type: field.TypeInt},
		{Name: "avg_response_ms", Type: field.TypeFloat64},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// TopicMasteryTable holds the schema information for the "topic_mastery" table.
	TopicMasteryTable = &schema.Table{
		Name:       "topic_mastery",
		Columns:    TopicMasteryColumns,
		PrimaryKey: []*schema.Column{TopicMasteryColumns[0]},
		Indexes: []*schema.Index{
			{Name: "topicmastery_learner_id_topic_id", Unique: true, Columns: []*schema.Column{TopicMasteryColumns[1], TopicMasteryColumns[2]}},
		},
	}

	// EnrollmentsColumns holds the columns for the "enrollments" table.
	EnrollmentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "course_code", Type: field.TypeString},
		{Name: "desired_retention", Type: field.TypeFloat64},
		{Name: "created_at", Type: field.TypeTime},
	}
	// EnrollmentsTable holds the schema information for the "enrollments" table.
	EnrollmentsTable = &schema.Table{
		Name:       "enrollments",
		Columns:    EnrollmentsColumns,
		PrimaryKey: []*schema.Column{EnrollmentsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "enrollment_learner_id_course_code", Unique: true, Columns: []*schema.Column{EnrollmentsColumns[1], EnrollmentsColumns[2]}},
		},
	}

	// PredictionSnapshotsColumns holds the columns for the "prediction_snapshots" table.
	PredictionSnapshotsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "snapshot_id", Type: field.TypeString, Unique: true},
		{Name: "learner_id", Type: field.TypeString},
		{Name: "course_code", Type: field.TypeString},
		{Name: "predicted_score", Type: field.TypeFloat64},
		{Name: "pass_probability", Type: field.TypeFloat64},
		{Name: "weighted_mastery", Type: field.TypeFloat64},
		{Name: "weak_topic_count", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	// PredictionSnapshotsTable holds the schema information for the "prediction_snapshots" table.
	PredictionSnapshotsTable = &schema.Table{
		Name:       "prediction_snapshots",
		Columns:    PredictionSnapshotsColumns,
		PrimaryKey: []*schema.Column{PredictionSnapshotsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "predictionsnapshot_learner_id_course_code", Unique: false, Columns: []*schema.Column{PredictionSnapshotsColumns[2], PredictionSnapshotsColumns[3]}},
		},
	}

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the schema information for the "global_sequence" table.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		CardsTable,
		CardStatesTable,
		ReviewEventsTable,
		TopicMasteryTable,
		EnrollmentsTable,
		PredictionSnapshotsTable,
		GlobalSequenceTable,
	}
)
