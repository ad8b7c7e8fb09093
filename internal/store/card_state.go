package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/mnemos/internal/spacedrep"
)

type cardStateRepo struct {
	ex dialect.ExecQuerier
}

var cardStateColumns = []string{
	"learner_id", "card_id", "state", "step", "difficulty", "stability",
	"retrievability", "due", "last_review", "reps", "lapses",
}

func (r *cardStateRepo) Upsert(ctx context.Context, st spacedrep.CardState) error {
	var last any
	if st.LastReview != nil {
		last = st.LastReview.UTC()
	}
	q := builder.Insert(CardStatesTable.Name).
		Columns(append(cardStateColumns, "updated_at")...).
		Values(
			st.LearnerID, st.CardID, int(st.State), st.Step, st.Difficulty, st.Stability,
			st.Retrievability, st.Due.UTC(), last, st.Reps, st.Lapses, time.Now().UTC(),
		).
		OnConflict(
			entsql.ConflictColumns("learner_id", "card_id"),
			entsql.ResolveWithNewValues(),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("upsert card state %s/%s: %w", st.LearnerID, st.CardID, err)
	}
	return nil
}

// scanCardState reads the cardStateColumns followed by any extra destinations.
func scanCardState(rows entsql.ColumnScanner, extra ...any) (spacedrep.CardState, error) {
	var (
		st    spacedrep.CardState
		state int
		last  sql.NullTime
	)
	dest := []any{
		&st.LearnerID, &st.CardID, &state, &st.Step, &st.Difficulty, &st.Stability,
		&st.Retrievability, &st.Due, &last, &st.Reps, &st.Lapses,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return st, err
	}
	st.State = spacedrep.State(state)
	st.Due = st.Due.UTC()
	if last.Valid {
		t := last.Time.UTC()
		st.LastReview = &t
	}
	return st, nil
}

func (r *cardStateRepo) Get(ctx context.Context, learnerID, cardID string) (*spacedrep.CardState, error) {
	q := builder.Select(cardStateColumns...).
		From(builder.Table(CardStatesTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("card_id", cardID),
		))

	var found *spacedrep.CardState
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		st, err := scanCardState(rows)
		found = &st
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get card state %s/%s: %w", learnerID, cardID, err)
	}
	if found == nil {
		return nil, fmt.Errorf("card state %s/%s: %w", learnerID, cardID, ErrNotFound)
	}
	return found, nil
}

func (r *cardStateRepo) ListByLearner(ctx context.Context, learnerID, courseCode string) ([]TopicCardState, error) {
	// Aliases are set up front: a join without one is renamed after the
	// columns below were already qualified.
	states := builder.Table(CardStatesTable.Name).As("s")
	cards := builder.Table(CardsTable.Name).As("c")

	cols := make([]string, 0, len(cardStateColumns)+2)
	for _, c := range cardStateColumns {
		cols = append(cols, states.C(c))
	}
	cols = append(cols, cards.C("course_code"), cards.C("topic_id"))

	pred := entsql.EQ(states.C("learner_id"), learnerID)
	if courseCode != "" {
		pred = entsql.And(pred, entsql.EQ(cards.C("course_code"), courseCode))
	}
	q := builder.Select(cols...).
		From(states).
		LeftJoin(cards).
		On(states.C("card_id"), cards.C("card_id")).
		Where(pred).
		OrderBy(states.C("card_id"))

	var out []TopicCardState
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		var course, topic sql.NullString
		st, err := scanCardState(rows, &course, &topic)
		if err != nil {
			return err
		}
		out = append(out, TopicCardState{CardState: st, CourseCode: course.String, TopicID: topic.String})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list card states %s: %w", learnerID, err)
	}
	return out, nil
}
