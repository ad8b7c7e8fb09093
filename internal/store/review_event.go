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

type reviewEventRepo struct {
	ex  dialect.ExecQuerier
	seq *sequenceCounter
}

var reviewEventColumns = []string{
	"event_id", "sequence", "learner_id", "card_id", "rating",
	"state_before", "state_after", "difficulty_before", "difficulty_after",
	"stability_before", "stability_after", "retrievability", "elapsed_days",
	"scheduled_days", "response_time_ms", "adjustments", "reviewed_at", "due",
}

func (r *reviewEventRepo) Append(ctx context.Context, ev *spacedrep.ReviewEvent) error {
	seq, err := r.seq.Next(ctx, r.ex)
	if err != nil {
		return err
	}
	ev.Sequence = seq

	q := builder.Insert(ReviewEventsTable.Name).
		Columns(reviewEventColumns...).
		Values(
			ev.ID, ev.Sequence, ev.LearnerID, ev.CardID, int(ev.Rating),
			int(ev.StateBefore), int(ev.StateAfter), ev.DifficultyBefore, ev.DifficultyAfter,
			ev.StabilityBefore, ev.StabilityAfter, ev.Retrievability, ev.ElapsedDays,
			ev.ScheduledDays, ev.ResponseTime.Milliseconds(), int(ev.Adjustments),
			ev.ReviewedAt.UTC(), ev.Due.UTC(),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("append review event: %w", err)
	}
	return nil
}

func scanReviewEvent(rows entsql.ColumnScanner) (spacedrep.ReviewEvent, error) {
	var (
		ev                                 spacedrep.ReviewEvent
		rating, before, after, adjustments int
		responseMs                         int64
	)
	err := rows.Scan(
		&ev.ID, &ev.Sequence, &ev.LearnerID, &ev.CardID, &rating,
		&before, &after, &ev.DifficultyBefore, &ev.DifficultyAfter,
		&ev.StabilityBefore, &ev.StabilityAfter, &ev.Retrievability, &ev.ElapsedDays,
		&ev.ScheduledDays, &responseMs, &adjustments, &ev.ReviewedAt, &ev.Due,
	)
	if err != nil {
		return ev, err
	}
	ev.Rating = spacedrep.Rating(rating)
	ev.StateBefore = spacedrep.State(before)
	ev.StateAfter = spacedrep.State(after)
	ev.Adjustments = spacedrep.Adjustment(adjustments)
	ev.ResponseTime = time.Duration(responseMs) * time.Millisecond
	ev.ReviewedAt = ev.ReviewedAt.UTC()
	ev.Due = ev.Due.UTC()
	return ev, nil
}

func (r *reviewEventRepo) list(ctx context.Context, pred *entsql.Predicate, limit int) ([]spacedrep.ReviewEvent, error) {
	q := builder.Select(reviewEventColumns...).
		From(builder.Table(ReviewEventsTable.Name)).
		Where(pred).
		OrderBy("sequence")
	if limit > 0 {
		q.Limit(limit)
	}

	var events []spacedrep.ReviewEvent
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		ev, err := scanReviewEvent(rows)
		events = append(events, ev)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list review events: %w", err)
	}
	return events, nil
}

func (r *reviewEventRepo) ListByLearner(ctx context.Context, learnerID string, opts QueryOpts) ([]spacedrep.ReviewEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("reviewed_at", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("reviewed_at", opts.To.UTC()))
	}
	return r.list(ctx, entsql.And(preds...), opts.Limit)
}

func (r *reviewEventRepo) ListByCard(ctx context.Context, learnerID, cardID string) ([]spacedrep.ReviewEvent, error) {
	return r.list(ctx, entsql.And(
		entsql.EQ("learner_id", learnerID),
		entsql.EQ("card_id", cardID),
	), 0)
}

func (r *reviewEventRepo) LatencyStats(ctx context.Context, learnerID, courseCode string) (int, time.Duration, error) {
	events := builder.Table(ReviewEventsTable.Name).As("e")
	// Untimed reviews carry no latency and stay out of both aggregates.
	pred := entsql.And(
		entsql.EQ(events.C("learner_id"), learnerID),
		entsql.GT(events.C("response_time_ms"), 0),
	)

	q := builder.Select(entsql.Count("*"), entsql.Sum(events.C("response_time_ms"))).
		From(events)
	if courseCode != "" {
		cards := builder.Table(CardsTable.Name).As("c")
		q.Join(cards).On(events.C("card_id"), cards.C("card_id"))
		pred = entsql.And(pred, entsql.EQ(cards.C("course_code"), courseCode))
	}
	q.Where(pred)

	var (
		count int
		sum   sql.NullInt64
	)
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		return rows.Scan(&count, &sum)
	})
	if err != nil {
		return 0, 0, fmt.Errorf("latency stats %s: %w", learnerID, err)
	}
	return count, time.Duration(sum.Int64) * time.Millisecond, nil
}
