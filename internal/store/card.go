package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type cardRepo struct {
	ex dialect.ExecQuerier
}

var cardColumns = []string{"card_id", "course_code", "topic_id", "front", "back", "created_at"}

func (r *cardRepo) Upsert(ctx context.Context, c Card) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	q := builder.Insert(CardsTable.Name).
		Columns(cardColumns...).
		Values(c.CardID, c.CourseCode, c.TopicID, c.Front, c.Back, c.CreatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("card_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("course_code")
				u.SetExcluded("topic_id")
				u.SetExcluded("front")
				u.SetExcluded("back")
			}),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("upsert card %s: %w", c.CardID, err)
	}
	return nil
}

func scanCard(rows entsql.ColumnScanner) (Card, error) {
	var c Card
	err := rows.Scan(&c.CardID, &c.CourseCode, &c.TopicID, &c.Front, &c.Back, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func (r *cardRepo) Get(ctx context.Context, cardID string) (*Card, error) {
	q := builder.Select(cardColumns...).
		From(builder.Table(CardsTable.Name)).
		Where(entsql.EQ("card_id", cardID))

	var found *Card
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		c, err := scanCard(rows)
		found = &c
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get card %s: %w", cardID, err)
	}
	if found == nil {
		return nil, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}
	return found, nil
}

func (r *cardRepo) List(ctx context.Context, f CardFilter) ([]Card, error) {
	q := builder.Select(cardColumns...).
		From(builder.Table(CardsTable.Name)).
		OrderBy("card_id")
	var preds []*entsql.Predicate
	if f.CourseCode != "" {
		preds = append(preds, entsql.EQ("course_code", f.CourseCode))
	}
	if f.TopicID != "" {
		preds = append(preds, entsql.EQ("topic_id", f.TopicID))
	}
	if len(preds) > 0 {
		q.Where(entsql.And(preds...))
	}

	var cards []Card
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		c, err := scanCard(rows)
		cards = append(cards, c)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepo) CountByCourse(ctx context.Context, courseCode string) (int, error) {
	q := builder.Select(entsql.Count("*")).
		From(builder.Table(CardsTable.Name)).
		Where(entsql.EQ("course_code", courseCode))

	var n int
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		return rows.Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

func (r *cardRepo) TopicForCard(ctx context.Context, cardID string) (string, bool, error) {
	c, err := r.Get(ctx, cardID)
	if err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, err
	}
	if c.TopicID == "" {
		return "", false, nil
	}
	return c.TopicID, true, nil
}
