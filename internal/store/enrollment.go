package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

type enrollmentRepo struct {
	ex dialect.ExecQuerier
}

var enrollmentColumns = []string{"learner_id", "course_code", "desired_retention", "created_at"}

func (r *enrollmentRepo) Upsert(ctx context.Context, e Enrollment) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	q := builder.Insert(EnrollmentsTable.Name).
		Columns(enrollmentColumns...).
		Values(e.LearnerID, e.CourseCode, e.DesiredRetention, e.CreatedAt.UTC()).
		OnConflict(
			entsql.ConflictColumns("learner_id", "course_code"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("desired_retention")
			}),
		)
	if err := execQuery(ctx, r.ex, q); err != nil {
		return fmt.Errorf("upsert enrollment %s/%s: %w", e.LearnerID, e.CourseCode, err)
	}
	return nil
}

func scanEnrollment(rows entsql.ColumnScanner) (Enrollment, error) {
	var e Enrollment
	err := rows.Scan(&e.LearnerID, &e.CourseCode, &e.DesiredRetention, &e.CreatedAt)
	e.CreatedAt = e.CreatedAt.UTC()
	return e, err
}

func (r *enrollmentRepo) Get(ctx context.Context, learnerID, courseCode string) (*Enrollment, error) {
	q := builder.Select(enrollmentColumns...).
		From(builder.Table(EnrollmentsTable.Name)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("course_code", courseCode),
		))

	var found *Enrollment
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		e, err := scanEnrollment(rows)
		found = &e
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("enrollment %s/%s: %w", learnerID, courseCode, ErrNotFound)
	}
	return found, nil
}

func (r *enrollmentRepo) ListByLearner(ctx context.Context, learnerID string) ([]Enrollment, error) {
	q := builder.Select(enrollmentColumns...).
		From(builder.Table(EnrollmentsTable.Name)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("course_code")

	var out []Enrollment
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		e, err := scanEnrollment(rows)
		out = append(out, e)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

func (r *enrollmentRepo) RetentionForCard(ctx context.Context, learnerID, cardID string) (float64, error) {
	enrollments := builder.Table(EnrollmentsTable.Name).As("en")
	cards := builder.Table(CardsTable.Name).As("c")
	q := builder.Select(enrollments.C("desired_retention")).
		From(enrollments).
		Join(cards).
		On(enrollments.C("course_code"), cards.C("course_code")).
		Where(entsql.And(
			entsql.EQ(enrollments.C("learner_id"), learnerID),
			entsql.EQ(cards.C("card_id"), cardID),
		)).
		Limit(1)

	var (
		dr    float64
		found bool
	)
	err := scanRows(ctx, r.ex, q, func(rows entsql.ColumnScanner) error {
		found = true
		return rows.Scan(&dr)
	})
	if err != nil {
		return 0, fmt.Errorf("retention for card: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("enrollment for %s/%s: %w", learnerID, cardID, ErrNotFound)
	}
	return dr, nil
}
