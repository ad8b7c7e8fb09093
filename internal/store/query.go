package store

import (
	"context"
	"errors"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// builder creates SQLite-flavoured statements.
var builder = entsql.Dialect(dialect.SQLite)

// execQuery runs a statement that returns no rows.
func execQuery(ctx context.Context, ex dialect.ExecQuerier, q entsql.Querier) error {
	query, args := q.Query()
	return ex.Exec(ctx, query, args, nil)
}

// scanRows runs q and calls each for every row.
func scanRows(ctx context.Context, ex dialect.ExecQuerier, q entsql.Querier, each func(entsql.ColumnScanner) error) error {
	query, args := q.Query()
	rows := &entsql.Rows{}
	if err := ex.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
