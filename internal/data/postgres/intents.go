package postgres

import (
	"github.com/Masterminds/squirrel"
	"github.com/arc-coordination/matching-svc/internal/data"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const intentsTable = "intents"

type intents struct {
	db *pgdb.DB
}

func NewIntents(db *pgdb.DB) data.Intents {
	return intents{db: db}
}

func (q intents) ListActiveUnmatched() ([]data.Intent, error) {
	var result []data.Intent
	stmt := squirrel.Select("*").From(intentsTable).
		Where(squirrel.Eq{"is_active": true, "is_matched": false}).
		OrderBy("created_at", "intent_id")

	err := q.db.Select(&result, stmt)
	return result, errors.Wrap(err, "failed to select active unmatched intents")
}

func (q intents) MarkMatched(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	stmt := squirrel.Update(intentsTable).
		Set("is_matched", true).
		Where(squirrel.Eq{"intent_id": ids})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to mark intents as matched")
}
