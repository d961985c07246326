package postgres

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/arc-coordination/matching-svc/internal/data"
	"github.com/fatih/structs"
	"gitlab.com/distributed_lab/kit/pgdb"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const matchesTable = "matches"

type matches struct {
	db *pgdb.DB
}

func NewMatches(db *pgdb.DB) data.Matches {
	return matches{db: db}
}

func (q matches) Get(matchID string) (*data.Match, error) {
	var result data.Match
	stmt := squirrel.Select("*").From(matchesTable).Where(squirrel.Eq{"match_id": matchID})

	if err := q.db.Get(&result, stmt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to select match")
	}
	return &result, nil
}

func (q matches) Insert(m data.Match) error {
	stmt := squirrel.Insert(matchesTable).SetMap(structs.Map(m)).
		Suffix("ON CONFLICT (match_id) DO NOTHING")
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to insert match")
}

func (q matches) SetStatus(matchID, status, txRef string) error {
	stmt := squirrel.Update(matchesTable).
		SetMap(map[string]interface{}{"status": status, "tx_ref": txRef}).
		Where(squirrel.Eq{"match_id": matchID})
	err := q.db.Exec(stmt)
	return errors.Wrap(err, "failed to update match status")
}

func (q matches) SelectByStatus(statuses ...string) ([]data.Match, error) {
	var result []data.Match
	stmt := squirrel.Select("*").From(matchesTable).Where(squirrel.Eq{"status": statuses})

	err := q.db.Select(&result, stmt)
	return result, errors.Wrap(err, "failed to select matches by status")
}
