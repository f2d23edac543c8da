package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
)

type practiceRepository struct {
	db *sqlx.DB
}

func NewPracticeRepository(db *sqlx.DB) practice.Repository {
	return &practiceRepository{db: db}
}

func (repo *practiceRepository) AppendSession(ctx context.Context, s practice.Session) (practice.Session, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO session (id, user_id, date, duration, focus, notes, drills, success_rate, completed_at, planned, created_at)
		VALUES (:id, :user_id, :date, :duration, :focus, :notes, :drills, :success_rate, :completed_at, :planned, :created_at)`, s)
	if err != nil {
		return practice.Session{}, errors.Wrap(err, "creating session")
	}
	return s, nil
}

func (repo *practiceRepository) QuerySessions(ctx context.Context, userID string) ([]practice.Session, error) {
	sessions := make([]practice.Session, 0)
	err := repo.db.SelectContext(ctx, &sessions, `
		SELECT * FROM session WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	return sessions, nil
}

func (repo *practiceRepository) GetSessionByID(ctx context.Context, userID, id string) (practice.Session, error) {
	var s practice.Session
	err := repo.db.GetContext(ctx, &s, `SELECT * FROM session WHERE user_id = $1 AND id = $2`, userID, id)
	if err == sql.ErrNoRows {
		return practice.Session{}, practice.ErrSessionNotFound
	}
	if err != nil {
		return practice.Session{}, errors.Wrap(err, "getting session")
	}
	return s, nil
}

func (repo *practiceRepository) UpdateSession(ctx context.Context, s practice.Session) (practice.Session, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE session
		SET date = :date, duration = :duration, focus = :focus, notes = :notes
		WHERE user_id = :user_id AND id = :id`, s)
	if err != nil {
		return practice.Session{}, errors.Wrap(err, "updating session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return practice.Session{}, practice.ErrSessionNotFound
	}
	return repo.GetSessionByID(ctx, s.UserID, s.ID)
}

func (repo *practiceRepository) DeleteSession(ctx context.Context, userID, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM session WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return practice.ErrSessionNotFound
	}
	return nil
}

func (repo *practiceRepository) ClearSessions(ctx context.Context, userID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM session WHERE user_id = $1`, userID)
	return errors.Wrap(err, "clearing sessions")
}

func (repo *practiceRepository) GetAchievements(ctx context.Context, userID string) (practice.AchievementState, error) {
	rows := make([]struct {
		DrillID string `db:"drill_id"`
		Tier    string `db:"tier"`
	}, 0)
	err := repo.db.SelectContext(ctx, &rows, `SELECT drill_id, tier FROM achievement WHERE user_id = $1`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying achievements")
	}

	state := make(practice.AchievementState, len(rows))
	for _, row := range rows {
		state[row.DrillID] = drill.Tier(row.Tier)
	}
	return state, nil
}

// ReplaceAchievements overwrites the user's whole tier map in one transaction.
func (repo *practiceRepository) ReplaceAchievements(ctx context.Context, userID string, state practice.AchievementState) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM achievement WHERE user_id = $1`, userID); err != nil {
		return errors.Wrap(err, "clearing achievements")
	}
	for drillID, tier := range state {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO achievement (user_id, drill_id, tier) VALUES ($1, $2, $3)`, userID, drillID, string(tier))
		if err != nil {
			return errors.Wrap(err, "inserting achievement")
		}
	}
	return errors.Wrap(tx.Commit(), "committing")
}
