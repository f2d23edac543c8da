package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core/drill"
)

type drillRepository struct {
	db *sqlx.DB
}

func NewDrillRepository(db *sqlx.DB) drill.Repository {
	return &drillRepository{db: db}
}

func (repo *drillRepository) CreateDrill(ctx context.Context, d drill.Drill) (drill.Drill, error) {
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO drill (id, category, name, description, duration, achievements, created_at, updated_at)
		VALUES (:id, :category, :name, :description, :duration, :achievements, :created_at, :updated_at)`, d)
	if err != nil {
		if isUniqueViolation(err) {
			return drill.Drill{}, drill.ErrIDExists
		}
		return drill.Drill{}, errors.Wrap(err, "creating drill")
	}
	return d, nil
}

// BulkCreateDrills inserts drills, silently skipping IDs that already exist.
// Returns the number actually inserted.
func (repo *drillRepository) BulkCreateDrills(ctx context.Context, drills []drill.Drill) (int, error) {
	if len(drills) == 0 {
		return 0, nil
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	created := 0
	for _, d := range drills {
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO drill (id, category, name, description, duration, achievements, created_at, updated_at)
			VALUES (:id, :category, :name, :description, :duration, :achievements, :created_at, :updated_at)
			ON CONFLICT (id) DO NOTHING`, d)
		if err != nil {
			return 0, errors.Wrap(err, "inserting drill")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			created++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing")
	}
	return created, nil
}

func (repo *drillRepository) QueryAllDrills(ctx context.Context) ([]drill.Drill, error) {
	drills := make([]drill.Drill, 0)
	err := repo.db.SelectContext(ctx, &drills, `SELECT * FROM drill ORDER BY category, name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying drills")
	}
	return drills, nil
}

func (repo *drillRepository) FilterDrills(ctx context.Context, filter drill.QueryFilter) ([]drill.Drill, error) {
	query := `SELECT * FROM drill`
	var clauses []string
	var args []interface{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY category, name"

	drills := make([]drill.Drill, 0)
	if err := repo.db.SelectContext(ctx, &drills, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering drills")
	}
	return drills, nil
}

func (repo *drillRepository) GetDrillByID(ctx context.Context, id string) (drill.Drill, error) {
	var d drill.Drill
	err := repo.db.GetContext(ctx, &d, `SELECT * FROM drill WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return drill.Drill{}, drill.ErrNotFound
	}
	if err != nil {
		return drill.Drill{}, errors.Wrap(err, "getting drill")
	}
	return d, nil
}

func (repo *drillRepository) UpdateDrill(ctx context.Context, d drill.Drill) (drill.Drill, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE drill
		SET category = :category, name = :name, description = :description,
		    duration = :duration, achievements = :achievements, updated_at = :updated_at
		WHERE id = :id`, d)
	if err != nil {
		return drill.Drill{}, errors.Wrap(err, "updating drill")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return drill.Drill{}, drill.ErrNotFound
	}
	return d, nil
}

func (repo *drillRepository) DeleteDrill(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM drill WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting drill")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return drill.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == "23505" // unique_violation
	}
	return false
}
