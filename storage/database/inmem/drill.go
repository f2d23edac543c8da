package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/smanielp/cactusgolf/core/drill"
)

type drillRepository struct {
	db *DB
}

func NewDrillRepository(db *DB) drill.Repository {
	return &drillRepository{db: db}
}

func (repo *drillRepository) query() []drill.Drill {
	drills := make([]drill.Drill, 0, len(repo.db.drills))
	for _, d := range repo.db.drills {
		drills = append(drills, *d)
	}
	sort.Slice(drills, func(i, j int) bool {
		if drills[i].Category != drills[j].Category {
			return drills[i].Category < drills[j].Category
		}
		return drills[i].Name < drills[j].Name
	})
	return drills
}

func (repo *drillRepository) CreateDrill(_ context.Context, d drill.Drill) (drill.Drill, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.drills[d.ID]; ok {
		return drill.Drill{}, drill.ErrIDExists
	}
	repo.db.drills[d.ID] = &d
	return d, nil
}

func (repo *drillRepository) BulkCreateDrills(_ context.Context, drills []drill.Drill) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	created := 0
	for _, d := range drills {
		if _, ok := repo.db.drills[d.ID]; ok {
			continue
		}
		d := d
		repo.db.drills[d.ID] = &d
		created++
	}
	return created, nil
}

func (repo *drillRepository) QueryAllDrills(_ context.Context) ([]drill.Drill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *drillRepository) FilterDrills(_ context.Context, filter drill.QueryFilter) ([]drill.Drill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	search := strings.ToLower(filter.Search)
	drills := make([]drill.Drill, 0)
	for _, d := range repo.query() {
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.Description), search) {
			continue
		}
		drills = append(drills, d)
	}
	return drills, nil
}

func (repo *drillRepository) GetDrillByID(_ context.Context, id string) (drill.Drill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.drills[id]; ok {
		return *d, nil
	}
	return drill.Drill{}, drill.ErrNotFound
}

func (repo *drillRepository) UpdateDrill(_ context.Context, d drill.Drill) (drill.Drill, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.drills[d.ID]
	if !ok {
		return drill.Drill{}, drill.ErrNotFound
	}
	d.CreatedAt = orig.CreatedAt
	repo.db.drills[d.ID] = &d
	return d, nil
}

func (repo *drillRepository) DeleteDrill(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.drills[id]; !ok {
		return drill.ErrNotFound
	}
	delete(repo.db.drills, id)
	return nil
}
