package drill

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"

	"github.com/smanielp/cactusgolf/core"
)

type testLogger struct{ std *log.Logger }

func (l testLogger) Debug(msg string, args ...interface{}) { l.std.Println(msg) }
func (l testLogger) Info(msg string, args ...interface{})  { l.std.Println(msg) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.std.Println(msg) }
func (l testLogger) Error(msg string, args ...interface{}) { l.std.Println(msg) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.std.Fatal(msg) }

// fakeRepo is an in-memory Repository with an injectable query failure.
type fakeRepo struct {
	drills   map[string]Drill
	queryErr error
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{drills: make(map[string]Drill)}
}

func (r *fakeRepo) CreateDrill(ctx context.Context, d Drill) (Drill, error) {
	if _, ok := r.drills[d.ID]; ok {
		return Drill{}, ErrIDExists
	}
	r.drills[d.ID] = d
	return d, nil
}

func (r *fakeRepo) BulkCreateDrills(ctx context.Context, drills []Drill) (int, error) {
	created := 0
	for _, d := range drills {
		if _, ok := r.drills[d.ID]; ok {
			continue
		}
		r.drills[d.ID] = d
		created++
	}
	return created, nil
}

func (r *fakeRepo) QueryAllDrills(ctx context.Context) ([]Drill, error) {
	if r.queryErr != nil {
		return nil, r.queryErr
	}
	out := make([]Drill, 0, len(r.drills))
	for _, d := range r.drills {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) FilterDrills(ctx context.Context, filter QueryFilter) ([]Drill, error) {
	var out []Drill
	for _, d := range r.drills {
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(d.Name), s) && !strings.Contains(strings.ToLower(d.Description), s) {
				continue
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeRepo) GetDrillByID(ctx context.Context, id string) (Drill, error) {
	if d, ok := r.drills[id]; ok {
		return d, nil
	}
	return Drill{}, ErrNotFound
}

func (r *fakeRepo) UpdateDrill(ctx context.Context, d Drill) (Drill, error) {
	if _, ok := r.drills[d.ID]; !ok {
		return Drill{}, ErrNotFound
	}
	r.drills[d.ID] = d
	return d, nil
}

func (r *fakeRepo) DeleteDrill(ctx context.Context, id string) error {
	if _, ok := r.drills[id]; !ok {
		return ErrNotFound
	}
	delete(r.drills, id)
	return nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	conf := &core.Config{}
	conf.Practice.ImportDefaultDuration = 10
	lg := testLogger{std: log.New(ioutil.Discard, "", 0)}
	return NewService(repo, lg, conf), repo
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	d, err := svc.Create(ctx, NewDrill{
		Category: "putting", Name: "Gate Drill", Description: "putt through a gate", Duration: 15,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if d.ID != "putting-gate-drill" {
		t.Errorf("ID = %q, want putting-gate-drill", d.ID)
	}
	// missing tier texts are filled in
	for _, tier := range Tiers {
		if d.Achievements[tier] == "" {
			t.Errorf("Achievements[%s] is empty", tier)
		}
	}

	// same category+name gets a uniquified id instead of failing
	dup, err := svc.Create(ctx, NewDrill{
		Category: "putting", Name: "Gate Drill", Description: "another gate drill", Duration: 10,
	})
	if err != nil {
		t.Fatalf("Create() duplicate error = %v", err)
	}
	if dup.ID == d.ID || !strings.HasPrefix(dup.ID, "putting-gate-drill-") {
		t.Errorf("duplicate ID = %q", dup.ID)
	}
}

func TestServiceCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("groups and sorts", func(t *testing.T) {
		svc, repo := newTestService()
		repo.drills = map[string]Drill{
			"putting-b":  {ID: "putting-b", Category: "putting", Name: "B drill"},
			"putting-a":  {ID: "putting-a", Category: "putting", Name: "A drill"},
			"chipping-c": {ID: "chipping-c", Category: "chipping", Name: "C drill"},
		}

		catalog, err := svc.Catalog(ctx)
		if err != nil {
			t.Fatalf("Catalog() error = %v", err)
		}
		if len(catalog) != 2 {
			t.Fatalf("len(catalog) = %d, want 2", len(catalog))
		}
		putting := catalog["putting"]
		if len(putting) != 2 || putting[0].Name != "A drill" || putting[1].Name != "B drill" {
			t.Errorf("putting = %v, want sorted by name", putting)
		}
	})

	t.Run("serves seed when store fails", func(t *testing.T) {
		svc, repo := newTestService()
		repo.queryErr = context.DeadlineExceeded

		catalog, err := svc.Catalog(ctx)
		if err != nil {
			t.Fatalf("Catalog() error = %v", err)
		}
		if len(catalog) == 0 {
			t.Error("Catalog() empty, want embedded seed")
		}
	})

	t.Run("serves seed when store empty", func(t *testing.T) {
		svc, _ := newTestService()

		catalog, err := svc.Catalog(ctx)
		if err != nil {
			t.Fatalf("Catalog() error = %v", err)
		}
		if len(catalog) == 0 {
			t.Error("Catalog() empty, want embedded seed")
		}
	})
}

func TestServiceFilter(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	repo.drills = map[string]Drill{
		"putting-gate":   {ID: "putting-gate", Category: "putting", Name: "Gate", Description: "putt through a gate"},
		"putting-ladder": {ID: "putting-ladder", Category: "putting", Name: "Ladder", Description: "lag putting"},
		"chipping-towel": {ID: "chipping-towel", Category: "chipping", Name: "Towel", Description: "land on the towel"},
	}

	got, err := svc.Filter(ctx, QueryFilter{Category: "Putting", Search: "gate"})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "putting-gate" {
		t.Errorf("Filter() = %v, want putting-gate only", got)
	}

	// empty filter falls through to the full listing
	all, err := svc.Filter(ctx, QueryFilter{})
	if err != nil {
		t.Fatalf("Filter() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Filter(empty) = %d drills, want 3", len(all))
	}
}

func TestServiceSeed(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	n, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if n == 0 {
		t.Fatal("Seed() = 0, want the embedded catalog")
	}
	if len(repo.drills) != n {
		t.Errorf("store holds %d drills, Seed() reported %d", len(repo.drills), n)
	}
	for id, d := range repo.drills {
		if d.Achievements[Tier1] == "" || d.Achievements[Tier2] == "" || d.Achievements[Tier3] == "" {
			t.Errorf("seeded drill %s missing tier texts: %v", id, d.Achievements)
		}
	}

	// re-seeding creates nothing new
	again, err := svc.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if again != 0 {
		t.Errorf("second Seed() = %d, want 0", again)
	}
}
