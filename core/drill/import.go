package drill

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core"
)

// ImportFormat selects the bulk-import text format.
type ImportFormat string

const (
	FormatJSON ImportFormat = "json"
	FormatCSV  ImportFormat = "csv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import format; expected json or csv")
	ErrMissingColumns    = errors.New("csv is missing required columns: category, name, description, duration")
	ErrInvalidJSON       = errors.New("invalid json; expected an object keyed by category")
)

// ImportResult reports a partial-failure-tolerant import outcome.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import parses drills from r and merges them into the catalog. Malformed
// rows/records are skipped, never fatal; the result carries both counts.
func (svc *Service) Import(ctx context.Context, format ImportFormat, r io.Reader) (ImportResult, error) {
	var (
		drills  []Drill
		skipped int
		err     error
	)
	switch format {
	case FormatJSON:
		drills, skipped, err = svc.parseJSON(r)
	case FormatCSV:
		drills, skipped, err = svc.parseCSV(r)
	default:
		return ImportResult{}, ErrUnsupportedFormat
	}
	if err != nil {
		return ImportResult{}, err
	}

	imported, err := svc.repo.BulkCreateDrills(ctx, drills)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "saving imported drills")
	}
	// drills the store refused (duplicate ids) count as skips too
	skipped += len(drills) - imported
	return ImportResult{Imported: imported, Skipped: skipped}, nil
}

type importRecord struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Duration     int               `json:"duration"`
	Achievements map[string]string `json:"achievements"`
}

func (svc *Service) parseJSON(r io.Reader) ([]Drill, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading import data")
	}

	var byCategory map[string][]json.RawMessage
	if err := json.Unmarshal(data, &byCategory); err != nil {
		return nil, 0, ErrInvalidJSON
	}

	var drills []Drill
	var skipped int
	for category, records := range byCategory {
		category = core.CleanString(category, true /* lower */)
		for _, raw := range records {
			// a type-malformed record skips like a bad csv row, it never
			// aborts the whole import
			var rec importRecord
			if err := json.Unmarshal(raw, &rec); err != nil {
				skipped++
				continue
			}
			d, ok := svc.buildDrill(category, rec)
			if !ok {
				skipped++
				continue
			}
			drills = append(drills, d)
		}
	}
	return drills, skipped, nil
}

func (svc *Service) parseCSV(r io.Reader) ([]Drill, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, ErrMissingColumns
	}

	idx := func(match func(string) bool) int {
		for i, h := range header {
			if match(core.CleanString(h, true /* lower */)) {
				return i
			}
		}
		return -1
	}
	exact := func(name string) int {
		return idx(func(h string) bool { return h == name })
	}
	contains := func(names ...string) int {
		return idx(func(h string) bool {
			for _, n := range names {
				if strings.Contains(h, n) {
					return true
				}
			}
			return false
		})
	}

	categoryIdx := exact("category")
	nameIdx := exact("name")
	descriptionIdx := exact("description")
	durationIdx := exact("duration")
	if categoryIdx == -1 || nameIdx == -1 || descriptionIdx == -1 || durationIdx == -1 {
		return nil, 0, ErrMissingColumns
	}
	idIdx := exact("id")
	tierIdx := map[Tier]int{
		Tier1: contains("tier1", "beginner"),
		Tier2: contains("tier2", "intermediate"),
		Tier3: contains("tier3", "advanced"),
	}

	field := func(row []string, i int) string {
		if i >= 0 && i < len(row) {
			return core.CleanString(row[i])
		}
		return ""
	}

	var drills []Drill
	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// unparseable row, not fatal to the whole import
			skipped++
			continue
		}

		rec := importRecord{
			ID:           field(row, idIdx),
			Name:         field(row, nameIdx),
			Description:  field(row, descriptionIdx),
			Achievements: make(map[string]string, len(tierIdx)),
		}
		rec.Duration, _ = strconv.Atoi(field(row, durationIdx))
		for t, i := range tierIdx {
			if v := field(row, i); v != "" {
				rec.Achievements[string(t)] = v
			}
		}

		d, ok := svc.buildDrill(core.CleanString(field(row, categoryIdx), true /* lower */), rec)
		if !ok {
			skipped++
			continue
		}
		drills = append(drills, d)
	}
	return drills, skipped, nil
}

// buildDrill validates and normalizes one imported record; ok is false when a
// required field is missing.
func (svc *Service) buildDrill(category string, rec importRecord) (Drill, bool) {
	name := core.CleanString(rec.Name)
	description := core.CleanString(rec.Description)
	if category == "" || name == "" || description == "" {
		return Drill{}, false
	}

	duration := rec.Duration
	if duration <= 0 {
		duration = svc.conf.Practice.ImportDefaultDuration
	}

	a := make(Achievements, len(rec.Achievements))
	for k, v := range rec.Achievements {
		if t, ok := ParseTier(k); ok && v != "" {
			a[t] = v
		}
	}

	id := core.CleanString(rec.ID, true /* lower */)
	if id == "" {
		id = MakeID(category, name)
	}

	now := time.Now().UTC()
	return Drill{
		ID:           id,
		Category:     category,
		Name:         name,
		Description:  description,
		Duration:     duration,
		Achievements: withDefaultAchievements(a, name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, true
}
