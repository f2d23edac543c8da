package drill

import (
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core"
)

// Tier is one of three ordered mastery levels tracked per drill per user.
type Tier string

const (
	Tier1 Tier = "tier1"
	Tier2 Tier = "tier2"
	Tier3 Tier = "tier3"
)

// Tiers lists all tiers in ascending mastery order.
var Tiers = []Tier{Tier1, Tier2, Tier3}

func (t Tier) Valid() bool {
	return t == Tier1 || t == Tier2 || t == Tier3
}

// Next returns the tier one level up; ok is false at the top tier.
func (t Tier) Next() (next Tier, ok bool) {
	switch t {
	case Tier1:
		return Tier2, true
	case Tier2:
		return Tier3, true
	}
	return t, false
}

// legacy achievement keys from early catalog exports
var legacyTiers = map[string]Tier{
	"beginner":     Tier1,
	"intermediate": Tier2,
	"advanced":     Tier3,
	"level1":       Tier1,
	"level2":       Tier2,
	"level3":       Tier3,
}

// ParseTier resolves a tier name, accepting the legacy beginner/intermediate/
// advanced and level1..3 spellings.
func ParseTier(s string) (Tier, bool) {
	t := Tier(core.CleanString(s, true /* lower */))
	if t.Valid() {
		return t, true
	}
	if lt, ok := legacyTiers[string(t)]; ok {
		return lt, true
	}
	return "", false
}

// Achievements maps a tier to its free-text achievement description.
type Achievements map[Tier]string

func (a Achievements) ForTier(t Tier) string { return a[t] }

// Normalize re-keys any legacy tier names and drops unknown keys.
func (a Achievements) Normalize() Achievements {
	out := make(Achievements, len(a))
	for k, v := range a {
		if t, ok := ParseTier(string(k)); ok {
			out[t] = v
		}
	}
	return out
}

// Value/Scan store Achievements as a JSONB column.

func (a Achievements) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Achievements) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return errors.Errorf("unsupported Achievements source %T", src)
}

// Drill is a named practice exercise with a duration and a three-tier
// achievement ladder. Immutable once fetched for the lifetime of a session.
type Drill struct {
	ID           string       `json:"id" db:"id"`
	Category     string       `json:"category" db:"category"`
	Name         string       `json:"name" db:"name"`
	Description  string       `json:"description" db:"description"`
	Duration     int          `json:"duration" db:"duration"` // minutes
	Achievements Achievements `json:"achievements" db:"achievements"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"` // UTC
}

// NewDrill contains information needed to create a new Drill.
type NewDrill struct {
	ID           string       `json:"id" validate:"omitempty"`
	Category     string       `json:"category" validate:"required,category"`
	Name         string       `json:"name" validate:"required"`
	Description  string       `json:"description" validate:"required"`
	Duration     int          `json:"duration" validate:"required,min=1"`
	Achievements Achievements `json:"achievements" validate:"omitempty,tiers"`
}

func (nd *NewDrill) Validate(validate *validator.Validate) error {
	nd.ID = core.CleanString(nd.ID, true /* lower */)
	nd.Category = core.CleanString(nd.Category, true /* lower */)
	nd.Name = core.CleanString(nd.Name)
	nd.Description = core.CleanString(nd.Description)
	nd.Achievements = nd.Achievements.Normalize()
	return validate.Struct(nd)
}

// UpdateDrill defines what information may be provided to modify an existing Drill.
// Empty fields keep their current values.
type UpdateDrill struct {
	Category     string       `json:"category" validate:"omitempty,category"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Duration     int          `json:"duration" validate:"omitempty,min=1"`
	Achievements Achievements `json:"achievements" validate:"omitempty,tiers"`
}

func (ud *UpdateDrill) Validate(orig Drill, validate *validator.Validate) error {
	ud.Category = core.CleanString(ud.Category, true /* lower */)
	if ud.Category == "" {
		ud.Category = orig.Category
	}
	ud.Name = core.CleanString(ud.Name)
	if ud.Name == "" {
		ud.Name = orig.Name
	}
	ud.Description = core.CleanString(ud.Description)
	if ud.Description == "" {
		ud.Description = orig.Description
	}
	if ud.Duration == 0 {
		ud.Duration = orig.Duration
	}
	if ud.Achievements == nil {
		ud.Achievements = orig.Achievements
	} else {
		ud.Achievements = ud.Achievements.Normalize()
	}
	return validate.Struct(ud)
}

// QueryFilter narrows drill queries; zero value matches everything.
type QueryFilter struct {
	Category string `query:"category"`
	Search   string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Category == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.Search = core.CleanString(qf.Search)
}

var (
	tiersTag  = "tiers"
	tiersText = "achievement keys must be tier1, tier2 or tier3"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(tiersTag, tiersValidation)
	core.RegisterCustomTranslation(validate, translator, tiersTag, tiersText)
}

func tiersValidation(fl validator.FieldLevel) bool {
	a, ok := fl.Field().Interface().(Achievements)
	if !ok {
		return false
	}
	for t := range a {
		if !t.Valid() {
			return false
		}
	}
	return true
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// MakeID derives a drill identifier from its category and name, the
// "<category>-<name-slug>" convention the catalog has always used.
func MakeID(category, name string) string {
	slug := slugRegex.ReplaceAllString(strings.ToLower(name), "-")
	return category + "-" + strings.Trim(slug, "-")
}
