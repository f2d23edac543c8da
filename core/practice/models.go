package practice

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

// FocusAreas is the fixed enumeration offered by the manual journal form.
var FocusAreas = []string{"driving", "irons", "wedges", "chipping", "putting", "bunker", "full-round"}

// DrillResult is the outcome recorded for one drill of an executed session:
// the achieved count judged against the requirement snapshot captured when
// execution started.
type DrillResult struct {
	Drill       drill.Drill `json:"drill"`
	Tier        drill.Tier  `json:"tier"` // tier held at selection time
	Achieved    int         `json:"achieved"`
	Requirement Requirement `json:"requirement"`
}

// Success reports whether the achieved count met the requirement.
func (r DrillResult) Success() bool { return r.Achieved >= r.Requirement.Count }

// DrillResults is stored as a JSONB column on a session row.
type DrillResults []DrillResult

func (rs DrillResults) Value() (driver.Value, error) {
	if rs == nil {
		return nil, nil
	}
	return json.Marshal(rs)
}

func (rs *DrillResults) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*rs = nil
		return nil
	case []byte:
		return json.Unmarshal(v, rs)
	case string:
		return json.Unmarshal([]byte(v), rs)
	}
	return errors.Errorf("unsupported DrillResults source %T", src)
}

// Session is a journal entry: either a manually logged practice or the saved
// outcome of an executed drill session. Never mutated after creation except
// by update/delete of the whole entry.
type Session struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"-" db:"user_id"`
	Date        string       `json:"date" db:"date"` // ISO calendar date
	Duration    int          `json:"duration" db:"duration"`
	Focus       string       `json:"focus" db:"focus"`
	Notes       string       `json:"notes" db:"notes"`
	Drills      DrillResults `json:"drills,omitempty" db:"drills"`
	SuccessRate null.Int     `json:"success_rate,omitempty" db:"success_rate"`
	CompletedAt null.Time    `json:"completed_at,omitempty" db:"completed_at"`
	Planned     bool         `json:"planned,omitempty" db:"planned"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"` // UTC
}

// NewSession contains information needed to log a session manually.
type NewSession struct {
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Duration int    `json:"duration" validate:"required,min=1"`
	Focus    string `json:"focus" validate:"required,focus"`
	Notes    string `json:"notes"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Date = core.CleanString(ns.Date)
	ns.Focus = core.CleanString(ns.Focus, true /* lower */)
	ns.Notes = core.CleanString(ns.Notes)
	return validate.Struct(ns)
}

// UpdateSession defines what may be modified on an existing journal entry.
// Empty fields keep their current values.
type UpdateSession struct {
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Duration int    `json:"duration" validate:"omitempty,min=1"`
	Focus    string `json:"focus" validate:"omitempty,focus"`
	Notes    string `json:"notes"`
}

func (us *UpdateSession) Validate(orig Session, validate *validator.Validate) error {
	us.Date = core.CleanString(us.Date)
	if us.Date == "" {
		us.Date = orig.Date
	}
	us.Focus = core.CleanString(us.Focus, true /* lower */)
	if us.Focus == "" {
		us.Focus = orig.Focus
	}
	if us.Duration == 0 {
		us.Duration = orig.Duration
	}
	us.Notes = core.CleanString(us.Notes)
	if us.Notes == "" {
		us.Notes = orig.Notes
	}
	return validate.Struct(us)
}

var (
	focusTag  = "focus"
	focusText = "must be one of: driving, irons, wedges, chipping, putting, bunker, full-round"

	tierTag  = "tier"
	tierText = "must be one of: tier1, tier2, tier3"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(focusTag, focusValidation)
	core.RegisterCustomTranslation(validate, translator, focusTag, focusText)

	_ = validate.RegisterValidation(tierTag, tierValidation)
	core.RegisterCustomTranslation(validate, translator, tierTag, tierText)
}

func focusValidation(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	for _, fa := range FocusAreas {
		if v == fa {
			return true
		}
	}
	return false
}

func tierValidation(fl validator.FieldLevel) bool {
	return drill.Tier(fl.Field().String()).Valid()
}
