package practice

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

var (
	// errors
	ErrEmptyDraft         = errors.New("no drills in this session")
	ErrSessionNotComplete = errors.New("session still has drills to run")
	ErrSessionComplete    = errors.New("session already complete")
	ErrNegativeCount      = errors.New("achieved count cannot be negative")
	ErrCancelNotConfirmed = errors.New("cancellation requires confirmation")
)

// Executor walks a draft's drills one at a time, collecting an achieved count
// per drill, and on completion computes the aggregate success rate. It is a
// pure state machine: persistence and tier promotion are the caller's job.
type Executor struct {
	entries  []DraftEntry
	results  []*DrillResult // parallel to entries; nil = not yet recorded
	idx      int
	complete bool
	conf     core.PracticeConfig

	nowFunc func() time.Time // mockable
}

// NewExecutor starts execution at the draft's first drill.
// Returns ErrEmptyDraft for a draft with no drills.
func NewExecutor(d *Draft, conf core.PracticeConfig) (*Executor, error) {
	entries := d.Entries()
	if len(entries) == 0 {
		return nil, ErrEmptyDraft
	}
	return &Executor{
		entries: entries,
		results: make([]*DrillResult, len(entries)),
		conf:    conf,
		nowFunc: time.Now,
	}, nil
}

func (e *Executor) Len() int { return len(e.entries) }

// Index reports the current drill position.
func (e *Executor) Index() int { return e.idx }

func (e *Executor) IsComplete() bool { return e.complete }

// Current returns the drill under execution; ok is false once the session is
// complete.
func (e *Executor) Current() (entry DraftEntry, ok bool) {
	if e.complete {
		return DraftEntry{}, false
	}
	return e.entries[e.idx], true
}

// Next advances to the following drill, or to the complete state from the
// last one.
func (e *Executor) Next() {
	if e.complete {
		return
	}
	if e.idx < len(e.entries)-1 {
		e.idx++
		return
	}
	e.complete = true
}

// Previous retreats one drill; no-op at the first.
func (e *Executor) Previous() {
	if e.complete || e.idx == 0 {
		return
	}
	e.idx--
}

// RecordResult attaches an achieved count to the current drill. Only the
// current drill accepts input; that, not locking, is what keeps results from
// racing.
func (e *Executor) RecordResult(achieved int) error {
	if e.complete {
		return ErrSessionComplete
	}
	if achieved < 0 {
		return ErrNegativeCount
	}
	entry := e.entries[e.idx]
	e.results[e.idx] = &DrillResult{
		Drill:       entry.Drill,
		Tier:        entry.Tier,
		Achieved:    achieved,
		Requirement: e.requirementFor(entry),
	}
	return nil
}

// requirementFor parses the target count from the configured requirement
// tier's achievement text. Note this deliberately ignores the tier stamped on
// the entry: the app has always judged every drill against the same tier's
// text (tier1 by default), and changing that silently would re-score
// everyone's history.
func (e *Executor) requirementFor(entry DraftEntry) Requirement {
	text := entry.Drill.Achievements.ForTier(drill.Tier(e.conf.RequirementTier))
	return ParseRequirement(text, e.conf.DefaultTargetCount)
}

// SessionResult is the finalized payload emitted on completion.
type SessionResult struct {
	Drills      DrillResults `json:"drills"`
	SuccessRate int          `json:"success_rate"` // 0-100
	CompletedAt time.Time    `json:"completed_at"`
}

// CompleteSession computes the success rate over exactly this session's
// drills and emits the finalized payload. Drills without a recorded result
// are scored as achieved 0 against the same requirement. The executor holds
// no further state of interest afterwards.
func (e *Executor) CompleteSession() (SessionResult, error) {
	if !e.complete {
		return SessionResult{}, ErrSessionNotComplete
	}

	results := make(DrillResults, len(e.entries))
	successes := 0
	for i, entry := range e.entries {
		if r := e.results[i]; r != nil {
			results[i] = *r
		} else {
			results[i] = DrillResult{
				Drill:       entry.Drill,
				Tier:        entry.Tier,
				Achieved:    0,
				Requirement: e.requirementFor(entry),
			}
		}
		if results[i].Success() {
			successes++
		}
	}

	rate := int(math.Round(100 * float64(successes) / float64(len(results))))
	return SessionResult{
		Drills:      results,
		SuccessRate: rate,
		CompletedAt: e.nowFunc().UTC(),
	}, nil
}

// CancelSession discards all in-progress results. It refuses to do anything
// until the caller passes an explicit confirmation; a cancelled session has
// no durable effect.
func (e *Executor) CancelSession(confirmed bool) error {
	if !confirmed {
		return ErrCancelNotConfirmed
	}
	e.results = make([]*DrillResult, len(e.entries))
	e.idx = 0
	e.complete = false
	return nil
}
