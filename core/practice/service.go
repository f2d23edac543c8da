package practice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/smanielp/cactusgolf/core"
	"github.com/smanielp/cactusgolf/core/drill"
)

var (
	// errors
	ErrSessionNotFound = errors.New("session not found")
)

type (
	// Repository persists a user's journal and achievement tiers. The local
	// fallback store and the durable database both satisfy it.
	Repository interface {
		// AppendSession prepends s to the user's journal (newest first).
		AppendSession(ctx context.Context, s Session) (Session, error)
		// QuerySessions returns the journal newest-first.
		QuerySessions(ctx context.Context, userID string) ([]Session, error)
		GetSessionByID(ctx context.Context, userID, id string) (Session, error)
		UpdateSession(ctx context.Context, s Session) (Session, error)
		DeleteSession(ctx context.Context, userID, id string) error
		// ClearSessions empties the user's journal (local-to-durable migration).
		ClearSessions(ctx context.Context, userID string) error

		GetAchievements(ctx context.Context, userID string) (AchievementState, error)
		ReplaceAchievements(ctx context.Context, userID string, state AchievementState) error
	}

	Service struct {
		repo     Repository
		fallback Repository // device-scoped store for the no-identity mode
		logger   core.Logger
		conf     *core.Config

		nowFunc func() time.Time // mockable
	}
)

func NewService(repo, fallback Repository, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		fallback: fallback,
		logger:   logger,
		conf:     conf,
		nowFunc:  time.Now,
	}
}

// repoFor picks the store for a request: the durable repository for an
// authenticated user, the local fallback otherwise.
func (svc *Service) repoFor(userID string) Repository {
	if userID == "" && svc.fallback != nil {
		return svc.fallback
	}
	return svc.repo
}

// NewDraft starts a session draft over the user's current achievement state.
func (svc *Service) NewDraft(ctx context.Context, userID string) (*Draft, error) {
	state, err := svc.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewDraft(state, svc.conf.Practice), nil
}

// Log records a manually entered practice session. Date defaults to today.
func (svc *Service) Log(ctx context.Context, userID string, ns NewSession) (Session, error) {
	now := svc.nowFunc().UTC()
	date := ns.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	s := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      date,
		Duration:  ns.Duration,
		Focus:     ns.Focus,
		Notes:     ns.Notes,
		CreatedAt: now,
	}
	return svc.repoFor(userID).AppendSession(ctx, s)
}

// Journal returns the user's sessions newest-first. When the durable store is
// unreachable it degrades to the local fallback rather than failing the view.
func (svc *Service) Journal(ctx context.Context, userID string) ([]Session, error) {
	repo := svc.repoFor(userID)
	sessions, err := repo.QuerySessions(ctx, userID)
	if err != nil && repo != svc.fallback && svc.fallback != nil {
		svc.logger.Warn(fmt.Sprintf("journal unavailable, using local fallback: %v", err), err)
		return svc.fallback.QuerySessions(ctx, userID)
	}
	return sessions, err
}

func (svc *Service) GetSession(ctx context.Context, userID, id string) (Session, error) {
	return svc.repoFor(userID).GetSessionByID(ctx, userID, id)
}

func (svc *Service) Update(ctx context.Context, userID, id string, us UpdateSession) (Session, error) {
	s := Session{
		ID:       id,
		UserID:   userID,
		Date:     us.Date,
		Duration: us.Duration,
		Focus:    us.Focus,
		Notes:    us.Notes,
	}
	return svc.repoFor(userID).UpdateSession(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, userID, id string) error {
	return svc.repoFor(userID).DeleteSession(ctx, userID, id)
}

// Achievements returns the user's tier map; an unreachable store degrades to
// empty state (every drill at the default tier), never an error for readers.
func (svc *Service) Achievements(ctx context.Context, userID string) (AchievementState, error) {
	state, err := svc.repoFor(userID).GetAchievements(ctx, userID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("achievements unavailable, assuming defaults: %v", err), err)
		return AchievementState{}, nil
	}
	if state == nil {
		state = AchievementState{}
	}
	return state, nil
}

// SetAchievement manually pins a drill's tier, the way the catalog page lets
// users pick the level they are practicing at.
func (svc *Service) SetAchievement(ctx context.Context, userID, drillID string, tier drill.Tier) (AchievementState, error) {
	state, err := svc.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := state.clone()
	next[drillID] = tier
	if err := svc.repoFor(userID).ReplaceAchievements(ctx, userID, next); err != nil {
		return nil, errors.Wrap(err, "saving achievements")
	}
	return next, nil
}

// CompleteSession turns an executor's finalized result into a journal entry
// and applies tier promotion. This is the only place promotion happens; a
// cancelled session never reaches it.
func (svc *Service) CompleteSession(ctx context.Context, userID string, res SessionResult) (Session, error) {
	if len(res.Drills) == 0 {
		return Session{}, ErrEmptyDraft
	}

	duration := 0
	seen := make(map[string]bool)
	var focus []string
	for _, r := range res.Drills {
		duration += r.Drill.Duration
		if !seen[r.Drill.Category] {
			seen[r.Drill.Category] = true
			focus = append(focus, r.Drill.Category)
		}
	}

	s := Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		Date:        res.CompletedAt.UTC().Format("2006-01-02"),
		Duration:    duration,
		Focus:       strings.Join(focus, ", "),
		Notes:       fmt.Sprintf("Completed practice session with %d%% success rate", res.SuccessRate),
		Drills:      res.Drills,
		SuccessRate: null.IntFrom(res.SuccessRate),
		CompletedAt: null.TimeFrom(res.CompletedAt.UTC()),
		CreatedAt:   svc.nowFunc().UTC(),
	}

	repo := svc.repoFor(userID)
	saved, err := repo.AppendSession(ctx, s)
	if err != nil {
		return Session{}, errors.Wrap(err, "saving completed session")
	}

	state, err := svc.Achievements(ctx, userID)
	if err != nil {
		return saved, err
	}
	promoted := Promote(state, res.Drills, drill.Tier(svc.conf.Practice.DefaultTier))
	if err := repo.ReplaceAchievements(ctx, userID, promoted); err != nil {
		// the journal entry is already durable; report but keep it
		return saved, errors.Wrap(err, "saving promoted achievements")
	}
	return saved, nil
}

// SavePlan stores a generated plan as a planned (not yet completed) session.
func (svc *Service) SavePlan(ctx context.Context, userID string, p Plan) (Session, error) {
	now := svc.nowFunc().UTC()
	s := Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Date:      now.Format("2006-01-02"),
		Duration:  p.TotalMinutes,
		Focus:     strings.Join(p.FocusAreas, ", "),
		Notes:     p.Notes(),
		Planned:   true,
		CreatedAt: now,
	}
	return svc.repoFor(userID).AppendSession(ctx, s)
}

// MigrateLocal copies the device-scoped fallback journal and achievements
// into the durable store for an authenticated user, then clears the local
// copies. Returns how many sessions were migrated.
func (svc *Service) MigrateLocal(ctx context.Context, userID string) (int, error) {
	if userID == "" || svc.fallback == nil {
		return 0, nil
	}

	sessions, err := svc.fallback.QuerySessions(ctx, "")
	if err != nil {
		return 0, errors.Wrap(err, "reading local sessions")
	}
	// append oldest first so the durable journal keeps newest-first order
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		s.UserID = userID
		if _, err := svc.repo.AppendSession(ctx, s); err != nil {
			return 0, errors.Wrap(err, "migrating session")
		}
	}

	state, err := svc.fallback.GetAchievements(ctx, "")
	if err == nil && len(state) > 0 {
		if err := svc.repo.ReplaceAchievements(ctx, userID, state); err != nil {
			return 0, errors.Wrap(err, "migrating achievements")
		}
	}

	if err := svc.fallback.ClearSessions(ctx, ""); err != nil {
		return len(sessions), errors.Wrap(err, "clearing local sessions")
	}
	if err := svc.fallback.ReplaceAchievements(ctx, "", AchievementState{}); err != nil {
		return len(sessions), errors.Wrap(err, "clearing local achievements")
	}
	return len(sessions), nil
}
