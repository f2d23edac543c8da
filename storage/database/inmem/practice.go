package inmemdb

import (
	"context"

	"github.com/smanielp/cactusgolf/core/practice"
)

type practiceRepository struct {
	db *DB
}

func NewPracticeRepository(db *DB) practice.Repository {
	return &practiceRepository{db: db}
}

func (repo *practiceRepository) AppendSession(_ context.Context, s practice.Session) (practice.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// newest first
	repo.db.sessions[s.UserID] = append([]practice.Session{s}, repo.db.sessions[s.UserID]...)
	return s, nil
}

func (repo *practiceRepository) QuerySessions(_ context.Context, userID string) ([]practice.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]practice.Session, len(repo.db.sessions[userID]))
	copy(sessions, repo.db.sessions[userID])
	return sessions, nil
}

func (repo *practiceRepository) GetSessionByID(_ context.Context, userID, id string) (practice.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.sessions[userID] {
		if s.ID == id {
			return s, nil
		}
	}
	return practice.Session{}, practice.ErrSessionNotFound
}

func (repo *practiceRepository) UpdateSession(_ context.Context, s practice.Session) (practice.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sessions := repo.db.sessions[s.UserID]
	for i, orig := range sessions {
		if orig.ID == s.ID {
			orig.Date = s.Date
			orig.Duration = s.Duration
			orig.Focus = s.Focus
			orig.Notes = s.Notes
			sessions[i] = orig
			return orig, nil
		}
	}
	return practice.Session{}, practice.ErrSessionNotFound
}

func (repo *practiceRepository) DeleteSession(_ context.Context, userID, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sessions := repo.db.sessions[userID]
	for i, s := range sessions {
		if s.ID == id {
			repo.db.sessions[userID] = append(sessions[:i], sessions[i+1:]...)
			return nil
		}
	}
	return practice.ErrSessionNotFound
}

func (repo *practiceRepository) ClearSessions(_ context.Context, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.sessions, userID)
	return nil
}

func (repo *practiceRepository) GetAchievements(_ context.Context, userID string) (practice.AchievementState, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	state := make(practice.AchievementState, len(repo.db.achievements[userID]))
	for drillID, tier := range repo.db.achievements[userID] {
		state[drillID] = tier
	}
	return state, nil
}

func (repo *practiceRepository) ReplaceAchievements(_ context.Context, userID string, state practice.AchievementState) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	next := make(practice.AchievementState, len(state))
	for drillID, tier := range state {
		next[drillID] = tier
	}
	repo.db.achievements[userID] = next
	return nil
}
