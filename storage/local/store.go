// Package local implements the device-scoped fallback store used when no
// identity or durable database is available. Sessions and achievement tiers
// live in two well-known JSON files under the configured data directory, and
// every write replaces the whole file.
package local

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/smanielp/cactusgolf/core/practice"
)

const (
	sessionsFile     = "golf_sessions.json"
	achievementsFile = "drill_achievements.json"
)

type Store struct {
	dir   string
	mutex sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	return &Store{dir: dir}, nil
}

// readFile unmarshals the named file into v. A missing file is not an error;
// v keeps its zero value.
func (st *Store) readFile(name string, v interface{}) error {
	data, err := ioutil.ReadFile(filepath.Join(st.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "reading %s", name)
	}
	if len(data) == 0 {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decoding %s", name)
}

// writeFile atomically replaces the named file with the encoding of v.
func (st *Store) writeFile(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", name)
	}
	path := filepath.Join(st.dir, name)
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	return errors.Wrapf(os.Rename(tmp, path), "replacing %s", name)
}

func (st *Store) readSessions() ([]practice.Session, error) {
	var sessions []practice.Session
	if err := st.readFile(sessionsFile, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (st *Store) AppendSession(_ context.Context, s practice.Session) (practice.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sessions, err := st.readSessions()
	if err != nil {
		return practice.Session{}, err
	}
	// newest first
	sessions = append([]practice.Session{s}, sessions...)
	if err := st.writeFile(sessionsFile, sessions); err != nil {
		return practice.Session{}, err
	}
	return s, nil
}

func (st *Store) QuerySessions(_ context.Context, _ string) ([]practice.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sessions, err := st.readSessions()
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = make([]practice.Session, 0)
	}
	return sessions, nil
}

func (st *Store) GetSessionByID(_ context.Context, _, id string) (practice.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sessions, err := st.readSessions()
	if err != nil {
		return practice.Session{}, err
	}
	for _, s := range sessions {
		if s.ID == id {
			return s, nil
		}
	}
	return practice.Session{}, practice.ErrSessionNotFound
}

func (st *Store) UpdateSession(_ context.Context, s practice.Session) (practice.Session, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sessions, err := st.readSessions()
	if err != nil {
		return practice.Session{}, err
	}
	for i, orig := range sessions {
		if orig.ID == s.ID {
			orig.Date = s.Date
			orig.Duration = s.Duration
			orig.Focus = s.Focus
			orig.Notes = s.Notes
			sessions[i] = orig
			if err := st.writeFile(sessionsFile, sessions); err != nil {
				return practice.Session{}, err
			}
			return orig, nil
		}
	}
	return practice.Session{}, practice.ErrSessionNotFound
}

func (st *Store) DeleteSession(_ context.Context, _, id string) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	sessions, err := st.readSessions()
	if err != nil {
		return err
	}
	for i, s := range sessions {
		if s.ID == id {
			sessions = append(sessions[:i], sessions[i+1:]...)
			return st.writeFile(sessionsFile, sessions)
		}
	}
	return practice.ErrSessionNotFound
}

func (st *Store) ClearSessions(_ context.Context, _ string) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return st.writeFile(sessionsFile, []practice.Session{})
}

func (st *Store) GetAchievements(_ context.Context, _ string) (practice.AchievementState, error) {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	state := make(practice.AchievementState)
	if err := st.readFile(achievementsFile, &state); err != nil {
		return nil, err
	}
	return state, nil
}

func (st *Store) ReplaceAchievements(_ context.Context, _ string, state practice.AchievementState) error {
	st.mutex.Lock()
	defer st.mutex.Unlock()

	if state == nil {
		state = practice.AchievementState{}
	}
	return st.writeFile(achievementsFile, state)
}
