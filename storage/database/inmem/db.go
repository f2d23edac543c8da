// Package inmemdb provides mutex-guarded map-backed repositories. It backs
// the API when no database host is configured, and the handler tests.
package inmemdb

import (
	"sync"

	"github.com/smanielp/cactusgolf/core/drill"
	"github.com/smanielp/cactusgolf/core/practice"
	"github.com/smanielp/cactusgolf/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users        map[string]*user.User
	drills       map[string]*drill.Drill
	sessions     map[string][]practice.Session          // keyed by user ID, newest first
	achievements map[string]practice.AchievementState   // keyed by user ID
}

func NewDB() *DB {
	return &DB{
		users:        make(map[string]*user.User),
		drills:       make(map[string]*drill.Drill),
		sessions:     make(map[string][]practice.Session),
		achievements: make(map[string]practice.AchievementState),
	}
}
