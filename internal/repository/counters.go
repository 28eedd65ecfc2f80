package repository

import (
	"sync"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
)

// Counters hands out monotonic user and task ids and persists lastIDs.json
// on every allocation, before the caller persists the entity that consumes
// the id. A crash between the two writes can skip an id but never reuse one.
type Counters struct {
	mu    sync.Mutex
	store *store.Store
	ids   model.IDCounters
}

func NewCounters(s *store.Store) *Counters {
	return &Counters{
		store: s,
		ids:   store.Load(s, store.LastIDs, model.IDCounters{}),
	}
}

// NextUserID allocates the next user id.
func (c *Counters) NextUserID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids.LastUserID++
	c.store.Save(store.LastIDs, c.ids)
	return c.ids.LastUserID
}

// NextTaskID allocates the next task id.
func (c *Counters) NextTaskID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids.LastTaskID++
	c.store.Save(store.LastIDs, c.ids)
	return c.ids.LastTaskID
}

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() model.IDCounters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids
}

// observeUsers raises LastUserID to at least maxID.
func (c *Counters) observeUsers(maxID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxID > c.ids.LastUserID {
		c.ids.LastUserID = maxID
		c.store.Save(store.LastIDs, c.ids)
	}
}

// observeTasks raises LastTaskID to at least maxID.
func (c *Counters) observeTasks(maxID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if maxID > c.ids.LastTaskID {
		c.ids.LastTaskID = maxID
		c.store.Save(store.LastIDs, c.ids)
	}
}
