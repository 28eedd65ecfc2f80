package repository

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/store"
)

// TaskInput carries the client-controlled fields of a new task.
type TaskInput struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// TaskPatch lists the mutable task fields. A nil field is left unchanged.
// id, userId and createdAt have no counterpart here, so a patch can never
// touch them, and keys the task does not have are dropped at decode time.
type TaskPatch struct {
	Name      *string `json:"name"`
	Completed *bool   `json:"completed"`
}

// TaskRepo owns tasks.json. Every operation is scoped to an owner: tasks
// of other users behave exactly as if they did not exist.
type TaskRepo struct {
	mu       sync.Mutex
	store    *store.Store
	counters *Counters
	now      func() time.Time
	tasks    []model.Task
}

// NewTaskRepo loads tasks.json and makes sure the task counter is not behind
// the highest stored id.
func NewTaskRepo(s *store.Store, counters *Counters) *TaskRepo {
	tasks := store.Load(s, store.Tasks, []model.Task{})
	var maxID int64
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	counters.observeTasks(maxID)
	return &TaskRepo{store: s, counters: counters, now: time.Now, tasks: tasks}
}

// List returns the owner's tasks in insertion order.
func (r *TaskRepo) List(ownerID int64) []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			out = append(out, t)
		}
	}
	return out
}

// Get returns one of the owner's tasks.
func (r *TaskRepo) Get(ownerID, id int64) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(ownerID, id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	return r.tasks[i], nil
}

// Create assigns the next task id, stamps the owner and persists the task.
func (r *TaskRepo) Create(ownerID int64, in TaskInput) (model.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Task{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := model.Task{
		ID:        r.counters.NextTaskID(),
		UserID:    ownerID,
		Name:      name,
		Completed: in.Completed,
		CreatedAt: r.now().UTC(),
	}
	r.tasks = append(r.tasks, t)
	r.store.Save(store.Tasks, r.tasks)
	return t, nil
}

// Update applies patch to one of the owner's tasks.
func (r *TaskRepo) Update(ownerID, id int64, patch TaskPatch) (model.Task, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return model.Task{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(ownerID, id)
	if i < 0 {
		return model.Task{}, ErrNotFound
	}
	t := r.tasks[i]
	if patch.Name != nil {
		t.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	r.tasks[i] = t
	r.store.Save(store.Tasks, r.tasks)
	return t, nil
}

// Delete removes one of the owner's tasks permanently.
func (r *TaskRepo) Delete(ownerID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(ownerID, id)
	if i < 0 {
		return ErrNotFound
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	r.store.Save(store.Tasks, r.tasks)
	return nil
}

func (r *TaskRepo) indexLocked(ownerID, id int64) int {
	for i, t := range r.tasks {
		if t.ID == id && t.UserID == ownerID {
			return i
		}
	}
	return -1
}
