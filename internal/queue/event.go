// Package queue defines the domain events exchanged over the message broker
// and the consumer that records them in the audit log.
package queue

import (
	"time"

	"github.com/iliyamo/task-tracker/internal/model"
)

// Event types. Consumers switch on these strings.
const (
	TypeUserRegistered = "user.registered"
	TypeSessionCreated = "session.created"
	TypeTaskCreated    = "task.created"
	TypeTaskUpdated    = "task.updated"
	TypeTaskDeleted    = "task.deleted"
)

// Event is the payload of every message on the events queue. It never
// carries passwords, hashes or session tokens.
type Event struct {
	Type       string `json:"type"`
	UserID     int64  `json:"user_id"`
	TaskID     int64  `json:"task_id,omitempty"`
	TaskName   string `json:"task_name,omitempty"`
	Completed  *bool  `json:"completed,omitempty"`
	OccurredAt string `json:"occurred_at"`
}

func stamp() string { return time.Now().UTC().Format(time.RFC3339) }

// UserRegistered describes a new account.
func UserRegistered(u model.User) Event {
	return Event{Type: TypeUserRegistered, UserID: u.ID, OccurredAt: stamp()}
}

// SessionCreated records a successful login.
func SessionCreated(s model.Session) Event {
	return Event{Type: TypeSessionCreated, UserID: s.UserID, OccurredAt: stamp()}
}

// TaskCreated, TaskUpdated and TaskDeleted describe task mutations.
func TaskCreated(t model.Task) Event { return taskEvent(TypeTaskCreated, t) }

func TaskUpdated(t model.Task) Event { return taskEvent(TypeTaskUpdated, t) }

func TaskDeleted(userID, taskID int64) Event {
	return Event{Type: TypeTaskDeleted, UserID: userID, TaskID: taskID, OccurredAt: stamp()}
}

func taskEvent(typ string, t model.Task) Event {
	done := t.Completed
	return Event{
		Type:       typ,
		UserID:     t.UserID,
		TaskID:     t.ID,
		TaskName:   t.Name,
		Completed:  &done,
		OccurredAt: stamp(),
	}
}
