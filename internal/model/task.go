package model

import "time"

// Task is a to-do item owned by exactly one user.
//
// ID, UserID and CreatedAt are set by the repository and cannot be changed
// by clients; Name and Completed are the mutable fields.
type Task struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}
