package models

import "time"

// Task is a single to-do item. Tasks are never physically removed; Deleted
// marks them as soft-deleted and restorable.
type Task struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Detail    string    `json:"detail" db:"detail"`
	Deadline  time.Time `json:"deadline" db:"deadline"`
	Deleted   bool      `json:"del_flg" db:"del_flg"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
