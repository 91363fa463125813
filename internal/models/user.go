package models

import "time"

// User represents a registered account. Accounts created through GitHub
// OAuth carry a "github_" prefixed ID and an empty password hash.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Password  string    `json:"-" db:"password"`
	ImgPath   string    `json:"img_path" db:"img_path"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOAuthOnly reports whether the account has no local credential and can
// only sign in through an external provider.
func (u *User) IsOAuthOnly() bool {
	return u.Password == ""
}
