package models

import "time"

type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // argon2id salt$hash, never serialized
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
