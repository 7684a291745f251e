package entity

import "time"

// User represents an account row in the `users` table.
type User struct {
	ID              int64     `db:"id" json:"id"`
	Email           string    `db:"email" json:"email"`
	Name            string    `db:"name" json:"name"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	IsAdmin         bool      `db:"is_admin" json:"is_admin"`
	IsLoyaltyMember bool      `db:"is_loyalty_member" json:"is_loyalty_member"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
