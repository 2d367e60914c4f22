package domain

import "time"

// User models a registered account holder.
type User struct {
	ID           string    `json:"user_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	PhoneNo      *string   `json:"phone_no"`
	CreatedAt    time.Time `json:"created_at"`
}
