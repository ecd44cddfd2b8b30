package models

import "time"

type User struct {
	ID         int       `json:"-"`
	UserID     string    `json:"user_id"`
	SecretCode []byte    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateUserRequest struct {
	SecretCode string `json:"secret_code" binding:"required"`
}

// CreatedUser echoes the credential pair back to the caller once, at signup.
// The secret is never readable again afterwards.
type CreatedUser struct {
	UserID     string `json:"user_id"`
	SecretCode string `json:"secret_code"`
}
