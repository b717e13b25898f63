package models

import "time"

// User represents a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(50);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner returns the user's own id: an account is owned by itself.
func (u User) Owner() string {
	return u.ID
}

// RegisterInput represents the request body for registration.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,min=5,max=255"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

// LoginInput represents the request body for login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountInput changes only the fields that are set.
type UpdateAccountInput struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,min=5,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8,maxbytes=72"`
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
