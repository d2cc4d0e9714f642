package model

import "time"

// User represents a user in the credential store.
// The session token list and the avatar live alongside the user in the store
// but are only reachable through their dedicated repository methods.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the result of verifying a bearer token: the user it belongs to
// and the exact token that was presented.
type Session struct {
	User  User
	Token string
}

// CreateUserRequest represents a signup request.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=7,nopassword"`
	Age      *int   `json:"age" validate:"omitempty,min=0"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is a partial profile update. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=7,nopassword"`
	Age      *int    `json:"age" validate:"omitempty,min=0"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// UserResponse represents user data safe for API responses (no hash, tokens or avatar).
type UserResponse struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUserResponse strips the stored user down to its public fields.
func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
