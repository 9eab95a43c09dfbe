package dto

import "github.com/plannerhq/planner/internal/domain/user"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
	Plan  string `json:"plan"`
}

// UpdateUserRequest represents a user update request
type UpdateUserRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=100"`
}

// NewUserDTO maps a domain user to its API representation
func NewUserDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		Plan:  u.Plan,
	}
}
