package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahyadri-motors/dealerdesk/pkg/db/models"
	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// UserDTO is the user shape returned by the API.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Mobile      *string        `json:"mobile,omitempty"`
	Role        enums.UserRole `json:"role"`
	BranchID    *uuid.UUID     `json:"branch_id,omitempty"`
	SubdealerID *uuid.UUID     `json:"subdealer_id,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

// FromModel maps a user row to its API shape.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Mobile:      user.Mobile,
		Role:        user.Role,
		BranchID:    user.BranchID,
		SubdealerID: user.SubdealerID,
		LastLoginAt: user.LastLoginAt,
	}
}
