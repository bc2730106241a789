package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// User is a dealership identity: admin, branch staff or subdealer user.
// Branch staff carry BranchID; subdealer users carry SubdealerID.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;not null"`
	Mobile       *string        `gorm:"column:mobile"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	BranchID     *uuid.UUID     `gorm:"column:branch_id;type:uuid"`
	SubdealerID  *uuid.UUID     `gorm:"column:subdealer_id;type:uuid"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
