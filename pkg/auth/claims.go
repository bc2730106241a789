package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sahyadri-motors/dealerdesk/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Branch staff carry BranchID; subdealer users carry SubdealerID.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Role        enums.UserRole
	BranchID    *uuid.UUID
	SubdealerID *uuid.UUID
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID      `json:"user_id"`
	Role        enums.UserRole `json:"role"`
	BranchID    *uuid.UUID     `json:"branch_id,omitempty"`
	SubdealerID *uuid.UUID     `json:"subdealer_id,omitempty"`
	jwt.RegisteredClaims
}
