package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role names used by the lifecycle guards. The data model carries roles as
// rows so descriptions and permissions stay editable, but the set of names the
// state machine understands is closed.
const (
	RoleAgent      = "agent"
	RoleBankStaff  = "bank-staff"
	RoleCTO        = "cto"
	RoleN1         = "n1"
	RoleN2         = "n2"
	RoleSuperAdmin = "super-admin"
)

// User represents a staff member. A user holds exactly one role; the
// authorization logic is written against that invariant (see DESIGN.md).
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never expose in JSON
	FirstName    *string    `json:"first_name,omitempty" db:"first_name"`
	LastName     *string    `json:"last_name,omitempty" db:"last_name"`
	RoleID       uuid.UUID  `json:"role_id" db:"role_id"`
	BankID       *uuid.UUID `json:"bank_id,omitempty" db:"bank_id"`     // nil for super-admins
	AgencyID     *uuid.UUID `json:"agency_id,omitempty" db:"agency_id"` // nil above agency level
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	Role         *Role      `json:"role,omitempty" db:"-"` // Loaded separately
}

// Actor is the authenticated descriptor threaded through every lifecycle
// call. Transport-layer auth fills it; the controller re-checks only tenancy
// and role-vs-target-status compatibility.
type Actor struct {
	UserID   uuid.UUID  `json:"user_id"`
	Role     string     `json:"role"`
	BankID   *uuid.UUID `json:"bank_id,omitempty"`
	AgencyID *uuid.UUID `json:"agency_id,omitempty"`
}

// IsSuperAdmin reports whether the actor operates outside tenant scoping
func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

// Role represents a staff role
type Role struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
	Permissions []Permission `json:"permissions,omitempty" db:"-"` // Loaded separately
}

// Permission represents a specific permission
type Permission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Resource    string    `json:"resource" db:"resource"`
	Action      string    `json:"action" db:"action"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RolePermission represents the role-permission association
type RolePermission struct {
	RoleID       uuid.UUID `json:"role_id" db:"role_id"`
	PermissionID uuid.UUID `json:"permission_id" db:"permission_id"`
	GrantedAt    time.Time `json:"granted_at" db:"granted_at"`
}

// APIKey represents an API key for service-to-service callers
type APIKey struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	KeyHash    string     `json:"-" db:"key_hash"` // Never expose
	KeyPrefix  string     `json:"key_prefix" db:"key_prefix"`
	Name       string     `json:"name" db:"name"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty" db:"created_by"`
}

// RefreshToken represents a JWT refresh token
type RefreshToken struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TokenHash string     `json:"-" db:"token_hash"` // Never expose
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

// Request/Response DTOs

// RegisterRequest represents a staff registration request
type RegisterRequest struct {
	Username  string     `json:"username" validate:"required,min=3,max=50"`
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	Role      string     `json:"role" validate:"required,oneof=agent bank-staff cto n1 n2 super-admin"`
	BankID    *uuid.UUID `json:"bank_id,omitempty"`
	AgencyID  *uuid.UUID `json:"agency_id,omitempty"`
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a login response with tokens
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // seconds
	TokenType    string `json:"token_type"`
	User         User   `json:"user"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// CreateAPIKeyRequest represents a request to create an API key
type CreateAPIKeyRequest struct {
	Name      string     `json:"name" validate:"required"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CreateAPIKeyResponse represents the response when creating an API key
type CreateAPIKeyResponse struct {
	APIKey    string     `json:"api_key"` // Full key, only shown once
	KeyPrefix string     `json:"key_prefix"`
	Name      string     `json:"name"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID      uuid.UUID  `json:"user_id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	BankID      *uuid.UUID `json:"bank_id,omitempty"`
	AgencyID    *uuid.UUID `json:"agency_id,omitempty"`
	Permissions []string   `json:"permissions"`
}

// Actor builds the lifecycle actor descriptor from token claims
func (c *Claims) Actor() Actor {
	return Actor{
		UserID:   c.UserID,
		Role:     c.Role,
		BankID:   c.BankID,
		AgencyID: c.AgencyID,
	}
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func (c *Claims) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, c)
}

func (c Claims) Value() (driver.Value, error) {
	return json.Marshal(c)
}
