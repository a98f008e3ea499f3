package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role enum constants
const (
	RoleAdmin     = "admin"
	RoleAgent     = "agent"
	RoleEstimator = "estimator"
	RoleInspector = "inspector"
	RoleCustomer  = "customer"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName  string         `gorm:"type:varchar(255);not null" json:"full_name"`
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	Password  string         `gorm:"type:varchar(255);not null" json:"-"`   // Omit password from JSON requests/responses
	Role      string         `gorm:"type:varchar(50);not null" json:"role"` // admin, agent, estimator, inspector, customer
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// PasswordResetToken is a single-use token issued by the forgot-password flow
type PasswordResetToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	UsedAt    *time.Time `json:"used_at"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// ValidRole reports whether role is one of the five application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent, RoleEstimator, RoleInspector, RoleCustomer:
		return true
	}
	return false
}

// HomePath maps a role to the dashboard path the client lands on after login.
func HomePath(role string) string {
	switch role {
	case RoleAdmin:
		return "/admin"
	case RoleAgent:
		return "/agent"
	case RoleEstimator:
		return "/estimator"
	case RoleInspector:
		return "/inspector/dashboard"
	case RoleCustomer:
		return "/customer-dashboard"
	}
	return "/login"
}
