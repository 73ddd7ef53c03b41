package domain

import (
	"strings" // For email normalization
	"time"    // For creation timestamp

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM hooks
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User Model
type User struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`                     // Primary key
	Name          string    `gorm:"not null" json:"name"`                                   // Display name
	Email         string    `gorm:"type:varchar(320);uniqueIndex;not null" json:"email"`    // Lowercase unique email
	PasswordHash  string    `gorm:"not null" json:"-"`                                      // Hashed password, never serialized
	EmailVerified bool      `gorm:"not null;default:false" json:"email_verified"`           // Flips once via verification
	Role          string    `gorm:"type:varchar(16);not null;default:user" json:"role"`     // Role: user or admin
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`                       // Registration time
	Wallets       []Wallet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // One-to-many relationship with Wallet
}

// BeforeCreate assigns an id and normalizes the email before insert
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
