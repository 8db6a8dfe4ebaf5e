package models

import "time"

// User statuses.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// Role names, ordered by privilege.
const (
	RoleVoter      = "voter"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// User is an identity record created at registration.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"size:255;not null" json:"name"`
	Email               string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone               string     `gorm:"size:32" json:"phone"`
	PasswordHash        string     `gorm:"size:255;not null" json:"-"`
	Status              string     `gorm:"size:32;not null;default:active" json:"status"`
	SecurityAnswersHash string     `gorm:"size:255" json:"-"`
	IDDocumentNumber    string     `gorm:"size:64" json:"-"`
	BiometricConsent    bool       `gorm:"not null;default:false" json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Roles []UserRole `json:"roles"`
}

// UserRole attaches a role to a user. A user holds one row per role.
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_user_roles_user_role,unique;not null" json:"user_id"`
	Role      string    `gorm:"size:32;index:idx_user_roles_user_role,unique;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSession records an issued session token. Sessions are revoked on
// logout and removed when the owning user is deleted.
type UserSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenID   string    `gorm:"size:64;uniqueIndex;not null" json:"token_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RoleNames flattens the role rows into plain strings.
func (u User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, role.Role)
	}
	return names
}

// HasRole reports whether the user holds the given role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}
