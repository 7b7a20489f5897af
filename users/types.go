package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Role is the access level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is an account bound to an external open id.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	OpenID       string    `bun:"open_id,notnull,unique" json:"openId"`
	Name         *string   `bun:"name" json:"name,omitempty"`
	Email        *string   `bun:"email" json:"email,omitempty"`
	LoginMethod  *string   `bun:"login_method" json:"loginMethod,omitempty"`
	Role         Role      `bun:"role,notnull,default:'user'" json:"role"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
	LastSignedIn time.Time `bun:"last_signed_in,nullzero,default:current_timestamp" json:"lastSignedIn"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
