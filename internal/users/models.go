package users

import (
	"time"

	"github.com/goliatone/go-manual/users"
)

type (
	User = users.User
	Role = users.Role
)

const (
	RoleUser  = users.RoleUser
	RoleAdmin = users.RoleAdmin
)

// UpsertInput identifies a user by OpenID and carries profile fields. Unset
// fields keep their stored value on update.
type UpsertInput struct {
	OpenID       string     `json:"openId"`
	Name         *string    `json:"name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	LoginMethod  *string    `json:"loginMethod,omitempty"`
	Role         *Role      `json:"role,omitempty"`
	LastSignedIn *time.Time `json:"lastSignedIn,omitempty"`
}
