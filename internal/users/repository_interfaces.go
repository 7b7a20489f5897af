package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByOpenID(ctx context.Context, openID string) (*User, error)
}

// NotFoundError is returned when a user cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "user not found"
	}
	return fmt.Sprintf("user %q not found", e.Key)
}
