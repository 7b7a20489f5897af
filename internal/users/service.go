package users

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-manual/internal/identity"
	"github.com/goliatone/go-manual/internal/logging"
	manualvalidation "github.com/goliatone/go-manual/internal/validation"
	"github.com/goliatone/go-manual/pkg/interfaces"
	"github.com/google/uuid"
)

// Service manages user accounts.
type Service interface {
	Upsert(ctx context.Context, input UpsertInput) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByOpenID(ctx context.Context, openID string) (*User, error)
}

var ErrUserRepositoryRequired = errors.New("users: repository required")

const scope = "users"

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOwner marks the user with openID as an admin whenever it signs in.
func WithOwner(openID string) ServiceOption {
	return func(s *service) {
		s.owner = strings.TrimSpace(openID)
	}
}

type service struct {
	repo   UserRepository
	logger interfaces.Logger
	now    func() time.Time
	owner  string
}

// NewService constructs a users service instance.
func NewService(repo UserRepository, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrUserRepositoryRequired)
	}
	s := &service{
		repo:   repo,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*User, error) {
	input.OpenID = strings.TrimSpace(input.OpenID)
	if err := manualvalidation.FromOzzo(scope, validation.ValidateStruct(&input,
		validation.Field(&input.OpenID, validation.Required, validation.RuneLength(1, 64)),
		validation.Field(&input.Role, validation.When(input.Role != nil, validation.In(RoleUser, RoleAdmin))),
	)); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	signedIn := now
	if input.LastSignedIn != nil {
		signedIn = input.LastSignedIn.UTC()
	}

	existing, err := s.repo.GetByOpenID(ctx, input.OpenID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if existing == nil {
		record := &User{
			ID:           identity.UserUUID(input.OpenID),
			OpenID:       input.OpenID,
			Name:         input.Name,
			Email:        input.Email,
			LoginMethod:  input.LoginMethod,
			Role:         RoleUser,
			CreatedAt:    now,
			UpdatedAt:    now,
			LastSignedIn: signedIn,
		}
		if input.Role != nil {
			record.Role = *input.Role
		}
		s.applyOwner(record)
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return nil, err
		}
		s.logger.Info("users.created", "user_id", created.ID, "role", created.Role)
		return cloneUser(created), nil
	}

	if input.Name != nil {
		existing.Name = input.Name
	}
	if input.Email != nil {
		existing.Email = input.Email
	}
	if input.LoginMethod != nil {
		existing.LoginMethod = input.LoginMethod
	}
	if input.Role != nil {
		existing.Role = *input.Role
	}
	s.applyOwner(existing)
	existing.UpdatedAt = now
	existing.LastSignedIn = signedIn

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("users.signed_in", "user_id", updated.ID)
	return cloneUser(updated), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloneUser(record), nil
}

func (s *service) GetByOpenID(ctx context.Context, openID string) (*User, error) {
	openID = strings.TrimSpace(openID)
	if openID == "" {
		return nil, &NotFoundError{}
	}
	record, err := s.repo.GetByOpenID(ctx, openID)
	if err != nil {
		return nil, err
	}
	return cloneUser(record), nil
}

func (s *service) applyOwner(user *User) {
	if s.owner != "" && user.OpenID == s.owner {
		user.Role = RoleAdmin
	}
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
