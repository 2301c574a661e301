package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no profile document exists for an identity.
// An authenticated account without a profile is an inconsistent state; the
// caller is expected to sign the identity out and ask for re-registration.
var ErrNotFound = errors.New("user profile not found")

type (
	Repository interface {
		// CreateUser writes the profile document keyed by usr.UID.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByUID(ctx context.Context, uid string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores the profile for a freshly created identity.
func (svc *Service) Register(ctx context.Context, uid string, nu NewUser) (User, error) {
	usr := User{
		UID:       uid,
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByUID(ctx context.Context, uid string) (User, error) {
	return svc.repo.GetUserByUID(ctx, uid)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, email)
}
