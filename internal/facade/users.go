package facade

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

// Users reads login accounts from the primary store and falls back to the
// Mock Dataset users when that read fails. Writes only go to the primary.
type Users struct {
	primary  store.UserStore
	fallback store.UserStore
}

func NewUsers(primary store.UserStore, fallback store.UserStore) *Users {
	return &Users{primary: primary, fallback: fallback}
}

func (u *Users) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	users, err := u.primary.ListUsers(ctx)
	if err == nil || u.fallback == nil {
		return users, err
	}
	log.Warn().Str("component", "facade").Err(err).Msg("remote user list failed, serving mock users")
	return u.fallback.ListUsers(ctx)
}

func (u *Users) CreateUser(ctx context.Context, user domain.UserAccount) error {
	return u.primary.CreateUser(ctx, user)
}

func (u *Users) UpdateUserPassword(ctx context.Context, email string, passwordHash string) error {
	return u.primary.UpdateUserPassword(ctx, email, passwordHash)
}

// SeedUsers copies the fallback accounts into an empty primary store so a
// fresh database has someone to log in as.
func (u *Users) SeedUsers(ctx context.Context) (int, error) {
	if u.fallback == nil {
		return 0, nil
	}
	existing, err := u.primary.ListUsers(ctx)
	if err != nil || len(existing) > 0 {
		return 0, err
	}
	seed, err := u.fallback.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	for _, user := range seed {
		if err := u.primary.CreateUser(ctx, user); err != nil {
			return 0, err
		}
	}
	return len(seed), nil
}

var _ store.UserStore = (*Users)(nil)
