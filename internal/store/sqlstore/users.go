package sqlstore

import (
	"context"
	"strings"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO app_users (email, password_hash, name, role, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), strings.ToLower(strings.TrimSpace(user.Email)), user.PasswordHash, user.Name, string(user.Role), user.Active, user.CreatedAt.UTC())
	return classify(err)
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	users := make([]domain.UserAccount, 0, 8)
	err := s.db.SelectContext(ctx, &users, `
		SELECT email, password_hash, name, role, active, created_at
		FROM app_users
		ORDER BY email
	`)
	if err != nil {
		return nil, classify(err)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, email string, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE app_users SET password_hash = ? WHERE email = ?`),
		passwordHash, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return classify(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
