package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/sudlafakiew/patricia-clinic2025/internal/domain"
	"github.com/sudlafakiew/patricia-clinic2025/internal/store"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInactiveAccount    = errors.New("account is inactive")
	errInvalidToken       = errors.New("invalid or expired token")
)

const usersTable = domain.Table("app_users")

type AuthManager struct {
	mu        sync.RWMutex
	secret    []byte
	tokenTTL  time.Duration
	userStore store.UserStore
	users     map[string]domain.UserAccount
}

type clinicClaims struct {
	jwtlib.RegisteredClaims
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, userStore store.UserStore) *AuthManager {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	manager := &AuthManager{
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		userStore: userStore,
		users:     make(map[string]domain.UserAccount),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	manager.bootstrapUsers(ctx)
	return manager
}

func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	a.bootstrapUsers(ctx)
	email := normalizeEmail(req.Email)
	a.mu.RLock()
	user, ok := a.users[email]
	a.mu.RUnlock()
	if !ok {
		// Unknown accounts pay the same bcrypt cost as a wrong password.
		verifyPassword(unknownUserHash(), req.Password)
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !verifyPassword(user.PasswordHash, req.Password) {
		return domain.LoginResponse{}, errInvalidCredentials
	}
	if !user.Active {
		return domain.LoginResponse{}, errInactiveAccount
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(user, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	return domain.LoginResponse{
		AccessToken: token,
		Name:        user.Name,
		Role:        user.Role,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &clinicClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errInvalidToken
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" || !claims.Role.Valid() {
		return domain.Actor{}, errInvalidToken
	}
	return domain.Actor{Email: sub, Name: claims.Name, Role: claims.Role}, nil
}

func (a *AuthManager) sign(user domain.UserAccount, expiresAt time.Time) (string, error) {
	claims := clinicClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "patricia-clinic",
		},
		Name: user.Name,
		Role: user.Role,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthManager) CreateUser(ctx context.Context, req domain.UserCreateRequest) (domain.UserAccount, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(usersTable, req); err != nil {
		return domain.UserAccount{}, err
	}
	email := req.Email

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return domain.UserAccount{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.UserAccount{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.userStore.CreateUser(ctx, user); err != nil {
		return domain.UserAccount{}, err
	}

	a.mu.Lock()
	a.users[email] = user
	a.mu.Unlock()
	return user, nil
}

func (a *AuthManager) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	return a.userStore.ListUsers(ctx)
}

// bootstrapUsers refreshes the credential cache from the user store and
// rehashes any plain-text passwords it finds. Store failures keep the cache.
func (a *AuthManager) bootstrapUsers(ctx context.Context) {
	if a.userStore == nil {
		return
	}
	users, err := a.userStore.ListUsers(ctx)
	if err != nil {
		log.Warn().Str("component", "http").Err(err).Msg("load users failed, using cached credentials")
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for _, user := range users {
		email := normalizeEmail(user.Email)
		if email == "" {
			continue
		}
		if !isPasswordHash(user.PasswordHash) {
			hashed, err := hashPassword(user.PasswordHash)
			if err != nil {
				continue
			}
			user.PasswordHash = hashed
			if err := a.userStore.UpdateUserPassword(ctx, email, hashed); err != nil {
				log.Warn().Str("component", "http").Str("email", email).Err(err).Msg("upgrade password hash failed")
			}
		}
		user.Email = email
		a.users[email] = user
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func verifyPassword(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return comparePassword([]byte(stored), []byte(input)) == nil
}

var comparePassword = bcrypt.CompareHashAndPassword

var unknownUserHash = sync.OnceValue(func() string {
	hash, err := hashPassword("unknown-account-placeholder")
	if err != nil {
		panic(err)
	}
	return hash
})

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
