package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/geocoder89/learnhub/internal/security"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type TokenIssuer interface {
	GenerateAccessToken(userID, email, role string) (string, error)
}

type Accounts struct {
	store      repo.Store
	tokens     TokenIssuer
	bcryptCost int
	log        *slog.Logger
}

// NewAccounts wires signup and login. bcryptCost 0 means bcrypt's default.
func NewAccounts(store repo.Store, tokens TokenIssuer, bcryptCost int, log *slog.Logger) *Accounts {
	return &Accounts{store: store, tokens: tokens, bcryptCost: bcryptCost, log: loggerOrDefault(log)}
}

// Signup creates a student account. Emails are stored trimmed and lower-cased.
func (a *Accounts) Signup(ctx context.Context, req user.SignupRequest) (user.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return user.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	hash, err := security.HashPassword(req.Password, a.bcryptCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Email:        user.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Name:         name,
		Role:         user.RoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.store.CreateUser(ctx, u); err != nil {
		return user.User{}, err
	}

	a.log.InfoContext(ctx, "user signed up", "user_id", u.ID)
	return u, nil
}

// Login returns a bearer token. Unknown email and wrong password are
// indistinguishable to the caller.
func (a *Accounts) Login(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
	u, err := a.store.GetUserByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", user.User{}, ErrInvalidCredentials
		}
		return "", user.User{}, err
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return "", user.User{}, ErrInvalidCredentials
		}
		return "", user.User{}, fmt.Errorf("check password: %w", err)
	}

	token, err := a.tokens.GenerateAccessToken(u.ID, u.Email, u.Role)
	if err != nil {
		return "", user.User{}, fmt.Errorf("issue token: %w", err)
	}

	return token, u, nil
}
