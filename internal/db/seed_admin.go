package db

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/learnhub/internal/config"
	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/geocoder89/learnhub/internal/repo"
	"github.com/geocoder89/learnhub/internal/security"
	"github.com/google/uuid"
)

// EnsureAdminUser creates the configured admin account if its email is not
// taken yet. It is a no-op when no admin credentials are configured.
func EnsureAdminUser(ctx context.Context, store repo.Store, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	// check if the user exists
	_, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword, 0)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         cfg.AdminName,
		Role:         user.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = store.CreateUser(ctx, u)
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance won the race
		return nil
	}

	return err
}
