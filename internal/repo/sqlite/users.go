package sqlite

import (
	"context"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/user"
)

const userColumns = `id, email, password_hash, name, role,
	bio, avatar, phone, date_of_birth, location, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var (
		u                    user.User
		createdAt, updatedAt int64
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role,
		&u.Profile.Bio, &u.Profile.Avatar, &u.Profile.Phone, &u.Profile.DateOfBirth, &u.Profile.Location,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}

	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	err := s.observe("users.create", func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO users (id, email, password_hash, name, role,
				bio, avatar, phone, date_of_birth, location, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role,
			u.Profile.Bio, u.Profile.Avatar, u.Profile.Phone, u.Profile.DateOfBirth, u.Profile.Location,
			toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
		)
		return err
	})

	if isUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (u user.User, err error) {
	err = s.observe("users.get_by_id", func() error {
		u, err = scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		return err
	})
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = s.observe("users.get_by_email", func() error {
		u, err = scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
		return err
	})
	return u, err
}

func (s *Store) UpdateProfile(ctx context.Context, id string, name *string, patch user.ProfilePatch, at time.Time) (u user.User, err error) {
	err = s.observe("users.update_profile", func() error {
		u, err = scanUser(s.db.QueryRowContext(ctx, `
			UPDATE users
			SET name = COALESCE(?, name),
			    bio = COALESCE(?, bio),
			    avatar = COALESCE(?, avatar),
			    phone = COALESCE(?, phone),
			    date_of_birth = COALESCE(?, date_of_birth),
			    location = COALESCE(?, location),
			    updated_at = ?
			WHERE id = ?
			RETURNING `+userColumns,
			name, patch.Bio, patch.Avatar, patch.Phone, patch.DateOfBirth, patch.Location, toMillis(at), id,
		))
		return err
	})
	return u, err
}

func (t *tx) GetUser(ctx context.Context, id string) (u user.User, err error) {
	err = t.s.observe("users.get_tx", func() error {
		u, err = scanUser(t.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		return err
	})
	return u, err
}
