package postgres

import (
	"context"
	"time"

	"github.com/geocoder89/learnhub/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, password_hash, name, role,
	bio, avatar, phone, date_of_birth, location, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.Profile.Bio,
		&u.Profile.Avatar,
		&u.Profile.Phone,
		&u.Profile.DateOfBirth,
		&u.Profile.Location,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u user.User) error {
	err := s.observe("users.create", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO users (id, email, password_hash, name, role,
				bio, avatar, phone, date_of_birth, location, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			u.ID, u.Email, u.PasswordHash, u.Name, u.Role,
			u.Profile.Bio, u.Profile.Avatar, u.Profile.Phone, u.Profile.DateOfBirth, u.Profile.Location,
			u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (u user.User, err error) {
	err = s.observe("users.get_by_id", func() error {
		u, err = scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return u, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = s.observe("users.get_by_email", func() error {
		u, err = scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})
	return u, err
}

func (s *Store) UpdateProfile(ctx context.Context, id string, name *string, patch user.ProfilePatch, at time.Time) (u user.User, err error) {
	err = s.observe("users.update_profile", func() error {
		u, err = scanUser(s.pool.QueryRow(ctx, `
			UPDATE users
			SET name = COALESCE($2, name),
			    bio = COALESCE($3, bio),
			    avatar = COALESCE($4, avatar),
			    phone = COALESCE($5, phone),
			    date_of_birth = COALESCE($6, date_of_birth),
			    location = COALESCE($7, location),
			    updated_at = $8
			WHERE id = $1
			RETURNING `+userColumns,
			id, name, patch.Bio, patch.Avatar, patch.Phone, patch.DateOfBirth, patch.Location, at,
		))
		return err
	})
	return u, err
}

func (t *tx) GetUser(ctx context.Context, id string) (u user.User, err error) {
	err = t.s.observe("users.get_tx", func() error {
		u, err = scanUser(t.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return u, err
}
