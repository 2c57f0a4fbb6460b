package user

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("user with this email already exists")
)

type Profile struct {
	Bio         string `json:"bio"`
	Avatar      string `json:"avatar"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
	Location    string `json:"location"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Profile      Profile   `json:"profile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary is what signup and login hand back.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ProfilePatch carries optional fields; nil means leave unchanged.
type ProfilePatch struct {
	Bio         *string `json:"bio" binding:"omitempty,max=500"`
	Avatar      *string `json:"avatar" binding:"omitempty,max=500"`
	Phone       *string `json:"phone" binding:"omitempty,max=40"`
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,max=40"`
	Location    *string `json:"location" binding:"omitempty,max=120"`
}

type UpdateProfileRequest struct {
	Name    string        `json:"name" binding:"omitempty,max=100"`
	Profile *ProfilePatch `json:"profile"`
}

// Changes splits the request into the column updates a store applies in
// one statement. A nil name or nil patch field leaves the column as is;
// a blank name counts as absent.
func (r UpdateProfileRequest) Changes() (name *string, patch ProfilePatch) {
	if n := strings.TrimSpace(r.Name); n != "" {
		name = &n
	}
	if r.Profile != nil {
		patch = *r.Profile
	}
	return name, patch
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}
