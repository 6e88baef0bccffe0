package models

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User Model with Pointers for Nullable Fields
type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`

	// --- Profile Fields (Pointers = Clean JSON) ---
	FirstName *string `json:"first_name" db:"first_name"`
	LastName  *string `json:"last_name" db:"last_name"`
	Phone     *string `json:"phone" db:"phone"`
	Address   *string `json:"address" db:"address"`

	IsActive    bool `json:"is_active" db:"is_active"`
	IsStaff     bool `json:"is_staff" db:"is_staff"`
	IsSuperuser bool `json:"-" db:"is_superuser"`

	CreatedAt time.Time `json:"-" db:"created_at"`
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}

// FullName falls back to the email when either name part is missing.
func (u *User) FullName() string {
	if u.FirstName != nil && *u.FirstName != "" && u.LastName != nil && *u.LastName != "" {
		return *u.FirstName + " " + *u.LastName
	}
	return u.Email
}

// UserDetail is the read-only account summary.
type UserDetail struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	IsStaff   bool    `json:"is_staff"`
	IsActive  bool    `json:"is_active"`
}

func (u *User) Detail() UserDetail {
	return UserDetail{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
	}
}

// UserProfile is what the profile endpoint reads and writes. Email is
// echoed back but never accepted.
type UserProfile struct {
	Email     string  `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Address:   u.Address,
	}
}

// ProfileUpdate lists the only columns a user may change about themselves.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=128"`
	LastName  *string `json:"last_name" binding:"omitempty,max=128"`
	Phone     *string `json:"phone" binding:"omitempty,max=14"`
	Address   *string `json:"address"`
}

// NormalizeEmail trims and lower-cases an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Password Helper (Standard)
type Password struct {
	Hash string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
