package auth

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

// MinNewPasswordLength applies to password changes.
const MinNewPasswordLength = 8

// bcrypt refuses to hash anything longer.
const maxPasswordBytes = 72

var msgPasswordTooLong = fmt.Sprintf("Ensure this field has no more than %d bytes.", maxPasswordBytes)

// UserStore is the persistence the account flows need.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, in models.ProfileUpdate) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// Accounts implements registration, login and credential management.
type Accounts struct {
	users          UserStore
	tokens         *TokenService
	minPasswordLen int

	// dummyHash keeps login timing the same whether or not the email exists.
	dummyHash string
}

func NewAccounts(users UserStore, tokens *TokenService, minPasswordLen int) *Accounts {
	var dummy models.Password
	if err := dummy.Set("timing-equalizer"); err != nil {
		log.Printf("WARNING: could not prepare dummy password hash: %v", err)
	}
	if minPasswordLen < 1 {
		minPasswordLen = 1
	}
	return &Accounts{
		users:          users,
		tokens:         tokens,
		minPasswordLen: minPasswordLen,
		dummyHash:      dummy.Hash,
	}
}

// Registration is the input to Register and CreateStaff.
type Registration struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsStaff     bool
	IsSuperuser bool
}

// LoginResult is a token pair plus the account summary.
type LoginResult struct {
	models.TokenPair
	User models.UserDetail `json:"user"`
}

var errBadCredentials = apperr.Authentication("No active account found with the given credentials")

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (a *Accounts) validateRegistration(r Registration) (string, error) {
	fields := map[string]string{}

	email := models.NormalizeEmail(r.Email)
	if email == "" {
		fields["email"] = "This field is required."
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		fields["email"] = "Enter a valid email address."
	} else if len(email) > 128 {
		fields["email"] = "Ensure this field has no more than 128 characters."
	}

	switch {
	case r.Password == "":
		fields["password"] = "This field may not be blank."
	case utf8.RuneCountInString(r.Password) < a.minPasswordLen:
		fields["password"] = fmt.Sprintf("Ensure this field has at least %d characters.", a.minPasswordLen)
	case len(r.Password) > maxPasswordBytes:
		fields["password"] = msgPasswordTooLong
	}

	if len(fields) > 0 {
		return "", apperr.Validation("Invalid registration data.", fields)
	}
	return email, nil
}

// Register creates a regular account. New accounts are active and not
// staff unless the caller asks for it.
func (a *Accounts) Register(ctx context.Context, r Registration) (*models.User, error) {
	email, err := a.validateRegistration(r)
	if err != nil {
		return nil, err
	}

	var password models.Password
	if err := password.Set(r.Password); err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: password.Hash,
		FirstName:    optional(r.FirstName),
		LastName:     optional(r.LastName),
		IsActive:     true,
		IsStaff:      r.IsStaff || r.IsSuperuser,
		IsSuperuser:  r.IsSuperuser,
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// passwordMatches compares against a stored hash. Anything longer than
// bcrypt accepts could never have been stored, so it simply does not match.
func passwordMatches(hash, password string) (bool, error) {
	if len(password) > maxPasswordBytes {
		return false, nil
	}
	stored := models.Password{Hash: hash}
	return stored.Matches(password)
}

// CreateStaff registers an account with write access to the catalog.
func (a *Accounts) CreateStaff(ctx context.Context, r Registration) (*models.User, error) {
	r.IsStaff = true
	return a.Register(ctx, r)
}

// Login checks credentials and issues a token pair. Unknown email, wrong
// password and inactive account all fail with the same error.
func (a *Accounts) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := a.users.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		dummy := models.Password{Hash: a.dummyHash}
		_, _ = dummy.Matches(password)
		return nil, errBadCredentials
	}

	ok, err := passwordMatches(user.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal("failed to check password", err)
	}
	if !ok || !user.IsActive {
		return nil, errBadCredentials
	}

	pair, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: pair, User: user.Detail()}, nil
}

// CurrentUser resolves a bearer access token to an active account.
func (a *Accounts) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := a.tokens.Authenticate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Token("User not found", nil)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Authentication("User is inactive")
	}
	return user, nil
}

// ChangePassword replaces the password after checking the old one.
// Tokens issued before the change stay valid.
func (a *Accounts) ChangePassword(ctx context.Context, user *models.User, oldPassword, newPassword string) error {
	ok, err := passwordMatches(user.PasswordHash, oldPassword)
	if err != nil {
		return apperr.Internal("failed to check password", err)
	}
	if !ok {
		return apperr.Field("old_password", "Old password is not correct.")
	}
	if utf8.RuneCountInString(newPassword) < MinNewPasswordLength {
		return apperr.Field("new_password", fmt.Sprintf("Ensure this field has at least %d characters.", MinNewPasswordLength))
	}
	if len(newPassword) > maxPasswordBytes {
		return apperr.Field("new_password", msgPasswordTooLong)
	}

	var next models.Password
	if err := next.Set(newPassword); err != nil {
		return apperr.Internal("failed to hash password", err)
	}
	if err := a.users.UpdatePasswordHash(ctx, user.ID, next.Hash); err != nil {
		return err
	}
	user.PasswordHash = next.Hash
	return nil
}

// UpdateProfile changes the caller's own name, phone and address. Email
// and role flags are not reachable from here.
func (a *Accounts) UpdateProfile(ctx context.Context, user *models.User, in models.ProfileUpdate) (*models.User, error) {
	return a.users.UpdateProfile(ctx, user.ID, in)
}

// Logout revokes a refresh token that belongs to the caller.
func (a *Accounts) Logout(ctx context.Context, user *models.User, refreshToken string) error {
	claims, err := a.tokens.Parse(refreshToken)
	if err != nil {
		return err
	}
	if claims.UserID != user.ID {
		return apperr.Authorization("Token does not belong to the current user.")
	}
	_, err = a.tokens.Revoke(ctx, refreshToken)
	return err
}
