package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/storefront/catalog-api/internal/apperr"
	"github.com/storefront/catalog-api/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the payload carried by both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
}

// RevocationStore records revoked refresh tokens by their jti.
type RevocationStore interface {
	RevokeToken(ctx context.Context, t models.RevokedToken) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// TokenService issues and checks signed, self-contained JWTs. Only the
// revocation status needs a store lookup.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    RevocationStore
	now        func() time.Time
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration, revoked RevocationStore) *TokenService {
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		now:        time.Now,
	}
}

const msgTokenInvalid = "Token is invalid or expired"

// Issue creates a fresh access/refresh pair for the user.
func (ts *TokenService) Issue(user *models.User) (models.TokenPair, error) {
	access, err := ts.sign(user.ID, TokenTypeAccess, ts.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := ts.sign(user.ID, TokenTypeRefresh, ts.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

func (ts *TokenService) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: tokenType,
		UserID:    userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	return signed, nil
}

// Parse checks signature, expiry and shape. It does not consult the
// revocation store.
func (ts *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	},
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, apperr.Token(msgTokenInvalid, err)
	}
	if !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, apperr.Token(msgTokenInvalid, nil)
	}
	if claims.TokenType != TokenTypeAccess && claims.TokenType != TokenTypeRefresh {
		return nil, apperr.Token("Token has no valid type", nil)
	}
	return claims, nil
}

func (ts *TokenService) checkRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := ts.revoked.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return apperr.Internal("failed to check token revocation", err)
	}
	if revoked {
		return apperr.Token("Token is blacklisted", nil)
	}
	return nil
}

// Verify is a pure validity check for either token type.
func (ts *TokenService) Verify(ctx context.Context, tokenString string) error {
	claims, err := ts.Parse(tokenString)
	if err != nil {
		return err
	}
	return ts.checkRevoked(ctx, claims)
}

// Authenticate validates a bearer access token and returns its claims.
func (ts *TokenService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := ts.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, apperr.Token("Token has wrong type", nil)
	}
	if err := ts.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (ts *TokenService) parseRefresh(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := ts.Parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, apperr.Token("Token has wrong type", nil)
	}
	if err := ts.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Refresh mints a new access token from a live refresh token. The refresh
// token itself is not rotated.
func (ts *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ts.parseRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	return ts.sign(claims.UserID, TokenTypeAccess, ts.accessTTL)
}

// Revoke puts a refresh token on the denylist and returns its claims.
// Denylist rows for tokens that have since expired are purged on the way.
func (ts *TokenService) Revoke(ctx context.Context, refreshToken string) (*Claims, error) {
	claims, err := ts.parseRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	now := ts.now()
	if _, err := ts.revoked.PurgeExpiredTokens(ctx, now); err != nil {
		return nil, apperr.Internal("failed to purge revoked tokens", err)
	}

	err = ts.revoked.RevokeToken(ctx, models.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: now,
	})
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Internal("failed to revoke token", err)
	}
	return claims, nil
}
