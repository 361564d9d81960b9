package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "meeting-scheduler"

var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is what a token says about its bearer. Timezone and IsSystemAdmin
// are snapshots taken at login; handlers that grant privileges re-check them.
type Identity struct {
	UserID        string
	Email         string
	Timezone      string
	IsSystemAdmin bool
}

// Claims is the JWT payload. The user id travels in the standard "sub" claim.
type Claims struct {
	Email         string `json:"email"`
	Timezone      string `json:"tz,omitempty"`
	IsSystemAdmin bool   `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:        c.Subject,
		Email:         c.Email,
		Timezone:      c.Timezone,
		IsSystemAdmin: c.IsSystemAdmin,
	}
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager issuing tokens valid for ttl.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// GenerateAccessToken creates a signed JWT for id.
func (m *JWTManager) GenerateAccessToken(id Identity) (string, error) {
	if id.UserID == "" {
		return "", errors.New("cannot sign a token without a user id")
	}
	now := m.now().UTC()

	claims := &Claims{
		Email:         id.Email,
		Timezone:      id.Timezone,
		IsSystemAdmin: id.IsSystemAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

// ParseAndValidate verifies signature, issuer and expiry and returns the claims.
// Every failure matches ErrInvalidToken.
func (m *JWTManager) ParseAndValidate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
