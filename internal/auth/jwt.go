// Package auth identifies browser sessions.
//
// THIS IS NOT USER AUTHENTICATION:
// Who is signed in lives in the session store (internal/session). This
// package only answers "which store does this browser talk to?". Every
// browser gets a random session ID, carried in a signed cookie:
//
//  1. First request: no cookie → BrowserSession mints an xid, signs it as a
//     JWT subject, sets the "binamite_session" cookie.
//  2. Later requests: the cookie is validated and the ID is put in the
//     request context (SessionIDFromContext).
//  3. Tampered, expired or foreign cookies are treated as missing: the
//     browser silently gets a fresh, empty session.
//
// The JWT signature stops a client from picking someone else's session ID.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "binamite"

// DefaultTTL is how long a session cookie stays valid when none is configured.
const DefaultTTL = 24 * time.Hour

// TokenService signs and verifies session tokens with an HMAC secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// A ttl of zero means DefaultTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// TTL returns the lifetime of tokens issued by Generate.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// claims is the JWT payload. The session ID goes in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for sessionID that expires after the service TTL.
func (s *TokenService) Generate(sessionID string) (string, error) {
	return s.GenerateWithDuration(sessionID, s.ttl)
}

// GenerateWithDuration signs a token with a custom expiry.
// Used in tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(sessionID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns the session ID it carries.
//
// Only HS256 tokens from our issuer with an expiry in the future pass.
// Pinning the method with jwt.WithValidMethods rules out "alg: none".
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
