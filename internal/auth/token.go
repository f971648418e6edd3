package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

// Claims is the validated payload of a session token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates signed, time-bound bearer tokens.
// The signing key is process-wide state, read-only after construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService around the given key material.
func NewTokenService(secret []byte) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
}

// Issue produces a signed token for the subject, expiring after the
// configured lifetime.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifies the token signature and expiry and returns its claims.
// A structurally broken or badly signed token fails with ErrMalformedToken;
// a well-signed token past its expiry fails with ErrExpiredToken. A check
// at exactly the expiry instant still succeeds.
func (s *TokenService) Validate(tokenString string) (Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return Claims{}, err
	}
	if s.now().After(claims.ExpiresAt) {
		return Claims{}, ErrExpiredToken
	}
	return claims, nil
}

// ExtractSubject returns the token subject without enforcing expiry.
// Callers looking up identities before full validation use this; they must
// still call Validate before trusting the token.
func (s *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// parse verifies structure and signature only. Expiry is checked separately
// so expired and malformed tokens stay distinct fault kinds.
func (s *TokenService) parse(tokenString string) (Claims, error) {
	registered := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&registered,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrMalformedToken
	}
	if strings.TrimSpace(registered.Subject) == "" || registered.ExpiresAt == nil {
		return Claims{}, ErrMalformedToken
	}

	claims := Claims{
		Subject:   registered.Subject,
		ExpiresAt: registered.ExpiresAt.Time,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	return claims, nil
}
