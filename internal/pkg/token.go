package pkg

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/simp-lee/flyingpig/internal/domain"
)

// Claims are the JWT claims carried by access tokens.
type Claims struct {
	UserType domain.UserType `json:"typ"`
	Staff    bool            `json:"staff,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the caller identity.
func (c *Claims) Principal() (domain.Principal, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return domain.Principal{}, fmt.Errorf("invalid subject %q", c.Subject)
	}
	if !c.UserType.Valid() {
		return domain.Principal{}, fmt.Errorf("invalid user type %q", c.UserType)
	}
	return domain.Principal{ID: uint(id), UserType: c.UserType, Staff: c.Staff}, nil
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token for p and returns it with its expiry.
func (m *TokenManager) Issue(p domain.Principal) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)
	claims := &Claims{
		UserType: p.UserType,
		Staff:    p.Staff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and returns the caller identity. Every failure maps
// to domain.ErrUnauthorized with the cause wrapped.
func (m *TokenManager) Parse(token string) (domain.Principal, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return domain.Principal{}, unauthorized(err)
	}
	p, err := claims.Principal()
	if err != nil {
		return domain.Principal{}, unauthorized(err)
	}
	return p, nil
}

func unauthorized(err error) error {
	msg := "invalid token"
	if errors.Is(err, jwt.ErrTokenExpired) {
		msg = "token expired"
	}
	return domain.NewAppError(domain.CodeUnauthorized, msg, err)
}
