package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"simpleTwitter/domain"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 30 * 24 * time.Hour

const issuer = "simpleTwitter"

// Claims is the payload of a session token. It carries the principal's public fields.
type Claims struct {
	ID           int    `json:"id"`
	Account      string `json:"account"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Introduction string `json:"introduction"`
	Avatar       string `json:"avatar"`
	Cover        string `json:"cover"`
	Role         string `json:"role"`
	jwtlib.RegisteredClaims
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer returns an Issuer using the given secret. A ttl <= 0 means DefaultTokenTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token over the user's public fields.
func (i *Issuer) Issue(user *domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		ID:           user.ID,
		Account:      user.Account,
		Email:        user.Email,
		Name:         user.Name,
		Introduction: user.Introduction,
		Avatar:       user.Avatar,
		Cover:        user.Cover,
		Role:         user.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse validates a token's signature, method and expiry and returns its claims.
func (i *Issuer) Parse(token string) (*Claims, error) {
	parsed, err := jwtlib.ParseWithClaims(token, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		return i.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}), jwtlib.WithTimeFunc(i.now))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwtlib.ErrTokenInvalidClaims
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}
