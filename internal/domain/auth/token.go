package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned when a bearer token is missing, malformed,
// expired, or refers to a user that no longer exists.
var ErrUnauthenticated = errors.New("could not validate credentials")

// Tokens issues and verifies signed bearer tokens. Tokens are stateless:
// the subject claim carries the user's email and no session is stored
// server-side.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token manager with the process-wide signing secret
// and the lifetime applied to interactive logins.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{secret: secret, ttl: ttl}
}

// Issue signs a token for the given subject email, expiring after the
// configured TTL.
func (t *Tokens) Issue(email string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns the subject
// email. Any failure maps to ErrUnauthenticated.
func (t *Tokens) Verify(raw string) (string, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}
