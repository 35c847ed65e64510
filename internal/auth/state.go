package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateClaims is the payload of the OAuth state parameter. The state is a
// short-lived signed token, so the callback needs no server-side storage to
// check it.
type StateClaims struct {
	jwt.RegisteredClaims
	ReturnTo string `json:"ret,omitempty"`
}

const stateIssuer = "cabinet"

// ErrInvalidState is returned when a state cannot be parsed or has expired.
var ErrInvalidState = errors.New("auth: invalid or expired oauth state")

// IssueState creates a signed state token. returnTo is where the browser
// goes once login completes.
func IssueState(secret, returnTo string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    stateIssuer,
		},
		ReturnTo: returnTo,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.IssueState: %w", err)
	}

	return signed, nil
}

// ValidateState parses and validates a state token.
func ValidateState(secret, state string) (*StateClaims, error) {
	claims := &StateClaims{}

	token, err := jwt.ParseWithClaims(state, claims, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(stateIssuer))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateState: %w", ErrInvalidState)
	}

	if !token.Valid {
		return nil, fmt.Errorf("auth.ValidateState: %w", ErrInvalidState)
	}

	return claims, nil
}
