package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/cabinet/internal/auth"
)

func TestState_IssueAndValidateRoundTrip(t *testing.T) {
	t.Parallel()

	secret := "test-secret-key-very-long-and-secure"

	state, err := auth.IssueState(secret, "/seances", 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, state)

	claims, err := auth.ValidateState(secret, state)
	require.NoError(t, err)
	require.NotNil(t, claims)

	assert.Equal(t, "/seances", claims.ReturnTo)
	assert.Equal(t, "cabinet", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestState_Unique(t *testing.T) {
	t.Parallel()

	a, err := auth.IssueState("secret", "", time.Minute)
	require.NoError(t, err)
	b, err := auth.IssueState("secret", "", time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestState_Rejected(t *testing.T) {
	t.Parallel()

	expired, err := auth.IssueState("secret", "/", -1*time.Second)
	require.NoError(t, err)
	otherSecret, err := auth.IssueState("correct-secret", "/", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		state  string
	}{
		{"expired", "secret", expired},
		{"wrong secret", "wrong-secret", otherSecret},
		{"malformed", "secret", "not.a.valid.jwt.token"},
		{"empty", "secret", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := auth.ValidateState(tt.secret, tt.state)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, auth.ErrInvalidState)
		})
	}
}
