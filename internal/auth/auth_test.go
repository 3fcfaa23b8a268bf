package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)

	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "hunter2"))
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Generate("coach-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	coachID, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "coach-1", coachID)
}

func TestParseRejectsBadTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not.a.jwt"},
		{name: "empty", token: ""},
		{
			name: "wrong secret",
			token: func() string {
				other := NewTokenManager("different-secret", time.Hour)
				token, _ := other.Generate("coach-1")
				return token
			}(),
		},
		{
			name: "expired",
			token: func() string {
				expired := NewTokenManager("test-secret", -time.Hour)
				token, _ := expired.Generate("coach-1")
				return token
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
