package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	token, exp, err := m.GenerateToken(7, "a@b.com", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserId)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)
	expired := NewJWTManager("secret", -time.Minute)

	token, _, err := other.GenerateToken(1, "x@y.com", "customer")
	require.NoError(t, err)
	_, err = m.ParseToken(token)
	assert.Error(t, err)

	token, _, err = expired.GenerateToken(1, "x@y.com", "customer")
	require.NoError(t, err)
	_, err = m.ParseToken(token)
	assert.Error(t, err)

	_, err = m.ParseToken("not-a-token")
	assert.Error(t, err)
}
