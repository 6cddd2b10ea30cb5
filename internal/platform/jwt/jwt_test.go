package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	m := NewManager("secret", "")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, err := m.Generate("admin", "admin", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), token.ExpiresAt)

	claims, err := m.Parse(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "competition-voting", claims.Issuer)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	token, err := NewManager("secret", "other").Generate("admin", "admin", time.Hour)
	require.NoError(t, err)

	_, err = NewManager("secret", "").Parse(token.Value)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = NewManager("different", "other").Parse(token.Value)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	expired, err := NewManager("secret", "").Generate("admin", "admin", -time.Minute)
	require.NoError(t, err)
	_, err = NewManager("secret", "").Parse(expired.Value)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Username: "admin",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    defaultIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", "").Parse(signed)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}
