package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTVerifier_Verify(t *testing.T) {
	secret := "test-secret"
	verifier := NewJWTVerifier(secret)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantID  string
		wantErr bool
	}{
		{
			name: "issued token",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer(secret).Issue("org-123", "org@example.com", time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantID: "org-123",
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer("other").Issue("org-123", "org@example.com", time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer(secret).Issue("org-123", "org@example.com", -time.Minute)
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "org-123"}).SignedString([]byte(secret))
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name: "missing subject",
			token: func(t *testing.T) string {
				tok, err := NewJWTIssuer(secret).Issue("", "org@example.com", time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not.a.jwt" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org, err := verifier.Verify(tt.token(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidToken))
				assert.Nil(t, org)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, org.ID)
			assert.Equal(t, "org@example.com", org.Email)
		})
	}
}

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	token, err := NewJWTIssuer(secret).Issue("org-1", "o@example.com", 24*time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &organizerClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(*organizerClaims)
	require.True(t, ok)
	assert.Equal(t, "org-1", claims.Subject)
	assert.Equal(t, "o@example.com", claims.Email)
}
