package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	sign := func(claims jwt.RegisteredClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque token", "42|plain-sanctum-token", false},
		{"empty", "", false},
		{"no exp", sign(jwt.RegisteredClaims{Subject: "1"}), false},
		{"future exp", sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}), false},
		{"past exp", sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}), true},
		{"exp equals now", sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now)}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenExpired(tt.token, now))
		})
	}
}
