package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/service"
)

var jwtConfig = config.JWTConfig{Secret: "test-secret", Issuer: "https://id.acme.test", Audience: "facturo"}

func signToken(t *testing.T, secret string, claims service.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(userID uuid.UUID) service.Claims {
	return service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Audience:  jwt.ClaimStrings{jwtConfig.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: userID,
		Email:  "ana@acme.test",
		Role:   domain.RoleAdmin,
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc := service.NewAuthService(jwtConfig)
	userID := uuid.New()

	claims, err := svc.ValidateToken(signToken(t, jwtConfig.Secret, validClaims(userID)))

	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	svc := service.NewAuthService(jwtConfig)

	expired := validClaims(uuid.New())
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	otherIssuer := validClaims(uuid.New())
	otherIssuer.Issuer = "https://evil.test"

	otherAudience := validClaims(uuid.New())
	otherAudience.Audience = jwt.ClaimStrings{"billing"}

	noUser := validClaims(uuid.Nil)

	tests := map[string]string{
		"expired":        signToken(t, jwtConfig.Secret, expired),
		"wrong secret":   signToken(t, "other-secret", validClaims(uuid.New())),
		"wrong issuer":   signToken(t, jwtConfig.Secret, otherIssuer),
		"wrong audience": signToken(t, jwtConfig.Secret, otherAudience),
		"no user":        signToken(t, jwtConfig.Secret, noUser),
		"garbage":        "not.a.token",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
