package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/campusfinds/comments-service/internal/config"
)

var testCfg = config.AuthConfig{
	JWTSecret: "test-secret",
	Issuer:    "campus-finds/auth",
	Audience:  []string{"campus-finds"},
}

// sign — токен в формате auth-сервиса платформы.
func sign(t *testing.T, cfg config.AuthConfig, uid uuid.UUID, ttl time.Duration, method jwt.SigningMethod) string {
	t.Helper()

	now := time.Now()
	claims := accessClaims{
		UserID: uid.String(),
		Email:  "student@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
			Subject:   uid.String(),
			Audience:  jwt.ClaimStrings(cfg.Audience),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)

	return signed
}

// TestVerifyAccessToken_OK — валидный токен -> UUID пользователя.
func TestVerifyAccessToken_OK(t *testing.T) {
	t.Parallel()

	uid := uuid.New()
	token := sign(t, testCfg, uid, time.Hour, jwt.SigningMethodHS256)

	got, err := NewVerifier(testCfg).VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, uid, got)
}

// TestVerifyAccessToken_Expired — истёкший токен -> ErrTokenExpired.
func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	token := sign(t, testCfg, uuid.New(), -time.Hour, jwt.SigningMethodHS256)

	_, err := NewVerifier(testCfg).VerifyAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

// TestVerifyAccessToken_WrongSecret — чужая подпись -> ErrInvalidToken.
func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	other := testCfg
	other.JWTSecret = "other-secret"
	token := sign(t, other, uuid.New(), time.Hour, jwt.SigningMethodHS256)

	_, err := NewVerifier(testCfg).VerifyAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestVerifyAccessToken_WrongIssuer — чужой issuer -> ErrInvalidToken.
func TestVerifyAccessToken_WrongIssuer(t *testing.T) {
	t.Parallel()

	other := testCfg
	other.Issuer = "someone-else"
	token := sign(t, other, uuid.New(), time.Hour, jwt.SigningMethodHS256)

	_, err := NewVerifier(testCfg).VerifyAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestVerifyAccessToken_Garbage — мусор вместо токена -> ErrInvalidToken.
func TestVerifyAccessToken_Garbage(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(testCfg).VerifyAccessToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

// TestVerifyAccessToken_BadUserID — валидная подпись, но uid не UUID.
func TestVerifyAccessToken_BadUserID(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := accessClaims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    testCfg.Issuer,
			Audience:  jwt.ClaimStrings(testCfg.Audience),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testCfg.JWTSecret))
	require.NoError(t, err)

	_, err = NewVerifier(testCfg).VerifyAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}
