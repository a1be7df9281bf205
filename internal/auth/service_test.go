package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mgr := NewJWTManager("access-secret-32-chars-long!!!!!", "refresh-secret-32-chars-long!!!!", 15*time.Minute, 7*24*time.Hour)
	return NewService(mgr, client)
}

func TestService_GenerateAndRefreshTokens(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-1", "a@b.com", false)
	require.NoError(t, err)

	rotated, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// Old refresh token was revoked by the rotation
	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.Error(t, err)
}

func TestService_RefreshKeepsAnonymousFlag(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "guest-1", "", true)
	require.NoError(t, err)

	rotated, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.Anonymous, "rotation must not upgrade a guest session")
}

func TestService_LogoutRevokesRefreshTokens(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokens(ctx, "user-2", "c@d.com", false)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "user-2"))

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	assert.Error(t, err)
}
