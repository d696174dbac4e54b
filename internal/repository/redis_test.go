package repository

import (
	"context"
	"testing"
	"time"

	"reserveease/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSessionRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisSessionRepository(client, time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetSession", func(t *testing.T) {
		session := &models.Session{
			Token:     "tok-123",
			Email:     "admin@reserveease.local",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			ExpiresAt: time.Now().UTC().Add(time.Hour).Truncate(time.Second),
		}

		err := repo.SetSession(ctx, session)
		require.NoError(t, err)

		got, err := repo.GetSession(ctx, "tok-123")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, session.Token, got.Token)
		assert.Equal(t, session.Email, got.Email)
		assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("GetNonExistentSession", func(t *testing.T) {
		got, err := repo.GetSession(ctx, "no-such-token")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeleteSession", func(t *testing.T) {
		session := &models.Session{Token: "tok-456", Email: "admin@reserveease.local"}
		repo.SetSession(ctx, session)

		err := repo.DeleteSession(ctx, "tok-456")
		require.NoError(t, err)

		got, _ := repo.GetSession(ctx, "tok-456")
		assert.Nil(t, got)
	})

	t.Run("SessionTTL", func(t *testing.T) {
		session := &models.Session{Token: "tok-789", Email: "admin@reserveease.local"}
		require.NoError(t, repo.SetSession(ctx, session))

		s.FastForward(time.Hour + time.Minute)

		got, err := repo.GetSession(ctx, "tok-789")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:admin@reserveease.local"
		limit := 2
		window := time.Second

		// First attempt
		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Second attempt
		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third attempt (exceeds limit)
		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		// Wait for window to expire
		s.FastForward(window + time.Millisecond)

		// Should be allowed again
		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisSessionRepository(nil, time.Hour)
		_, err := repo.GetSession(ctx, "tok-123")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		err := Ping(ctx, client)
		assert.NoError(t, err)
	})

	t.Run("Close", func(t *testing.T) {
		err := Close(client)
		assert.NoError(t, err)
	})
}
