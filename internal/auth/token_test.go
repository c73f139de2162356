package auth

import (
	"context"
	"testing"
	"time"

	"dojo/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:             "test-secret-key-that-is-long-enough-1234",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  24,
	}
}

func newIssuer(t *testing.T) (*TokenIssuer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenIssuer(testConfig(), rdb), mr
}

func TestIssuePair_Claims(t *testing.T) {
	issuer, _ := newIssuer(t)
	ctx := context.Background()

	pair, err := issuer.IssuePair(7, "alice")
	require.NoError(t, err)

	access, err := issuer.Verify(ctx, pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "alice", access.Username)
	assert.Equal(t, "7", access.Subject)
	assert.NotEmpty(t, access.ID)
	id, err := access.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	refresh, err := issuer.Verify(ctx, pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
}

func TestVerify_WrongType(t *testing.T) {
	issuer, _ := newIssuer(t)
	pair, err := issuer.IssuePair(1, "alice")
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = issuer.Refresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestRefresh_IssuesAccessToken(t *testing.T) {
	issuer, _ := newIssuer(t)
	ctx := context.Background()
	pair, err := issuer.IssuePair(3, "bob")
	require.NoError(t, err)

	access, err := issuer.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	claims, err := issuer.Verify(ctx, access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.Username)
}

func TestParse_Rejects(t *testing.T) {
	issuer, _ := newIssuer(t)

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-48 * time.Hour)
		issuer.now = func() time.Time { return past }
		pair, err := issuer.IssuePair(1, "alice")
		issuer.now = time.Now
		require.NoError(t, err)
		_, err = issuer.Parse(pair.Access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecret = "another-secret-key-that-is-long-enough-99"
		pair, err := NewTokenIssuer(cfg, nil).IssuePair(1, "alice")
		require.NoError(t, err)
		_, err = issuer.Parse(pair.Access)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "alice", TokenType: TypeAccess})
		s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRevoke(t *testing.T) {
	issuer, mr := newIssuer(t)
	ctx := context.Background()
	pair, err := issuer.IssuePair(1, "alice")
	require.NoError(t, err)

	claims, err := issuer.Verify(ctx, pair.Access, TypeAccess)
	require.NoError(t, err)
	require.NoError(t, issuer.Revoke(ctx, claims))
	assert.True(t, mr.Exists("blacklist:"+claims.ID))

	_, err = issuer.Verify(ctx, pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestVerify_RedisDownFailsOpen(t *testing.T) {
	issuer, mr := newIssuer(t)
	pair, err := issuer.IssuePair(1, "alice")
	require.NoError(t, err)
	mr.Close()

	_, err = issuer.Verify(context.Background(), pair.Access, TypeAccess)
	assert.NoError(t, err)
}
