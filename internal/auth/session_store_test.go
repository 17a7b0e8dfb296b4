package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_CreateAndRevoke(t *testing.T) {
	db, mock := redismock.NewClientMock()
	ctx := context.Background()

	store := NewSessionStore(DefaultTTL, db)
	store.NewTokenFunc = func() string {
		return "fixed-token"
	}

	userID := uuid.New()
	createdAt := time.Unix(1700000000, 0)

	mock.ExpectSet(sessionKeyPrefix+"fixed-token", sessionValue(userID, createdAt), DefaultTTL).SetVal("OK")
	mock.ExpectSAdd(tokensSetKey, "fixed-token").SetVal(1)
	token, err := store.Create(ctx, userID, createdAt)
	require.NoError(t, err)
	assert.Equal(t, "fixed-token", token)

	mock.ExpectDel(sessionKeyPrefix + "fixed-token").SetVal(1)
	mock.ExpectSRem(tokensSetKey, "fixed-token").SetVal(1)
	revoked, err := store.Revoke(ctx, token)
	require.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectDel(sessionKeyPrefix + "fixed-token").SetVal(0)
	mock.ExpectSRem(tokensSetKey, "fixed-token").SetVal(0)
	revoked, err = store.Revoke(ctx, token)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore_DefaultTokens(t *testing.T) {
	store := NewSessionStore(DefaultTTL, nil)
	a, b := store.NewTokenFunc(), store.NewTokenFunc()
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestParseSessionValue(t *testing.T) {
	userID := uuid.New()
	createdAt := time.Unix(1700000000, 0)

	gotUserID, gotCreatedAt, err := parseSessionValue(sessionValue(userID, createdAt))
	require.NoError(t, err)
	assert.Equal(t, userID, gotUserID)
	assert.True(t, createdAt.Equal(gotCreatedAt))

	for _, bad := range []string{"", "no-separator", "not-a-uuid|1", userID.String() + "|yesterday"} {
		_, _, err := parseSessionValue(bad)
		assert.Error(t, err, bad)
	}
}
