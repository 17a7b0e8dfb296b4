package auth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymsessions-session||"
	tokensSetKey     = "gymsessions-sessions"
)

// SessionStore keeps opaque session tokens in redis. The value of a token is
// "<user id>|<created at unix>", and the key expires together with the session.
type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject token generator (for unit and dev testing)
	NewTokenFunc func() string
}

func NewSessionStore(ttl time.Duration, redisClient *redis.Client) *SessionStore {
	return &SessionStore{
		ttl:         ttl,
		redisClient: redisClient,
		NewTokenFunc: func() string {
			return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
		},
	}
}

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, createdAt time.Time) (string, error) {
	token := s.NewTokenFunc()

	sessionKey := sessionKeyPrefix + token
	if err := s.redisClient.Set(ctx, sessionKey, sessionValue(userID, createdAt), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	// add token to list of sessions
	if err := s.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		log.Errorf("failed to add session token to tokens set: %s", err)
	}

	return token, nil
}

// Revoke deletes the session. Checkers that cached it keep accepting it until their cache entry expires.
func (s *SessionStore) Revoke(ctx context.Context, token string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := s.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		log.Errorf("failed to remove session token from tokens set: %s", err)
	}

	return deleted > 0, nil
}

func sessionValue(userID uuid.UUID, createdAt time.Time) string {
	return userID.String() + "|" + strconv.FormatInt(createdAt.Unix(), 10)
}

func parseSessionValue(value string) (uuid.UUID, time.Time, error) {
	userIDStr, createdAtStr, found := strings.Cut(value, "|")
	if !found {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed session value")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("session user id: %w", err)
	}
	createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("session created at: %w", err)
	}
	return userID, time.Unix(createdAtUnix, 0), nil
}
