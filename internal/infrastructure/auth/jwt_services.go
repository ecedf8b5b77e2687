package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/honeynil/LavenderPOS/internal/infrastructure/redis"
	"github.com/honeynil/LavenderPOS/internal/models"
)

var ErrInvalidSession = errors.New("invalid or revoked session")

// SessionManager issues HS256 session tokens and keeps the live one per user in Redis,
// so a log-out revokes the token before it expires.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	store  redis.RedisClient
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, store redis.RedisClient) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) GenerateJWT(userID int32) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     m.now().Add(m.ttl).Unix(),
	})
	return token.SignedString(m.secret)
}

func (m *SessionManager) ParseJWT(tokenStr string) (*models.SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidSession
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidSession
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidSession
	}

	return &models.SessionClaims{UserID: int32(userID), ExpiresAt: exp.Time}, nil
}

// Issue creates a token for the user and records it as the user's live session.
// A user has one live session, so issuing again invalidates the previous token.
func (m *SessionManager) Issue(ctx context.Context, userID int32) (string, error) {
	token, err := m.GenerateJWT(userID)
	if err != nil {
		slog.Error("failed to generate JWT", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := m.store.Set(ctx, redis.SessionKey(userID), token, m.ttl); err != nil {
		slog.Error("failed to store session", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

func (m *SessionManager) Validate(ctx context.Context, tokenStr string) (int32, error) {
	claims, err := m.ParseJWT(tokenStr)
	if err != nil {
		return 0, err
	}
	stored, err := m.store.Get(ctx, redis.SessionKey(claims.UserID))
	if err != nil || stored != tokenStr {
		return 0, ErrInvalidSession
	}
	return claims.UserID, nil
}

func (m *SessionManager) Revoke(ctx context.Context, userID int32) error {
	return m.store.Del(ctx, redis.SessionKey(userID))
}
