package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"law-rag-platform/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// SessionService stores conversation history as JSON blobs in Redis. Every
// write refreshes the TTL, so a session stays alive as long as it is used.
type SessionService struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionService(rdb *redis.Client, ttlSeconds int) *SessionService {
	return &SessionService{
		redis: rdb,
		ttl:   time.Duration(ttlSeconds) * time.Second,
	}
}

// Create starts a new session and returns it with a fresh ID.
func (s *SessionService) Create(ctx context.Context, metadata map[string]any) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []models.Message{},
		Metadata:  metadata,
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get fetches a session; redis.Nil maps to a not-found error.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.redis.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &session, nil
}

// AppendMessage adds one turn to a session's history and refreshes its TTL.
// A missing session is created on the fly with the given ID so a client can
// adopt its own session identifiers.
func (s *SessionService) AppendMessage(ctx context.Context, id string, msg models.Message) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		now := time.Now().UTC()
		session = &models.Session{
			ID:        id,
			CreatedAt: now,
			Messages:  []models.Message{},
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	session.Messages = append(session.Messages, msg)
	session.UpdatedAt = time.Now().UTC()

	return s.save(ctx, session)
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	return nil
}

func (s *SessionService) save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session.ID, err)
	}
	if err := s.redis.SetEx(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session %s: %w", session.ID, err)
	}
	return nil
}
