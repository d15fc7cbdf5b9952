package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vinodhini/portal/internal/core/domain"
	"github.com/vinodhini/portal/internal/core/ports"
)

const (
	defaultKeyPrefix  = "portal"
	defaultSessionTTL = 24 * time.Hour

	tokenKey    = "auth_token"
	identityKey = "user_data"
)

// SessionStorage implements ports.SessionStorage on two Redis keys per
// browser session:
//
//	<prefix>:<namespace>:auth_token  raw bearer credential
//	<prefix>:<namespace>:user_data   JSON identity snapshot
//
// Both keys are written, expired and deleted in one MULTI/EXEC.
type SessionStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStorage wraps client. Empty prefix and non-positive ttl fall
// back to defaults.
func NewSessionStorage(client *redis.Client, prefix string, ttl time.Duration) *SessionStorage {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStorage{client: client, prefix: prefix, ttl: ttl}
}

var _ ports.SessionStorage = (*SessionStorage)(nil)

// Load returns nil when no session is stored. A half-written pair is
// treated as absent and removed.
func (s *SessionStorage) Load(ctx context.Context, namespace string) (*domain.Session, error) {
	tk, ik := s.keys(namespace)
	vals, err := s.client.MGet(ctx, tk, ik).Result()
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	sess, err := decodeSession(vals)
	if errors.Is(err, errIncompleteSession) {
		if cerr := s.Clear(ctx, namespace); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes both keys atomically with a fresh TTL.
func (s *SessionStorage) Save(ctx context.Context, namespace string, session domain.Session) error {
	if !session.Valid() {
		return fmt.Errorf("session save: %w: missing credential or role", domain.ErrValidation)
	}
	data, err := json.Marshal(session.Identity)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}

	tk, ik := s.keys(namespace)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tk, session.Credential, s.ttl)
		pipe.Set(ctx, ik, data, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear removes both keys. Clearing an absent session is not an error.
func (s *SessionStorage) Clear(ctx context.Context, namespace string) error {
	tk, ik := s.keys(namespace)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tk, ik)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

func (s *SessionStorage) keys(namespace string) (string, string) {
	base := fmt.Sprintf("%s:%s:", s.prefix, namespace)
	return base + tokenKey, base + identityKey
}

var errIncompleteSession = errors.New("incomplete session pair")

// decodeSession turns an MGET reply for [token, identity] into a session.
// Both nil means no session.
func decodeSession(vals []any) (*domain.Session, error) {
	if len(vals) != 2 {
		return nil, fmt.Errorf("session load: expected 2 values, got %d", len(vals))
	}
	token, _ := vals[0].(string)
	raw, _ := vals[1].(string)
	if token == "" && raw == "" {
		return nil, nil
	}
	if token == "" || raw == "" {
		return nil, errIncompleteSession
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return nil, errIncompleteSession
	}
	return &domain.Session{Credential: token, Identity: id}, nil
}
