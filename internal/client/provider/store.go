package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/campushub/internal/models"
)

const sessionKey = "auth.session"

// KV is the subset of the client state repository the session store needs.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// KVSessionStore keeps the session as JSON under a single key.
type KVSessionStore struct {
	kv KV
}

func NewKVSessionStore(kv KV) *KVSessionStore {
	return &KVSessionStore{kv: kv}
}

func (s *KVSessionStore) Load(ctx context.Context) (*models.Session, error) {
	b, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	var sess models.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *KVSessionStore) Save(ctx context.Context, sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Set(ctx, sessionKey, b)
}

func (s *KVSessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, sessionKey)
}
