// Package auth is the identity collaborator: a read-only lookup from a
// session token to the identity history is scoped under. Credential
// management lives with the external auth system and is out of scope here.
package auth

import (
	"encoding/json"
	"fmt"
	"time"

	"mentor-backend/internal/chat"
	"mentor-backend/internal/storage"
)

const sessionTTL = 24 * time.Hour

// User is the public shape of an authenticated user.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Session associates a user with an expiry instant (unix milliseconds, as
// written by the reference client).
type Session struct {
	User      User  `json:"user"`
	ExpiresAt int64 `json:"expiresAt"`
}

type Provider struct {
	store storage.KVStore
	now   func() time.Time
}

func NewProvider(store storage.KVStore) *Provider {
	return &Provider{store: store, now: time.Now}
}

func sessionKey(token string) string {
	return "userSession::" + token
}

// CurrentIdentity resolves a session token to an identity. An empty,
// unknown, or expired token resolves to the anonymous bucket. Expired
// sessions are removed on sight.
func (p *Provider) CurrentIdentity(token string) (chat.Identity, bool) {
	if token == "" {
		return chat.Anonymous, false
	}

	value, ok, err := p.store.Get(sessionKey(token))
	if err != nil || !ok {
		return chat.Anonymous, false
	}

	var session Session
	if err := json.Unmarshal([]byte(value), &session); err != nil {
		return chat.Anonymous, false
	}

	if session.ExpiresAt < p.now().UnixMilli() {
		_ = p.store.Remove(sessionKey(token))
		return chat.Anonymous, false
	}

	return chat.Identity(session.User.ID), true
}

// SaveSession records a session under token with the standard TTL. Used by
// the external auth flow when it hands a token to this system.
func (p *Provider) SaveSession(token string, user User) error {
	session := Session{
		User:      user,
		ExpiresAt: p.now().Add(sessionTTL).UnixMilli(),
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("error serializing session: %w", err)
	}
	if err := p.store.Set(sessionKey(token), string(data)); err != nil {
		return fmt.Errorf("error storing session: %w", err)
	}
	return nil
}
