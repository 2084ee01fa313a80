// Package session owns the process-wide session state: the opaque session
// token, the current-user snapshot, and the last-seen entity-version token
// per profile resource. It is the only shared mutable state of the client.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/client/repositories/state"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// Persistence keys in the metadata store.
const (
	keyToken      = "session_token"
	keyUser       = "current_user"
	etagKeyPrefix = "etag:"
)

// Store holds the session state behind a RWMutex, so a header build sees
// either the pre- or post-logout token, never a torn value.
//
// All writes also persist through the metadata repository when one is
// available. Persistence failures are logged and swallowed: the store
// degrades to memory-only operation and never surfaces storage problems
// to callers.
type Store struct {
	mu    sync.RWMutex
	token string
	user  *models.UserSnapshot
	etags map[string]string

	repo state.Repository // nil means memory-only
	log  logging.Logger
}

// NewStore builds a session store backed by repo (which may be nil for a
// memory-only store) and re-hydrates any persisted state.
func NewStore(ctx context.Context, repo state.Repository, log logging.Logger) *Store {
	s := &Store{etags: make(map[string]string), repo: repo, log: log}
	s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) {
	if s.repo == nil {
		return
	}
	all, err := s.repo.List(ctx)
	if err != nil {
		s.log.Warn(ctx, "session state unavailable, starting fresh", "error", err)
		return
	}
	if v, ok := all[keyToken]; ok {
		s.token = string(v)
	}
	if v, ok := all[keyUser]; ok {
		var u models.UserSnapshot
		if err := json.Unmarshal(v, &u); err != nil {
			s.log.Warn(ctx, "discarding corrupt user snapshot", "error", err)
		} else {
			s.user = &u
		}
	}
	for k, v := range all {
		if email, ok := strings.CutPrefix(k, etagKeyPrefix); ok {
			s.etags[email] = string(v)
		}
	}
}

// persist writes one key, downgrading any storage failure to a warning.
func (s *Store) persist(ctx context.Context, key string, value []byte) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		s.log.Warn(ctx, "session state not persisted", "key", key, "error", err)
	}
}

// Login stores the token issued by a successful login and marks the
// session active.
func (s *Store) Login(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.persist(ctx, keyToken, []byte(token))
}

// Logout clears the token, the user snapshot, and all cached
// entity-version tokens, in memory and in durable storage.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.etags = make(map[string]string)
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Warn(ctx, "session state not cleared from storage", "error", err)
	}
}

// Token returns the current session token, or "" when logged out.
// Satisfies api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a session token is held.
func (s *Store) Active() bool {
	return s.Token() != ""
}

// SetCurrentUser replaces the user snapshot wholesale. The snapshot and
// the session token are persisted together, so a restored session never
// carries a snapshot without the token that produced it.
func (s *Store) SetCurrentUser(ctx context.Context, u models.UserSnapshot) {
	s.mu.Lock()
	s.user = &u
	token := s.token
	s.mu.Unlock()

	b, err := json.Marshal(u)
	if err != nil {
		s.log.Warn(ctx, "user snapshot not serializable", "error", err)
		return
	}

	if s.repo == nil {
		return
	}
	entries := map[string][]byte{keyUser: b, keyToken: []byte(token)}
	if err := s.repo.SetMany(ctx, entries); err != nil {
		s.log.Warn(ctx, "session state not persisted", "key", keyUser, "error", err)
	}
}

// CurrentUser returns a copy of the snapshot and whether one is held.
func (s *Store) CurrentUser() (models.UserSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.UserSnapshot{}, false
	}
	return *s.user, true
}

// SetETag records the entity-version token captured from the most recent
// profile read for email.
func (s *Store) SetETag(ctx context.Context, email, etag string) {
	s.mu.Lock()
	s.etags[email] = etag
	s.mu.Unlock()
	s.persist(ctx, etagKeyPrefix+email, []byte(etag))
}

// ETag returns the last-seen entity-version token for email, or "".
func (s *Store) ETag(email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.etags[email]
}

// DropETag forgets a token known to be stale, forcing a re-read before
// the next conditional write.
func (s *Store) DropETag(ctx context.Context, email string) {
	s.mu.Lock()
	delete(s.etags, email)
	s.mu.Unlock()

	if s.repo == nil {
		return
	}
	if err := s.repo.Delete(ctx, etagKeyPrefix+email); err != nil {
		s.log.Warn(ctx, "stale token not removed from storage", "email", email, "error", err)
	}
}
