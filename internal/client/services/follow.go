package services

import (
	"context"
	"errors"
	"sync"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/logging"
	"github.com/ryliegao/ricebook-client/internal/pubsub"
)

// profileLookup is the slice of the profile aggregator the follow service
// needs: a positional batch lookup of public profiles.
type profileLookup interface {
	FetchBatch(ctx context.Context, usernames []string) []models.FolloweeInfo
}

// FollowService owns the in-memory following set and its
// optimistic-update/reconciliation protocol.
//
// The asymmetry is deliberate: an add is applied locally before any
// server confirmation (latency-sensitive), while a remove installs the
// server-returned authoritative set verbatim (safety-sensitive, since it
// decides what the feed includes next).
//
// None of the methods return errors: on authorization failure they route
// through the AuthFailureRouter exactly once and resolve to their
// documented empty/absent fallback, so a feed view degrades instead of
// crashing.
type FollowService interface {
	// LoadFollowing fetches the authenticated user's following set and
	// installs it as the local state. Fail-open-to-empty.
	LoadFollowing(ctx context.Context) []string
	// AddFollowee looks up the target's public profile and, when it
	// exists, optimistically adds it to the local following set. Returns
	// nil when the target does not exist. Idempotent: re-adding an
	// existing followee is a no-op that still returns the profile.
	AddFollowee(ctx context.Context, username string) *models.FolloweeInfo
	// RemoveFollowee deletes the follow edge on the backend and replaces
	// the local set with the server's authoritative one, then publishes a
	// FolloweeRemoved event. Reports whether the removal was applied.
	RemoveFollowee(ctx context.Context, username string) bool
	// Following returns a copy of the current in-memory following set.
	Following() []string
}

type followService struct {
	client   api.Client
	profiles profileLookup
	router   AuthFailureRouter
	bus      pubsub.Publisher
	log      logging.Logger

	mu        sync.Mutex
	following []string

	// guards serializes add/remove for the same username, so rapid user
	// action applies mutations in invocation order.
	guards sync.Map // username -> *sync.Mutex
}

func NewFollowService(client api.Client, profiles profileLookup, router AuthFailureRouter, bus pubsub.Publisher, log logging.Logger) FollowService {
	return &followService{client: client, profiles: profiles, router: router, bus: bus, log: log}
}

func (s *followService) guard(username string) *sync.Mutex {
	m, _ := s.guards.LoadOrStore(username, &sync.Mutex{})
	return m.(*sync.Mutex)
}

func (s *followService) install(following []string) {
	// The set is duplicate-free; dedupe defensively since the server
	// response is installed verbatim otherwise.
	seen := make(map[string]struct{}, len(following))
	out := make([]string, 0, len(following))
	for _, u := range following {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	s.mu.Lock()
	s.following = out
	s.mu.Unlock()
}

func (s *followService) LoadFollowing(ctx context.Context) []string {
	g, err := s.client.Following(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "following set not loaded", "error", err)
		}
		s.install(nil)
		return []string{}
	}
	s.install(g.Following)
	return s.Following()
}

func (s *followService) AddFollowee(ctx context.Context, username string) *models.FolloweeInfo {
	mu := s.guard(username)
	mu.Lock()
	defer mu.Unlock()

	infos := s.profiles.FetchBatch(ctx, []string{username})
	if len(infos) == 0 {
		return nil
	}
	info := infos[0]

	// Optimistic local add, ahead of any server-side persistence. The
	// published surface has no follow-edge creation endpoint; the drift
	// risk is accepted and corrected by the next authoritative replace.
	s.mu.Lock()
	if !containsUser(s.following, username) {
		s.following = append(s.following, username)
	}
	s.mu.Unlock()

	return &info
}

func (s *followService) RemoveFollowee(ctx context.Context, username string) bool {
	mu := s.guard(username)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.client.Unfollow(ctx, username)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "unfollow failed", "username", username, "error", err)
		}
		return false
	}

	// Reconciliation by replacement: the server's set wins, even when
	// local optimistic state had diverged.
	s.install(g.Following)

	ev := FolloweeRemoved{Username: username, Following: s.Following()}
	if err := publishFolloweeRemoved(ctx, s.bus, ev); err != nil {
		s.log.Warn(ctx, "removal event not published", "username", username, "error", err)
	}
	return true
}

func (s *followService) Following() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.following))
	copy(out, s.following)
	return out
}

func containsUser(set []string, username string) bool {
	for _, u := range set {
		if u == username {
			return true
		}
	}
	return false
}
