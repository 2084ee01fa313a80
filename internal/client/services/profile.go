package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/client/session"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// ProfileService joins the per-field profile endpoints into FolloweeInfo
// records and performs the optimistic-concurrency-controlled profile
// writes. The entity-version token captured by a read is held in the
// session store and presented on the next write to the same resource.
type ProfileService interface {
	// FetchBatch resolves the displayname, headline and avatar of every
	// requested username, preserving input order. The three reads are
	// issued concurrently and joined only after all settle; if any of
	// them fails the whole batch resolves to an empty sequence, since a
	// partial record is worse than none.
	FetchBatch(ctx context.Context, usernames []string) []models.FolloweeInfo
	// GetProfile reads the profile document for email and captures its
	// entity-version token. Returns nil when the profile does not exist
	// or the read failed.
	GetProfile(ctx context.Context, email string) *models.Profile
	// CheckProfile probes for the profile's existence, capturing the
	// current entity-version token as a side effect.
	CheckProfile(ctx context.Context, email string) bool
	// UpdateProfile performs the conditional write using the token from
	// the most recent read for email. A stale token resolves to
	// UpdateConflict and drops the cached token, forcing a re-read.
	UpdateProfile(ctx context.Context, email string, p models.Profile) models.UpdateOutcome
	// CreateProfile submits a new profile document.
	CreateProfile(ctx context.Context, p models.Profile) bool
	// SuggestAddresses queries the external autocomplete endpoint.
	// Fail-open-to-empty.
	SuggestAddresses(ctx context.Context, prefix string) []string
}

type profileService struct {
	client   api.Client
	sessions *session.Store
	router   AuthFailureRouter
	log      logging.Logger
}

func NewProfileService(client api.Client, sessions *session.Store, router AuthFailureRouter, log logging.Logger) ProfileService {
	return &profileService{client: client, sessions: sessions, router: router, log: log}
}

func (s *profileService) FetchBatch(ctx context.Context, usernames []string) []models.FolloweeInfo {
	if len(usernames) == 0 {
		return []models.FolloweeInfo{}
	}

	var names, headlines, avatars []string

	// Three independent reads of the same key-space, joined after all
	// complete. Each response is positionally aligned with usernames.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		names, err = s.client.DisplayNames(gctx, usernames)
		return err
	})
	g.Go(func() error {
		var err error
		headlines, err = s.client.Headlines(gctx, usernames)
		return err
	})
	g.Go(func() error {
		var err error
		avatars, err = s.client.Avatars(gctx, usernames)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "profile batch not aggregated", "error", err)
		}
		return []models.FolloweeInfo{}
	}

	if len(names) != len(usernames) || len(headlines) != len(usernames) || len(avatars) != len(usernames) {
		// The alignment contract is broken; a misattributed record is
		// worse than none.
		s.log.Warn(ctx, "profile batch misaligned",
			"requested", len(usernames), "names", len(names), "headlines", len(headlines), "avatars", len(avatars))
		return []models.FolloweeInfo{}
	}

	out := make([]models.FolloweeInfo, len(usernames))
	for i, u := range usernames {
		displayName := names[i]
		if displayName == "" {
			displayName = u
		}
		out[i] = models.FolloweeInfo{
			Username:    u,
			DisplayName: displayName,
			Headline:    headlines[i],
			Avatar:      avatars[i],
		}
	}
	return out
}

func (s *profileService) GetProfile(ctx context.Context, email string) *models.Profile {
	read, err := s.client.Profile(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			s.router.RedirectToLogin(ctx)
		case errors.Is(err, api.ErrNotFound):
			// Absent target, not an error.
		default:
			s.log.Warn(ctx, "profile not read", "email", email, "error", err)
		}
		return nil
	}
	if read.ETag != "" {
		s.sessions.SetETag(ctx, email, read.ETag)
	}
	p := read.Profile
	return &p
}

func (s *profileService) CheckProfile(ctx context.Context, email string) bool {
	etag, err := s.client.CheckProfile(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		}
		return false
	}
	if etag != "" {
		s.sessions.SetETag(ctx, email, etag)
	}
	return true
}

// UpdateProfile walks the conditional-update machine:
// NO_TOKEN/TOKEN_HELD -> write with token -> APPLIED | CONFLICT | FAILED.
// On conflict the held token is stale by definition and is dropped.
func (s *profileService) UpdateProfile(ctx context.Context, email string, p models.Profile) models.UpdateOutcome {
	etag := s.sessions.ETag(email)

	fresh, err := s.client.UpdateProfile(ctx, email, p, etag)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrConflict):
			s.sessions.DropETag(ctx, email)
			return models.UpdateConflict
		case errors.Is(err, api.ErrUnauthorized):
			s.router.RedirectToLogin(ctx)
			return models.UpdateFailed
		default:
			s.log.Warn(ctx, "profile not updated", "email", email, "error", err)
			return models.UpdateFailed
		}
	}

	if fresh != "" {
		s.sessions.SetETag(ctx, email, fresh)
	} else {
		// The presented token was consumed by the write; without a fresh
		// one the next conditional write must re-read first.
		s.sessions.DropETag(ctx, email)
	}
	return models.UpdateApplied
}

func (s *profileService) CreateProfile(ctx context.Context, p models.Profile) bool {
	etag := s.sessions.ETag(p.Email)
	if err := s.client.CreateProfile(ctx, p, etag); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "profile not created", "email", p.Email, "error", err)
		}
		return false
	}
	return true
}

func (s *profileService) SuggestAddresses(ctx context.Context, prefix string) []string {
	suggestions, err := s.client.SuggestAddresses(ctx, prefix)
	if err != nil {
		s.log.Warn(ctx, "address suggestions unavailable", "error", err)
		return []string{}
	}
	return suggestions
}
