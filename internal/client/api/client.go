package api

import (
	"context"

	"github.com/ryliegao/ricebook-client/internal/client/models"
)

// TokenSource supplies the current session token for outbound requests.
// The session store satisfies it.
type TokenSource interface {
	Token() string
}

// LoginResult is the outcome of a credentials check: the token issued by
// the server (carried in a response header) and the result flag from the
// body.
type LoginResult struct {
	Token  string
	Result bool
}

// ProfileRead couples a profile document with the entity-version token
// captured from the read response.
type ProfileRead struct {
	Profile models.Profile
	ETag    string
}

// Client is the typed REST surface of the Ricebook backend.
//
// Contract:
//   - Every method honors context cancellation/timeouts.
//   - Transport failures are reported as errors wrapping ErrUnavailable;
//     non-2xx responses as *StatusError (matching the taxonomy sentinels
//     via errors.Is).
//   - All calls except Login and Register attach the session token from
//     the injected TokenSource.
type Client interface {
	Close() error

	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, firstName, lastName, email, password string) error
	FetchUser(ctx context.Context, username string) (*models.UserSnapshot, error)

	Following(ctx context.Context) (*models.FollowGraph, error)
	Unfollow(ctx context.Context, username string) (*models.FollowGraph, error)

	DisplayNames(ctx context.Context, usernames []string) ([]string, error)
	Headlines(ctx context.Context, usernames []string) ([]string, error)
	Avatars(ctx context.Context, usernames []string) ([]string, error)

	Articles(ctx context.Context) ([]models.Post, error)
	Article(ctx context.Context, id int64) (*models.Post, error)
	CreateArticle(ctx context.Context, text, image, date string) ([]models.Post, error)

	Profile(ctx context.Context, email string) (*ProfileRead, error)
	CheckProfile(ctx context.Context, email string) (string, error)
	UpdateProfile(ctx context.Context, email string, p models.Profile, etag string) (string, error)
	CreateProfile(ctx context.Context, p models.Profile, etag string) error

	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
	SuggestAddresses(ctx context.Context, prefix string) ([]string, error)
}
