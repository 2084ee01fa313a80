package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/logging"
	"github.com/ryliegao/ricebook-client/internal/pubsub"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClient implements api.Client for unit tests. Behaviour is driven by
// the Ret/Err fields; the Last* fields record call arguments for
// assertions.
type fakeClient struct {
	CloseErr error

	LoginRet          *api.LoginResult
	LoginErr          error
	LastLoginUsername string
	LastLoginPassword string

	RegisterErr       error
	RegisterCalls     int
	LastRegisterEmail string

	FetchUserRet      *models.UserSnapshot
	FetchUserErr      error
	LastFetchUsername string

	FollowingRet *models.FollowGraph
	FollowingErr error

	UnfollowRet          *models.FollowGraph
	UnfollowErr          error
	LastUnfollowUsername string

	DisplayNamesRet   []string
	DisplayNamesErr   error
	LastDisplayNames  []string
	HeadlinesRet      []string
	HeadlinesErr      error
	LastHeadlines     []string
	AvatarsRet        []string
	AvatarsErr        error
	LastAvatars       []string

	ArticlesRet []models.Post
	ArticlesErr error

	ArticleRet    *models.Post
	ArticleErr    error
	LastArticleID int64

	CreateArticleRet  []models.Post
	CreateArticleErr  error
	LastArticleText   string
	LastArticleImage  string
	LastArticleDate   string

	ProfileRet       *api.ProfileRead
	ProfileErr       error
	LastProfileEmail string

	CheckProfileRet string
	CheckProfileErr error

	UpdateProfileRet  string
	UpdateProfileErr  error
	LastUpdateEmail   string
	LastUpdateProfile models.Profile
	LastUpdateETag    string

	CreateProfileErr  error
	LastCreateProfile models.Profile
	LastCreateETag    string

	UploadRet      string
	UploadErr      error
	LastUploadName string
	LastUploadData []byte

	SuggestRet        []string
	SuggestErr        error
	LastSuggestPrefix string

	mu sync.Mutex
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Login(ctx context.Context, username, password string) (*api.LoginResult, error) {
	f.LastLoginUsername = username
	f.LastLoginPassword = password
	return f.LoginRet, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, firstName, lastName, email, password string) error {
	f.RegisterCalls++
	f.LastRegisterEmail = email
	return f.RegisterErr
}

func (f *fakeClient) FetchUser(ctx context.Context, username string) (*models.UserSnapshot, error) {
	f.LastFetchUsername = username
	return f.FetchUserRet, f.FetchUserErr
}

func (f *fakeClient) Following(ctx context.Context) (*models.FollowGraph, error) {
	return f.FollowingRet, f.FollowingErr
}

func (f *fakeClient) Unfollow(ctx context.Context, username string) (*models.FollowGraph, error) {
	f.LastUnfollowUsername = username
	return f.UnfollowRet, f.UnfollowErr
}

func (f *fakeClient) DisplayNames(ctx context.Context, usernames []string) ([]string, error) {
	f.mu.Lock()
	f.LastDisplayNames = append([]string(nil), usernames...)
	f.mu.Unlock()
	return f.DisplayNamesRet, f.DisplayNamesErr
}

func (f *fakeClient) Headlines(ctx context.Context, usernames []string) ([]string, error) {
	f.mu.Lock()
	f.LastHeadlines = append([]string(nil), usernames...)
	f.mu.Unlock()
	return f.HeadlinesRet, f.HeadlinesErr
}

func (f *fakeClient) Avatars(ctx context.Context, usernames []string) ([]string, error) {
	f.mu.Lock()
	f.LastAvatars = append([]string(nil), usernames...)
	f.mu.Unlock()
	return f.AvatarsRet, f.AvatarsErr
}

func (f *fakeClient) Articles(ctx context.Context) ([]models.Post, error) {
	return f.ArticlesRet, f.ArticlesErr
}

func (f *fakeClient) Article(ctx context.Context, id int64) (*models.Post, error) {
	f.LastArticleID = id
	return f.ArticleRet, f.ArticleErr
}

func (f *fakeClient) CreateArticle(ctx context.Context, text, image, date string) ([]models.Post, error) {
	f.LastArticleText = text
	f.LastArticleImage = image
	f.LastArticleDate = date
	return f.CreateArticleRet, f.CreateArticleErr
}

func (f *fakeClient) Profile(ctx context.Context, email string) (*api.ProfileRead, error) {
	f.LastProfileEmail = email
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) CheckProfile(ctx context.Context, email string) (string, error) {
	return f.CheckProfileRet, f.CheckProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, email string, p models.Profile, etag string) (string, error) {
	f.LastUpdateEmail = email
	f.LastUpdateProfile = p
	f.LastUpdateETag = etag
	return f.UpdateProfileRet, f.UpdateProfileErr
}

func (f *fakeClient) CreateProfile(ctx context.Context, p models.Profile, etag string) error {
	f.LastCreateProfile = p
	f.LastCreateETag = etag
	return f.CreateProfileErr
}

func (f *fakeClient) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	f.LastUploadName = filename
	f.LastUploadData = append([]byte(nil), data...)
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) SuggestAddresses(ctx context.Context, prefix string) ([]string, error) {
	f.LastSuggestPrefix = prefix
	return f.SuggestRet, f.SuggestErr
}

// fakeRouter counts redirects.
type fakeRouter struct {
	Calls int
}

func (r *fakeRouter) RedirectToLogin(ctx context.Context) { r.Calls++ }

// fakePublisher records published messages.
type fakePublisher struct {
	PublishErr error
	Published  []pubsub.Message
}

func (p *fakePublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	if p.PublishErr != nil {
		return p.PublishErr
	}
	p.Published = append(p.Published, msg)
	return nil
}

// fakeProfiles stubs the batch lookup the follow service depends on.
type fakeProfiles struct {
	FetchBatchRet []models.FolloweeInfo
	LastUsernames []string
}

func (p *fakeProfiles) FetchBatch(ctx context.Context, usernames []string) []models.FolloweeInfo {
	p.LastUsernames = append([]string(nil), usernames...)
	return p.FetchBatchRet
}
