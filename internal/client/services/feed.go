package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// FeedService fetches, orders and locally filters the post feed.
//
// The held feed state follows last-writer-wins: a load that was
// superseded by a newer completed load is discarded rather than being
// allowed to clobber fresher state with an out-of-order response.
type FeedService interface {
	// LoadPosts fetches the full collection, sorted descending by date
	// (stable: equal dates keep response order). Fail-open-to-empty on
	// authorization failure.
	LoadPosts(ctx context.Context) []models.Post
	// LoadComments fetches one post's comments, projected to
	// commenter/content pairs in server order.
	LoadComments(ctx context.Context, postID int64) []models.Comment
	// SubmitPost publishes new content stamped with the canonical
	// client-side timestamp and returns the updated, sorted collection.
	SubmitPost(ctx context.Context, text, image string) []models.Post
	// UploadImage stores an image with the backend and returns its URL,
	// or "" on failure.
	UploadImage(ctx context.Context, filename string, data []byte) string
	// Posts returns a copy of the currently held feed.
	Posts() []models.Post
}

type feedService struct {
	client api.Client
	router AuthFailureRouter
	log    logging.Logger

	nowFn func() time.Time // test seam

	mu        sync.Mutex
	posts     []models.Post
	nextSeq   uint64
	installed uint64
}

func NewFeedService(client api.Client, router AuthFailureRouter, log logging.Logger) FeedService {
	return &feedService{client: client, router: router, log: log, nowFn: time.Now}
}

// FilterLocally returns the posts whose content contains query,
// case-insensitively. Pure: an empty query returns posts unchanged, a
// non-matching query returns an empty sequence, and posts is never
// mutated. The caller distinguishes "no query" from "no matches" to
// decide whether to re-show the unfiltered feed.
func FilterLocally(posts []models.Post, query string) []models.Post {
	if query == "" {
		return posts
	}
	needle := strings.ToLower(query)
	matched := make([]models.Post, 0)
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Content), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// sortPosts orders posts descending by date. The sort is stable so equal
// dates keep their original response order.
func sortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].ParsedDate().After(posts[j].ParsedDate())
	})
}

// ticket reserves an ordering slot for a load that is about to start.
func (s *feedService) ticket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// installIfNewest installs posts unless a newer load has already
// completed, and returns the feed actually held afterwards.
func (s *feedService) installIfNewest(seq uint64, posts []models.Post) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.installed {
		s.installed = seq
		s.posts = posts
	}
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

func (s *feedService) LoadPosts(ctx context.Context) []models.Post {
	seq := s.ticket()

	articles, err := s.client.Articles(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "feed not loaded", "error", err)
		}
		return []models.Post{}
	}

	sortPosts(articles)
	return s.installIfNewest(seq, articles)
}

func (s *feedService) LoadComments(ctx context.Context, postID int64) []models.Comment {
	post, err := s.client.Article(ctx, postID)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			s.router.RedirectToLogin(ctx)
		case errors.Is(err, api.ErrNotFound):
			// Absent post, empty comments.
		default:
			s.log.Warn(ctx, "comments not loaded", "post_id", postID, "error", err)
		}
		return []models.Comment{}
	}

	comments := make([]models.Comment, len(post.Comments))
	for i, c := range post.Comments {
		comments[i] = models.Comment{Commenter: c.Commenter, Content: c.Content}
	}
	return comments
}

func (s *feedService) SubmitPost(ctx context.Context, text, image string) []models.Post {
	seq := s.ticket()

	date := s.nowFn().Format(models.DateLayout)
	articles, err := s.client.CreateArticle(ctx, text, image, date)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "post not submitted", "error", err)
		}
		return []models.Post{}
	}

	sortPosts(articles)
	return s.installIfNewest(seq, articles)
}

func (s *feedService) UploadImage(ctx context.Context, filename string, data []byte) string {
	url, err := s.client.UploadImage(ctx, filename, data)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.router.RedirectToLogin(ctx)
		} else {
			s.log.Warn(ctx, "image not uploaded", "filename", filename, "error", err)
		}
		return ""
	}
	return url
}

func (s *feedService) Posts() []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	return out
}
