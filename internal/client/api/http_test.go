package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(serverURL string, token string) *HTTPClient {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewHTTPClient(serverURL, "", 5*time.Second, staticToken(token), log)
}

func TestLogin_TokenFromHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/user/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sb", body["username"])
		assert.Equal(t, "secret", body["password"])
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		w.Header().Set(TokenHeader, "tok-123")
		w.Header().Set(ContentTypeHeader, "application/json")
		_, _ = w.Write([]byte(`{"username":"sb","result":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "")
	res, err := c.Login(context.Background(), "sb", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.True(t, res.Result)
}

func TestLogin_StatusPreserved(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"wrong credentials", http.StatusUnauthorized},
		{"account not activated", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			c := newTestClient(srv.URL, "")
			_, err := c.Login(context.Background(), "sb", "bad")

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, tt.code, StatusCode(err))
		})
	}
}

func TestFetchUser_AttachesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/sb", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(TokenHeader))
		_, _ = w.Write([]byte(`{"first_name":"Salt","last_name":"Bae","email":"sb@rice.edu","status":"hi","avatar":"a.png"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	u, err := c.FetchUser(context.Background(), "sb")

	require.NoError(t, err)
	assert.Equal(t, &models.UserSnapshot{
		Email: "sb@rice.edu", FirstName: "Salt", LastName: "Bae", Status: "hi", Avatar: "a.png",
	}, u)
}

func TestDisplayNames_PositionalAlignment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/displaynames", r.URL.Path)
		assert.Equal(t, "alice,bob", r.URL.Query().Get("users"))
		_, _ = w.Write([]byte(`{"displaynames":[
			{"username":"alice","displayname":"Alice A"},
			{"username":"bob","displayname":"Bob B"}
		]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	names, err := c.DisplayNames(context.Background(), []string{"alice", "bob"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Alice A", "Bob B"}, names)
}

func TestUnfollow_ReturnsServerGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/following", r.URL.Path)
		assert.Equal(t, "bob", r.URL.Query().Get("user"))
		_, _ = w.Write([]byte(`{"username":"sb","following":["alice","carol"]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	g, err := c.Unfollow(context.Background(), "bob")

	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, g.Following)
}

func TestProfile_CapturesETag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/profile/sb@rice.edu", r.URL.Path)
		w.Header().Set(ETagHeader, `"v7"`)
		_, _ = w.Write([]byte(`{"display_name":"Salt Bae","address_line_1":"6100 Main St"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	read, err := c.Profile(context.Background(), "sb@rice.edu")

	require.NoError(t, err)
	assert.Equal(t, `"v7"`, read.ETag)
	assert.Equal(t, "Salt Bae", read.Profile.DisplayName)
}

func TestUpdateProfile_ConditionalWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		// The token from the last read rides under If-Match.
		assert.Equal(t, `"v7"`, r.Header.Get(IfMatchHeader))
		w.Header().Set(ETagHeader, `"v8"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	fresh, err := c.UpdateProfile(context.Background(), "sb@rice.edu", models.Profile{DisplayName: "New"}, `"v7"`)

	require.NoError(t, err)
	assert.Equal(t, `"v8"`, fresh)
}

func TestUpdateProfile_StaleToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	_, err := c.UpdateProfile(context.Background(), "sb@rice.edu", models.Profile{}, `"stale"`)

	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateProfile_TokenUnderEtagHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/profile", r.URL.Path)
		// This endpoint expects the token under Etag, not If-Match.
		assert.Equal(t, `"v1"`, r.Header.Get("Etag"))
		assert.Empty(t, r.Header.Get(IfMatchHeader))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	err := c.CreateProfile(context.Background(), models.Profile{Email: "sb@rice.edu"}, `"v1"`)

	require.NoError(t, err)
}

func TestArticle_NoArticlesMeansNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/articles/7", r.URL.Path)
		_, _ = w.Write([]byte(`{"articles":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	_, err := c.Article(context.Background(), 7)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImage_Multipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/image-upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "x.png", header.Filename)

		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, data)

		_, _ = w.Write([]byte(`{"url":"https://cdn.example.com/x.png"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "tok")
	url, err := c.UploadImage(context.Background(), "x.png", []byte{1, 2, 3})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/x.png", url)
}

func TestSuggestAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "6100 Ma", r.URL.Query().Get("prefix"))
		// The external endpoint never sees the session token.
		assert.Empty(t, r.Header.Get(TokenHeader))
		_, _ = w.Write([]byte(`{"suggestions":["6100 Main St"]}`))
	}))
	defer srv.Close()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := NewHTTPClient("http://backend.invalid", srv.URL, 5*time.Second, staticToken("tok"), log)

	got, err := c.SuggestAddresses(context.Background(), "6100 Ma")

	require.NoError(t, err)
	assert.Equal(t, []string{"6100 Main St"}, got)
}

func TestSuggestAddresses_NotConfigured(t *testing.T) {
	c := newTestClient("http://backend.invalid", "tok")

	got, err := c.SuggestAddresses(context.Background(), "6100")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDo_UnreachableServer(t *testing.T) {
	// A closed listener: connections are refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(srv.URL, "tok")
	_, err := c.Articles(context.Background())

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(srv.URL, "tok")
	_, err := c.Articles(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
