package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// HTTPClient is the production Client implementation over net/http.
type HTTPClient struct {
	baseURL    string
	suggestURL string
	httpc      *http.Client
	tokens     TokenSource
	log        logging.Logger
}

// NewHTTPClient builds a client for the backend at baseURL. suggestURL is
// the external address-autocomplete endpoint and may be empty when the
// feature is not configured. tokens supplies the session token attached to
// authenticated calls.
func NewHTTPClient(baseURL, suggestURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		suggestURL: suggestURL,
		httpc:      &http.Client{Timeout: timeout},
		tokens:     tokens,
		log:        log,
	}
}

func (c *HTTPClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// do issues one request and maps failures onto the error taxonomy:
// transport errors wrap ErrUnavailable, non-2xx statuses become
// *StatusError. On success the caller owns resp.Body.
func (c *HTTPClient) do(ctx context.Context, method, rawurl string, headers http.Header, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawurl, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)

	resp, err := c.httpc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request aborted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		c.log.Warn(ctx, "request failed", "method", method, "url", rawurl, "status", resp.StatusCode, "request_id", reqID)
		return nil, &StatusError{Code: resp.StatusCode}
	}
	return resp, nil
}

// doJSON runs one JSON round trip. in may be nil for body-less requests;
// out may be nil when the response body is irrelevant. The response
// headers are returned for callers that consume header-carried values
// (the login token, profile ETags).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, opts HeaderOptions, in, out any) (http.Header, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	resp, err := c.do(ctx, method, c.baseURL+path, BuildHeaders(c.tokens.Token(), opts), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.Header, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Username string `json:"username"`
	Result   bool   `json:"result"`
}

// Login checks credentials against the backend. The session token arrives
// in the Token response header, the result flag in the body. Status codes
// are preserved in the returned error so the caller can distinguish wrong
// credentials (401) from a not-yet-activated account (403).
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var lr loginResponse
	hdr, err := c.doJSON(ctx, http.MethodPost, "/api/user/login",
		HeaderOptions{}, loginRequest{Username: username, Password: password}, &lr)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: hdr.Get(TokenHeader), Result: lr.Result}, nil
}

type registrationRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, firstName, lastName, email, password string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/user/registration", HeaderOptions{},
		registrationRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password}, nil)
	return err
}

type userResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	Avatar    string `json:"avatar"`
	Password  string `json:"password"`
}

func (c *HTTPClient) FetchUser(ctx context.Context, username string) (*models.UserSnapshot, error) {
	var ur userResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/user/"+url.PathEscape(username),
		HeaderOptions{IncludeAuth: true}, nil, &ur); err != nil {
		return nil, err
	}
	return &models.UserSnapshot{
		Email:     ur.Email,
		FirstName: ur.FirstName,
		LastName:  ur.LastName,
		Status:    ur.Status,
		Avatar:    ur.Avatar,
		Password:  ur.Password,
	}, nil
}

func (c *HTTPClient) Following(ctx context.Context) (*models.FollowGraph, error) {
	var g models.FollowGraph
	if _, err := c.doJSON(ctx, http.MethodGet, "/following",
		HeaderOptions{IncludeAuth: true}, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Unfollow deletes the follow edge and returns the server's authoritative
// follow graph, which the caller installs verbatim.
func (c *HTTPClient) Unfollow(ctx context.Context, username string) (*models.FollowGraph, error) {
	var g models.FollowGraph
	if _, err := c.doJSON(ctx, http.MethodDelete, "/following?user="+url.QueryEscape(username),
		HeaderOptions{IncludeAuth: true}, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// The three aggregation endpoints answer with arrays positionally aligned
// to the comma-joined request list. Only the values are returned here, in
// response order; the aggregator relies on the alignment contract.

type displayNamesResponse struct {
	DisplayNames []struct {
		Username    string `json:"username"`
		DisplayName string `json:"displayname"`
	} `json:"displaynames"`
}

func (c *HTTPClient) DisplayNames(ctx context.Context, usernames []string) ([]string, error) {
	var r displayNamesResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/displaynames?users="+usersParam(usernames),
		HeaderOptions{IncludeAuth: true}, nil, &r); err != nil {
		return nil, err
	}
	out := make([]string, len(r.DisplayNames))
	for i, e := range r.DisplayNames {
		out[i] = e.DisplayName
	}
	return out, nil
}

type headlinesResponse struct {
	Headlines []struct {
		Username string `json:"username"`
		Headline string `json:"headline"`
	} `json:"headlines"`
}

func (c *HTTPClient) Headlines(ctx context.Context, usernames []string) ([]string, error) {
	var r headlinesResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/headlines?users="+usersParam(usernames),
		HeaderOptions{IncludeAuth: true}, nil, &r); err != nil {
		return nil, err
	}
	out := make([]string, len(r.Headlines))
	for i, e := range r.Headlines {
		out[i] = e.Headline
	}
	return out, nil
}

type avatarsResponse struct {
	Avatars []struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
	} `json:"avatars"`
}

func (c *HTTPClient) Avatars(ctx context.Context, usernames []string) ([]string, error) {
	var r avatarsResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/avatars?users="+usersParam(usernames),
		HeaderOptions{IncludeAuth: true}, nil, &r); err != nil {
		return nil, err
	}
	out := make([]string, len(r.Avatars))
	for i, e := range r.Avatars {
		out[i] = e.Avatar
	}
	return out, nil
}

func usersParam(usernames []string) string {
	escaped := make([]string, len(usernames))
	for i, u := range usernames {
		escaped[i] = url.QueryEscape(u)
	}
	return strings.Join(escaped, ",")
}

type articlesResponse struct {
	Articles []models.Post `json:"articles"`
}

func (c *HTTPClient) Articles(ctx context.Context) ([]models.Post, error) {
	var r articlesResponse
	if _, err := c.doJSON(ctx, http.MethodGet, "/articles",
		HeaderOptions{IncludeAuth: true}, nil, &r); err != nil {
		return nil, err
	}
	return r.Articles, nil
}

// Article fetches one article by id, with its comments nested.
func (c *HTTPClient) Article(ctx context.Context, id int64) (*models.Post, error) {
	var r articlesResponse
	if _, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/articles/%d", id),
		HeaderOptions{IncludeAuth: true}, nil, &r); err != nil {
		return nil, err
	}
	if len(r.Articles) == 0 {
		return nil, &StatusError{Code: http.StatusNotFound}
	}
	return &r.Articles[0], nil
}

type createArticleRequest struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	Date  string `json:"date"`
}

func (c *HTTPClient) CreateArticle(ctx context.Context, text, image, date string) ([]models.Post, error) {
	var r articlesResponse
	if _, err := c.doJSON(ctx, http.MethodPost, "/articles",
		HeaderOptions{IncludeAuth: true},
		createArticleRequest{Text: text, Image: image, Date: date}, &r); err != nil {
		return nil, err
	}
	return r.Articles, nil
}

// Profile reads the profile document for email and captures the
// entity-version token from the ETag response header.
func (c *HTTPClient) Profile(ctx context.Context, email string) (*ProfileRead, error) {
	var p models.Profile
	hdr, err := c.doJSON(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(email),
		HeaderOptions{IncludeAuth: true}, nil, &p)
	if err != nil {
		return nil, err
	}
	return &ProfileRead{Profile: p, ETag: hdr.Get(ETagHeader)}, nil
}

// CheckProfile probes for the profile's existence and returns the current
// entity-version token without consuming the body.
func (c *HTTPClient) CheckProfile(ctx context.Context, email string) (string, error) {
	hdr, err := c.doJSON(ctx, http.MethodGet, "/api/profile/"+url.PathEscape(email),
		HeaderOptions{IncludeAuth: true}, nil, nil)
	if err != nil {
		return "", err
	}
	return hdr.Get(ETagHeader), nil
}

// UpdateProfile performs the conditional write: the entity-version token
// captured from the last read is presented under If-Match. A stale token
// surfaces as an error matching ErrConflict. On success the fresh token
// from the write response is returned (empty when the server omitted it).
func (c *HTTPClient) UpdateProfile(ctx context.Context, email string, p models.Profile, etag string) (string, error) {
	hdr, err := c.doJSON(ctx, http.MethodPut, "/api/profile/"+url.PathEscape(email),
		HeaderOptions{IncludeAuth: true, ConditionalToken: etag}, p, nil)
	if err != nil {
		return "", err
	}
	return hdr.Get(ETagHeader), nil
}

// CreateProfile posts a new profile document. The backend expects the
// token under the non-standard Etag request header here.
func (c *HTTPClient) CreateProfile(ctx context.Context, p models.Profile, etag string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/api/profile",
		HeaderOptions{IncludeAuth: true, ConditionalToken: etag, ConditionalHeader: "Etag"}, p, nil)
	return err
}

type uploadResponse struct {
	URL string `json:"url"`
}

// UploadImage sends the image as a multipart form and returns the public
// URL assigned by the backend.
func (c *HTTPClient) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("writing multipart form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart form: %w", err)
	}

	headers := BuildHeaders(c.tokens.Token(), HeaderOptions{IncludeAuth: true})
	headers.Set(ContentTypeHeader, mw.FormDataContentType())

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/image-upload", headers, &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return ur.URL, nil
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

// SuggestAddresses queries the external autocomplete endpoint with an
// address prefix. No auth token is attached; the endpoint is foreign.
func (c *HTTPClient) SuggestAddresses(ctx context.Context, prefix string) ([]string, error) {
	if c.suggestURL == "" {
		return nil, nil
	}
	resp, err := c.do(ctx, http.MethodGet, c.suggestURL+"?prefix="+url.QueryEscape(prefix),
		BuildHeaders("", HeaderOptions{}), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return sr.Suggestions, nil
}
