package api

import "net/http"

// Header names of the backend protocol.
const (
	TokenHeader       = "Token"
	ETagHeader        = "ETag"
	IfMatchHeader     = "If-Match"
	ContentTypeHeader = "Content-Type"
	RequestIDHeader   = "X-Request-Id"

	contentTypeJSON = "application/json"
)

// HeaderOptions selects which headers BuildHeaders emits.
type HeaderOptions struct {
	// IncludeAuth attaches the session token, when one exists.
	IncludeAuth bool
	// ConditionalToken, when non-empty, is presented as the
	// entity-version token for a conditional write.
	ConditionalToken string
	// ConditionalHeader overrides the header name the token is sent
	// under. Empty means If-Match; the profile-create endpoint expects
	// the token under "Etag" instead.
	ConditionalHeader string
}

// BuildHeaders produces the header set for one request from the current
// token and the given options. Deterministic, no side effects: the
// content type is always set, the auth token only when requested and
// present, the conditional token only when supplied.
func BuildHeaders(token string, opts HeaderOptions) http.Header {
	h := http.Header{}
	h.Set(ContentTypeHeader, contentTypeJSON)
	if opts.IncludeAuth && token != "" {
		h.Set(TokenHeader, token)
	}
	if opts.ConditionalToken != "" {
		name := opts.ConditionalHeader
		if name == "" {
			name = IfMatchHeader
		}
		h.Set(name, opts.ConditionalToken)
	}
	return h
}
