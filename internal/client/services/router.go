package services

import (
	"context"

	"github.com/ryliegao/ricebook-client/internal/client/session"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// AuthFailureRouter is the single sink for session expiry. Every service
// invokes it (at most once per operation) when a call comes back
// unauthorized, then resolves to its documented empty/false fallback.
// What "navigating to the login state" means is up to the embedding
// application.
type AuthFailureRouter interface {
	RedirectToLogin(ctx context.Context)
}

// RouterFunc adapts a plain function to AuthFailureRouter.
type RouterFunc func(ctx context.Context)

func (f RouterFunc) RedirectToLogin(ctx context.Context) { f(ctx) }

// sessionClearingRouter clears the session before delegating navigation,
// so a header built after the redirect never carries the dead token.
type sessionClearingRouter struct {
	sessions *session.Store
	next     AuthFailureRouter
	log      logging.Logger
}

// NewSessionClearingRouter wraps next so that any auth failure first wipes
// the session store. next may be nil when the application has no
// navigation to perform.
func NewSessionClearingRouter(sessions *session.Store, next AuthFailureRouter, log logging.Logger) AuthFailureRouter {
	return &sessionClearingRouter{sessions: sessions, next: next, log: log}
}

func (r *sessionClearingRouter) RedirectToLogin(ctx context.Context) {
	r.log.Warn(ctx, "session expired, routing to login")
	r.sessions.Logout(ctx)
	if r.next != nil {
		r.next.RedirectToLogin(ctx)
	}
}
