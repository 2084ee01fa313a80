// Package services contains the application services of the Ricebook
// client: authentication and session upkeep, the follow graph with its
// optimistic-update protocol, the profile aggregator and conditional
// profile writes, and the feed.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/session"
	"github.com/ryliegao/ricebook-client/internal/logging"
)

// Registration is the payload collected from the registration form.
// PasswordConfirm must repeat Password, and the birthday must put the
// registrant at 18 years or older on the day of registration.
type Registration struct {
	FirstName       string    `validate:"required"`
	LastName        string    `validate:"required"`
	Email           string    `validate:"required,email"`
	Password        string    `validate:"required"`
	PasswordConfirm string    `validate:"required,eqfield=Password"`
	Birthday        time.Time `validate:"required,adult"`
}

// LoginOutcome reports a credentials check. StatusCode carries the raw
// server status when the login was rejected, because the login path alone
// distinguishes wrong credentials (401) from a not-yet-activated account
// (403). A transport failure leaves both fields zero.
type LoginOutcome struct {
	OK         bool
	StatusCode int
}

// AuthService manages the session lifecycle.
//
// Contract:
//   - Login: check credentials, store the issued token, fetch and store
//     the user snapshot wholesale.
//   - Register: validate and submit a new account.
//   - Logout: clear the session, in memory and in durable storage.
//   - ChangeStatus: replace the stored snapshot with an updated headline.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password string) LoginOutcome
	Register(ctx context.Context, reg Registration) error
	Logout(ctx context.Context)
	ChangeStatus(ctx context.Context, status string)
}

type authService struct {
	client   api.Client
	sessions *session.Store
	validate *validator.Validate
	log      logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client
// and session store.
func NewAuthService(client api.Client, sessions *session.Store, log logging.Logger) AuthService {
	v := validator.New()
	// adult: 18 years or older on the day of registration.
	_ = v.RegisterValidation("adult", func(fl validator.FieldLevel) bool {
		birthday, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		return isAdult(birthday, time.Now())
	})
	return &authService{client: client, sessions: sessions, validate: v, log: log}
}

func isAdult(birthday, today time.Time) bool {
	cutoff := birthday.AddDate(18, 0, 0)
	return !today.Before(cutoff)
}

// Login checks the credentials, and on success stores the header-carried
// token and the freshly fetched user snapshot. Rejections are reported
// through the outcome's status code; transport failures resolve to a
// plain unsuccessful outcome.
func (a *authService) Login(ctx context.Context, username, password string) LoginOutcome {
	res, err := a.client.Login(ctx, username, password)
	if err != nil {
		if code := api.StatusCode(err); code != 0 {
			return LoginOutcome{StatusCode: code}
		}
		a.log.Warn(ctx, "login request failed", "error", err)
		return LoginOutcome{}
	}
	if !res.Result {
		return LoginOutcome{}
	}

	a.sessions.Login(ctx, res.Token)

	// The snapshot is replaced wholesale on every update.
	u, err := a.client.FetchUser(ctx, username)
	if err != nil {
		a.log.Warn(ctx, "user snapshot not fetched after login", "username", username, "error", err)
		return LoginOutcome{OK: true}
	}
	u.LoggedIn = true
	a.sessions.SetCurrentUser(ctx, *u)

	return LoginOutcome{OK: true}
}

// Register validates the registration payload and submits it. Validation
// failures are returned to the caller verbatim so the form can display
// them.
func (a *authService) Register(ctx context.Context, reg Registration) error {
	if err := a.validate.Struct(reg); err != nil {
		return fmt.Errorf("invalid registration: %w", err)
	}
	if err := a.client.Register(ctx, reg.FirstName, reg.LastName, reg.Email, reg.Password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) {
	a.sessions.Logout(ctx)
}

// ChangeStatus replaces the stored user snapshot with one carrying the
// new headline. A missing snapshot is a no-op.
func (a *authService) ChangeStatus(ctx context.Context, status string) {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		return
	}
	a.sessions.SetCurrentUser(ctx, u.WithStatus(status))
}
