package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/models"
	"github.com/ryliegao/ricebook-client/internal/client/session"
)

func newMemoryStore(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(context.Background(), nil, testLogger())
}

func TestIsAdult(t *testing.T) {
	today := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		birthday time.Time
		want     bool
	}{
		{"well over 18", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{"18th birthday today", time.Date(2008, 8, 29, 0, 0, 0, 0, time.UTC), true},
		{"18 tomorrow", time.Date(2008, 8, 30, 0, 0, 0, 0, time.UTC), false},
		{"clearly a minor", time.Date(2015, 3, 10, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isAdult(tt.birthday, today))
		})
	}
}

func TestLogin_Success(t *testing.T) {
	client := &fakeClient{
		LoginRet:     &api.LoginResult{Token: "tok-123", Result: true},
		FetchUserRet: &models.UserSnapshot{Email: "sb@rice.edu", FirstName: "Salt"},
	}
	sessions := newMemoryStore(t)
	svc := NewAuthService(client, sessions, testLogger())

	outcome := svc.Login(context.Background(), "sb", "secret")

	require.True(t, outcome.OK)
	assert.Equal(t, "sb", client.LastLoginUsername)
	assert.Equal(t, "tok-123", sessions.Token())

	u, ok := sessions.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "sb@rice.edu", u.Email)
	assert.True(t, u.LoggedIn)
}

func TestLogin_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"wrong credentials", &api.StatusError{Code: http.StatusUnauthorized}, http.StatusUnauthorized},
		{"account not activated", &api.StatusError{Code: http.StatusForbidden}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{LoginErr: tt.err}
			sessions := newMemoryStore(t)
			svc := NewAuthService(client, sessions, testLogger())

			outcome := svc.Login(context.Background(), "sb", "bad")

			assert.False(t, outcome.OK)
			assert.Equal(t, tt.wantStatus, outcome.StatusCode)
			assert.Empty(t, sessions.Token())
		})
	}
}

func TestLogin_TransportFailure(t *testing.T) {
	client := &fakeClient{LoginErr: api.ErrUnavailable}
	sessions := newMemoryStore(t)
	svc := NewAuthService(client, sessions, testLogger())

	outcome := svc.Login(context.Background(), "sb", "secret")

	assert.Equal(t, LoginOutcome{}, outcome)
	assert.Empty(t, sessions.Token())
}

func TestLogin_ResultFalse(t *testing.T) {
	client := &fakeClient{LoginRet: &api.LoginResult{Result: false}}
	sessions := newMemoryStore(t)
	svc := NewAuthService(client, sessions, testLogger())

	outcome := svc.Login(context.Background(), "sb", "secret")

	assert.False(t, outcome.OK)
	assert.Empty(t, sessions.Token())
}

func TestLogin_SnapshotFetchFails(t *testing.T) {
	// The session is still established; only the snapshot is missing.
	client := &fakeClient{
		LoginRet:     &api.LoginResult{Token: "tok", Result: true},
		FetchUserErr: api.ErrUnavailable,
	}
	sessions := newMemoryStore(t)
	svc := NewAuthService(client, sessions, testLogger())

	outcome := svc.Login(context.Background(), "sb", "secret")

	assert.True(t, outcome.OK)
	assert.Equal(t, "tok", sessions.Token())
	_, ok := sessions.CurrentUser()
	assert.False(t, ok)
}

func validRegistration() Registration {
	return Registration{
		FirstName:       "Salt",
		LastName:        "Bae",
		Email:           "sb@rice.edu",
		Password:        "secret",
		PasswordConfirm: "secret",
		Birthday:        time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRegister_OK(t *testing.T) {
	client := &fakeClient{}
	svc := NewAuthService(client, newMemoryStore(t), testLogger())

	err := svc.Register(context.Background(), validRegistration())

	require.NoError(t, err)
	assert.Equal(t, 1, client.RegisterCalls)
	assert.Equal(t, "sb@rice.edu", client.LastRegisterEmail)
}

func TestRegister_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Registration)
	}{
		{"missing first name", func(r *Registration) { r.FirstName = "" }},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }},
		{"password mismatch", func(r *Registration) { r.PasswordConfirm = "other" }},
		{"underage", func(r *Registration) { r.Birthday = time.Now().AddDate(-17, 0, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{}
			svc := NewAuthService(client, newMemoryStore(t), testLogger())

			reg := validRegistration()
			tt.mutate(&reg)

			err := svc.Register(context.Background(), reg)

			require.Error(t, err)
			assert.Zero(t, client.RegisterCalls, "invalid form must not reach the server")
		})
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	sessions := newMemoryStore(t)
	sessions.Login(context.Background(), "tok")
	svc := NewAuthService(&fakeClient{}, sessions, testLogger())

	svc.Logout(context.Background())

	assert.False(t, sessions.Active())
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	sessions := newMemoryStore(t)
	svc := NewAuthService(&fakeClient{}, sessions, testLogger())

	// No snapshot held: no-op.
	svc.ChangeStatus(ctx, "new headline")
	_, ok := sessions.CurrentUser()
	assert.False(t, ok)

	sessions.SetCurrentUser(ctx, models.UserSnapshot{Email: "sb@rice.edu", Status: "old"})
	svc.ChangeStatus(ctx, "new headline")

	u, ok := sessions.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "new headline", u.Status)
	assert.Equal(t, "sb@rice.edu", u.Email)
}
