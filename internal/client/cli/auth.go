package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ryliegao/ricebook-client/internal/client/services"
)

// getSimpleText and getPassword are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in
// tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and checks them against the backend.
// The login path distinguishes wrong credentials from a not-yet-activated
// account by status code.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	outcome := a.auth.Login(ctx, username, password)
	switch {
	case outcome.OK:
		printlnFn("Login successful!")
	case outcome.StatusCode == http.StatusForbidden:
		printlnFn("Please activate your account first!")
	default:
		printlnFn("E-mail address and password do not match!")
	}
	return nil
}

// Register collects the registration form, including the birthday used
// by the 18+ check, and submits it.
func (a *App) Register(ctx context.Context) error {
	firstName, err := getSimpleText(a.reader, "Enter first name", os.Stdout)
	if err != nil {
		return err
	}
	lastName, err := getSimpleText(a.reader, "Enter last name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	birthdayText, err := getSimpleText(a.reader, "Enter birthday (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	birthday, err := time.Parse("2006-01-02", birthdayText)
	if err != nil {
		printlnFn("Invalid birthday format.")
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	printlnFn("Repeat your password.")
	passwordConfirm, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	reg := services.Registration{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Password:        password,
		PasswordConfirm: passwordConfirm,
		Birthday:        birthday,
	}
	if err := a.auth.Register(ctx, reg); err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	printlnFn("Success!")
	return nil
}

// Logout clears the session, in memory and in durable storage.
func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out.")
	return nil
}

// Whoami prints the stored user snapshot.
func (a *App) Whoami(ctx context.Context) error {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn(fmt.Sprintf("%s %s <%s>", u.FirstName, u.LastName, u.Email))
	if u.Status != "" {
		printlnFn("Headline:", u.Status)
	}
	return nil
}

// Status replaces the stored headline.
func (a *App) Status(ctx context.Context, status string) error {
	if status == "" {
		printlnFn("Usage: status <text>")
		return nil
	}
	a.auth.ChangeStatus(ctx, status)
	printlnFn("Headline updated.")
	return nil
}
