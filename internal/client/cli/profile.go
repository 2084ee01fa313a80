package cli

import (
	"context"
	"os"

	"github.com/ryliegao/ricebook-client/internal/client/models"
)

// Profile prints the logged-in user's profile document.
func (a *App) Profile(ctx context.Context) error {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		printlnFn("Not logged in.")
		return nil
	}

	p := a.profiles.GetProfile(ctx, u.Email)
	if p == nil {
		printlnFn("No profile yet. Use 'editprofile' to create one.")
		return nil
	}

	printlnFn("Display name:", p.DisplayName)
	printlnFn("Address:     ", p.AddressLine1)
	printlnFn("             ", p.AddressLine2)
	printlnFn("Home phone:  ", p.HomePhone)
	printlnFn("Work phone:  ", p.WorkPhone)
	return nil
}

// EditProfile walks the user through the profile fields and performs a
// conditional write against the version seen at read time. A blank answer
// keeps the current value. When the server reports that the profile
// changed underneath us, the edit is abandoned and the user is told to
// re-read and retry.
func (a *App) EditProfile(ctx context.Context) error {
	u, ok := a.sessions.CurrentUser()
	if !ok {
		printlnFn("Not logged in.")
		return nil
	}

	current := a.profiles.GetProfile(ctx, u.Email)
	creating := current == nil
	if creating {
		current = &models.Profile{Email: u.Email}
		printlnFn("No profile yet; creating one.")
	}

	edited := *current
	fields := []struct {
		prompt string
		value  *string
	}{
		{"Display name", &edited.DisplayName},
		{"Address line 1", &edited.AddressLine1},
		{"Address line 2", &edited.AddressLine2},
		{"Home phone", &edited.HomePhone},
		{"Work phone", &edited.WorkPhone},
	}
	for _, f := range fields {
		answer, err := getSimpleText(a.reader, f.prompt+" ["+*f.value+"]", os.Stdout)
		if err != nil {
			return err
		}
		if answer != "" {
			*f.value = answer
		}
	}

	if creating {
		if a.profiles.CreateProfile(ctx, edited) {
			printlnFn("Profile created.")
		} else {
			printlnFn("Could not create profile.")
		}
		return nil
	}

	switch a.profiles.UpdateProfile(ctx, u.Email, edited) {
	case models.UpdateApplied:
		printlnFn("Profile saved.")
	case models.UpdateConflict:
		printlnFn("Your profile changed elsewhere. Run 'profile' to reload, then retry.")
	default:
		printlnFn("Could not save profile.")
	}
	return nil
}

// Suggest queries the address autocomplete service.
func (a *App) Suggest(ctx context.Context, prefix string) error {
	suggestions := a.profiles.SuggestAddresses(ctx, prefix)
	if len(suggestions) == 0 {
		printlnFn("No suggestions.")
		return nil
	}
	for _, s := range suggestions {
		printlnFn("  " + s)
	}
	return nil
}
