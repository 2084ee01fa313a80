package cli

import (
	"context"
	"fmt"
)

// Follow adds a user to the following set. The new followee appears in
// the list immediately; a background refresh reconciles with the server.
func (a *App) Follow(ctx context.Context, username string) error {
	info := a.follow.AddFollowee(ctx, username)
	if info == nil {
		printlnFn("Could not follow", username)
		return nil
	}

	name := info.DisplayName
	if name == "" {
		name = info.Username
	}
	printlnFn(fmt.Sprintf("Now following %s (%s)", name, info.Username))
	return nil
}

// Unfollow removes a user from the following set and installs whatever
// the server reports back.
func (a *App) Unfollow(ctx context.Context, username string) error {
	if !a.follow.RemoveFollowee(ctx, username) {
		printlnFn("Could not unfollow", username)
	}
	// The confirmation itself arrives via the removal event subscription.
	return nil
}

// Following prints the current following set with each followee's
// displayname, headline and avatar resolved.
func (a *App) Following(ctx context.Context) error {
	usernames := a.follow.LoadFollowing(ctx)
	if len(usernames) == 0 {
		printlnFn("You are not following anyone yet.")
		return nil
	}

	infos := a.profiles.FetchBatch(ctx, usernames)
	if len(infos) == 0 {
		// Profile resolution failed wholesale; fall back to bare names.
		for _, u := range usernames {
			printlnFn("  " + u)
		}
		return nil
	}

	for _, info := range infos {
		line := fmt.Sprintf("  %s", info.DisplayName)
		if info.Headline != "" {
			line += " | " + info.Headline
		}
		printlnFn(line)
	}
	return nil
}
