// Package cli provides the interactive Ricebook command-line client.
//
// It wires configuration, local state storage, the API services, and an
// interactive REPL. Typical flow: log in (or register), browse the feed,
// manage the following list, and edit the profile.
//
// Key features:
//   - Login / Register / Logout with a persisted session
//   - Feed browsing, local full-text search, posting, comments
//   - Follow / Unfollow with live removal notifications
//   - Profile viewing and conditional (ETag-gated) editing
//
// The REPL is started via App.Run(ctx), which blocks until the user
// exits. See App and runREPL for details.
package cli
