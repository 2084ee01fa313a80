package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var printlnFn = fmt.Println
var printFn = fmt.Print

// execIface defines the minimal command surface the REPL needs to
// operate. The real App type satisfies this interface; tests can provide
// a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Feed(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Post(ctx context.Context) error
	Comments(ctx context.Context, id string) error
	Follow(ctx context.Context, username string) error
	Unfollow(ctx context.Context, username string) error
	Following(ctx context.Context) error
	Profile(ctx context.Context) error
	EditProfile(ctx context.Context) error
	Status(ctx context.Context, status string) error
	Upload(ctx context.Context, path string) error
	Suggest(ctx context.Context, prefix string) error
	Whoami(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the Ricebook CLI.
//
// It reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers
// should log their own errors. This keeps the REPL loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printFn(fmt.Sprintf("ricebook %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: feed, search <text>, post, comments <id>,")
				printlnFn("  follow <user>, unfollow <user>, following, profile, editprofile,")
				printlnFn("  status <text>, upload <file>, suggest <prefix>, whoami, logout, exit")
			} else {
				printlnFn("Available commands: login, register, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "feed":
			_ = a.Feed(ctx)

		case "search":
			_ = a.Search(ctx, strings.Join(args, " "))

		case "post":
			_ = a.Post(ctx)

		case "comments":
			if len(args) == 0 {
				printlnFn("Usage: comments <id>")
				continue
			}
			_ = a.Comments(ctx, args[0])

		case "follow":
			if len(args) == 0 {
				printlnFn("Usage: follow <username>")
				continue
			}
			_ = a.Follow(ctx, args[0])

		case "unfollow":
			if len(args) == 0 {
				printlnFn("Usage: unfollow <username>")
				continue
			}
			_ = a.Unfollow(ctx, args[0])

		case "following":
			_ = a.Following(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "editprofile":
			_ = a.EditProfile(ctx)

		case "status":
			_ = a.Status(ctx, strings.Join(args, " "))

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <file>")
				continue
			}
			_ = a.Upload(ctx, args[0])

		case "suggest":
			if len(args) == 0 {
				printlnFn("Usage: suggest <prefix>")
				continue
			}
			_ = a.Suggest(ctx, strings.Join(args, " "))

		case "whoami":
			_ = a.Whoami(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
