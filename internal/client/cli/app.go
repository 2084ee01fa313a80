package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ryliegao/ricebook-client/internal/client/api"
	"github.com/ryliegao/ricebook-client/internal/client/config"
	"github.com/ryliegao/ricebook-client/internal/client/services"
	"github.com/ryliegao/ricebook-client/internal/client/session"
	"github.com/ryliegao/ricebook-client/internal/client/storage"
	"github.com/ryliegao/ricebook-client/internal/filex"
	"github.com/ryliegao/ricebook-client/internal/logging"
	"github.com/ryliegao/ricebook-client/internal/pubsub"

	_ "modernc.org/sqlite"
)

// App ties together the Ricebook client services behind the REPL.
type App struct {
	config   *config.Config
	sessions *session.Store
	auth     services.AuthService
	follow   services.FollowService
	profiles services.ProfileService
	feed     services.FeedService
	bus      pubsub.Bus
	client   api.Client
	db       *sql.DB
	reader   *bufio.Reader
	log      logging.Logger
}

// NewApp builds the full dependency graph. A broken local database is a
// downgrade, not a failure: the session then lives in memory only for
// this run.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	dbPath := c.DatabasePath
	if dir, err := filex.EnsureDataDir(".ricebook"); err == nil {
		dbPath = filepath.Join(dir, c.DatabasePath)
	}

	var db *sql.DB
	var sessions *session.Store
	repos, err := storage.InitDatabase(ctx, dbPath)
	if err != nil {
		log.Warn(ctx, "local storage unavailable, using memory-only session", "error", err)
		sessions = session.NewStore(ctx, nil, log)
	} else {
		db = repos.DB
		sessions = session.NewStore(ctx, repos.State, log)
	}

	router := services.NewSessionClearingRouter(sessions, services.RouterFunc(func(ctx context.Context) {
		fmt.Println("Your session has expired. Please log in again.")
	}), log)

	client := api.NewHTTPClient(c.ServerURL, c.SuggestURL, c.RequestTimeout, sessions, log)
	bus := pubsub.NewWatermillBus(log)

	profiles := services.NewProfileService(client, sessions, router, log)
	follow := services.NewFollowService(client, profiles, router, bus, log)
	feed := services.NewFeedService(client, router, log)
	auth := services.NewAuthService(client, sessions, log)

	return &App{
		config:   c,
		sessions: sessions,
		auth:     auth,
		follow:   follow,
		profiles: profiles,
		feed:     feed,
		bus:      bus,
		client:   client,
		db:       db,
		reader:   bufio.NewReader(os.Stdin),
		log:      log,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Active()
}

// getStatus renders the prompt suffix: the logged-in user's email, if any.
func (a *App) getStatus() string {
	if u, ok := a.sessions.CurrentUser(); ok {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return ""
}

// Run subscribes to removal notifications and enters the REPL, blocking
// until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	err := a.bus.Subscribe(ctx, services.TopicFolloweeRemoved, func(ctx context.Context, msg pubsub.Message) error {
		ev, err := services.DecodeFolloweeRemoved(msg)
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Unfollowed %s. Now following %d users.", ev.Username, len(ev.Following)))
		return nil
	})
	if err != nil {
		a.log.Warn(ctx, "removal notifications unavailable", "error", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	printlnFn("Welcome to Ricebook CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, scanner)
}

// Close releases the bus, the API client, and the local database.
func (a *App) Close() {
	if err := a.bus.Close(); err != nil {
		a.log.Warn(context.Background(), "event bus not closed cleanly", "error", err)
	}
	if err := a.client.Close(); err != nil {
		a.log.Warn(context.Background(), "api client not closed cleanly", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
