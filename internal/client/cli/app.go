package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/notehub/internal/client/client"
	"github.com/dmitrijs2005/notehub/internal/client/config"
	"github.com/dmitrijs2005/notehub/internal/client/metrics"
	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/netmon"
	"github.com/dmitrijs2005/notehub/internal/client/notify"
	"github.com/dmitrijs2005/notehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/notehub/internal/client/services"
	"github.com/dmitrijs2005/notehub/internal/logging"
)

// sessionService is the part of services.SessionManager the views use.
type sessionService interface {
	Snapshot() services.Session
	Start(ctx context.Context)
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, req models.RegisterRequest) error
	UpdateUserProfile(ctx context.Context, update models.ProfileUpdate) error
	RetryConnection(ctx context.Context)
	Watch(ctx context.Context, events <-chan netmon.Event)
}

// connectivity is the part of netmon.Monitor the app uses.
type connectivity interface {
	Check(ctx context.Context) bool
	Run(ctx context.Context) error
	Events() <-chan netmon.Event
}

type App struct {
	config   *config.Config
	log      logging.Logger
	closer   io.Closer
	session  sessionService
	monitor  connectivity
	registry prometheus.Gatherer
	validate *validator.Validate
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local database, builds the API client and the session
// manager, and probes the server once to learn the initial connectivity.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	base, err := logging.New(os.Stderr, c.LogLevel)
	if err != nil {
		return nil, err
	}
	log := base.With("cli_session", uuid.NewString())

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	headers := client.NewHeaders()
	api, err := client.NewHTTPClient(c.APIBaseURL, headers, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	monitor := netmon.New(api, c.OnlineCheckInterval, c.RequestTimeout, log.With("component", "netmon"))
	online := monitor.Check(ctx)
	log.Info(ctx, "initial connectivity", "online", online, "api", c.APIBaseURL)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	sm := services.NewSessionManager(
		api,
		metadata.NewSQLiteRepository(db),
		headers,
		notify.NewWriter(os.Stdout),
		log,
		collector,
		online,
	)

	return &App{
		config:   c,
		log:      log,
		closer:   db,
		session:  sm,
		monitor:  monitor,
		registry: registry,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Close releases the local database.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Run restores the session and starts the interactive REPL. The connectivity
// monitor, the reconciliation watcher and the optional metrics endpoint run
// alongside until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.monitor.Run(gctx)
	})
	g.Go(func() error {
		a.session.Watch(gctx, a.monitor.Events())
		return nil
	})
	if a.config.MetricsAddr != "" {
		g.Go(func() error {
			a.log.Info(gctx, "serving metrics", "addr", a.config.MetricsAddr)
			if err := metrics.Serve(gctx, a.config.MetricsAddr, a.registry); err != nil {
				a.log.Error(gctx, "metrics server failed", "addr", a.config.MetricsAddr, "error", err)
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		a.Root(gctx)
		return nil
	})
	return g.Wait()
}

// RunCommand restores the session and runs a single view.
func (a *App) RunCommand(ctx context.Context, view func(ctx context.Context) error) error {
	a.session.Start(ctx)
	return view(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().LoggedIn
}
