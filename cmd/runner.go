package main

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tuneport/tuneport/internal/library"
	"github.com/tuneport/tuneport/internal/match"
	"github.com/tuneport/tuneport/internal/report"
	"github.com/tuneport/tuneport/internal/repositories"
	"github.com/tuneport/tuneport/internal/services"
	"github.com/tuneport/tuneport/internal/shared"
	"github.com/tuneport/tuneport/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    *services.SpotifyService
	youtube    *services.YouTubeService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    *services.SpotifyService
	YouTube    *services.YouTubeService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		youtube:    opts.YouTube,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, transferCommand, reportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openDatabase lazily opens the configured SQLite database and runs pending
// migrations. The handle is cached on the runner.
func (r *Runner) openDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// reader returns a library reader over the YouTube Music source.
func (r *Runner) reader() (*library.Reader, error) {
	if r.youtube == nil {
		return nil, fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}
	return library.NewReader(r.youtube), nil
}

// synchronizer wires a Synchronizer from the runner's config and services.
//
// The match cache and run persistence degrade gracefully: if the database
// cannot be opened the transfer still runs, just without them.
func (r *Runner) synchronizer() (*tasks.Synchronizer, *report.Report, error) {
	if r.spotify == nil {
		return nil, nil, fmt.Errorf("%w: Spotify service not initialized (run 'setup config' and 'auth login')", shared.ErrServiceUnavailable)
	}

	reader, err := r.reader()
	if err != nil {
		return nil, nil, err
	}

	var cache match.Cache
	if db, err := r.openDatabase(); err != nil {
		r.logger.Warn("match cache unavailable", "err", err)
	} else {
		cache = repositories.NewMatchCacheRepository(db)
	}

	rep := report.New(r.logger)
	matcher := match.NewMatcher(r.spotify, cache, r.logger)
	sync := tasks.NewSynchronizer(reader, matcher, r.spotify, rep, r.logger, tasks.Opts{
		BatchSize:  r.config.Sync.BatchSize,
		BatchPause: r.config.Sync.BatchPause(),
	})

	return sync, rep, nil
}

// persistRun saves a finished report, logging rather than failing on error;
// the transfer already happened and its outcome is already printed.
func (r *Runner) persistRun(rep *report.Report) {
	rep.Finish()

	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("run not persisted", "err", err)
		return
	}

	if err := repositories.NewRunRepository(db).SaveRun(rep); err != nil {
		r.logger.Warn("run not persisted", "err", err)
		return
	}
	r.logger.Info("run saved", "id", rep.ID)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
