package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/promo/internal/repositories"
	"github.com/desertthunder/promo/internal/services"
	"github.com/desertthunder/promo/internal/session"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/urfave/cli/v3"
)

// outputFormat selects how command results are printed.
type outputFormat int

const (
	plainOutput outputFormat = iota
	jsonOutput
	yamlOutput
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies that are not injected are built from the loaded config when a command runs.
type Runner struct {
	config      *shared.Config
	configFixed bool
	api         services.PromotionAPI
	raw         *services.APIService
	session     *session.Manager
	db          *sql.DB
	logger      *log.Logger
	output      io.Writer
	format      outputFormat
	getenv      func(string) string
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	API     services.PromotionAPI
	Raw     *services.APIService
	Session *session.Manager
	Logger  *log.Logger
	Output  io.Writer
	Getenv  func(string) string
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	fixed := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Getenv == nil {
		opts.Getenv = os.Getenv
	}

	return &Runner{
		config:      opts.Config,
		configFixed: fixed,
		api:         opts.API,
		raw:         opts.Raw,
		session:     opts.Session,
		logger:      opts.Logger,
		output:      opts.Output,
		getenv:      opts.Getenv,
	}
}

// SetLogger replaces the logger, as the TUI does to keep the terminal clean.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		loginCommand, logoutCommand, whoamiCommand,
		releasesCommand, tasksCommand, apiCommand,
		setupCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// prepare runs before every command: it loads config and applies the global flags.
func (r *Runner) prepare(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	switch {
	case cmd.Bool("json") && cmd.Bool("yaml"):
		return ctx, fmt.Errorf("%w: --json and --yaml are mutually exclusive", shared.ErrInvalidArgument)
	case cmd.Bool("json"):
		r.format = jsonOutput
	case cmd.Bool("yaml"):
		r.format = yamlOutput
	}

	if !r.configFixed {
		path := cmd.String("config")
		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
			r.logger.Debug("loaded config", "path", path)
		} else if cmd.IsSet("config") {
			return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		r.config.ApplyEnv(r.getenv)
	}

	if scope := cmd.String("scope"); scope != "" {
		r.config.Session.Scope = scope
	}

	return ctx, nil
}

// cleanup releases anything prepare or the command opened.
func (r *Runner) cleanup(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// client returns the API, building it from config on first use.
func (r *Runner) client(ctx context.Context) services.PromotionAPI {
	if r.api == nil {
		c := services.NewClientFromConfig(ctx, r.config.API, r.logger)
		r.api = c
		if r.raw == nil {
			r.raw = c.API()
		}
	}
	return r.api
}

// rawAPI returns the passthrough service, building it from config on first use.
func (r *Runner) rawAPI(ctx context.Context) *services.APIService {
	if r.raw == nil {
		r.raw = services.NewAPIService(r.config.API.BaseURL, services.NewHTTPClient(ctx, r.config.API),
			services.WithRateLimit(r.config.API.RateLimit))
	}
	return r.raw
}

// database opens and migrates the configured database once per run.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, err
	}
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	r.db = db
	return db, nil
}

// sessions returns the restored session manager for the configured scope.
func (r *Runner) sessions() (*session.Manager, error) {
	if r.session != nil {
		return r.session, nil
	}

	db, err := r.database()
	if err != nil {
		return nil, err
	}

	store := session.NewKVStore(repositories.NewStorageRepository(db), r.config.Session.Scope)
	manager := session.NewManager(store, r.logger)
	if _, err := manager.Restore(); err != nil {
		return nil, err
	}
	r.session = manager
	return manager, nil
}

// emit prints v as JSON or YAML when requested and falls back to plain otherwise.
func (r *Runner) emit(v any, plain func() error) error {
	switch r.format {
	case jsonOutput:
		return r.writeJSON(v, true)
	case yamlOutput:
		return r.writeYAML(v)
	default:
		return plain()
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writeYAML(data any) error {
	output, err := shared.MarshalYAML(data)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
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
