package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/auth"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/repositories"
	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Local storage, the auth session and the bookshelf client are opened on first use so commands
// that need none of them (setup, help) never touch the database.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	ephemeral  bool

	db        *sql.DB
	store     models.KV
	session   *auth.Session
	shelf     *services.BookshelfService
	assistant services.AssistantService
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Store      models.KV
	Assistant  services.AssistantService
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
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, nil)
	}
	if opts.Assistant == nil {
		opts.Assistant = services.NewAssistant(opts.Config.Assistant)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		store:      opts.Store,
		assistant:  opts.Assistant,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, bookCommand, shelfCommand, readCommand, bookmarksCommand,
		prefsCommand, assistCommand, uploadCommand, exportCommand, apiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by commands opened after the call.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Close releases the local store.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// storage opens the local key-value store, in memory when running ephemeral.
func (r *Runner) storage() (models.KV, error) {
	if r.store != nil {
		return r.store, nil
	}
	if r.ephemeral {
		r.store = repositories.NewMemoryKV()
		return r.store, nil
	}

	db, err := shared.OpenLocalStore(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	r.db = db
	r.store = repositories.NewKVRepository(db)
	return r.store, nil
}

// authSession restores the saved login.
func (r *Runner) authSession() (*auth.Session, error) {
	if r.session != nil {
		return r.session, nil
	}

	kv, err := r.storage()
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(kv, shared.WithLogger(r.logger, "component", "auth"))
	if err := session.Init(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	r.session = session
	return session, nil
}

// bookshelf returns the API client authenticated with the session, signing out on 401.
func (r *Runner) bookshelf() (*services.BookshelfService, error) {
	if r.shelf != nil {
		return r.shelf, nil
	}

	session, err := r.authSession()
	if err != nil {
		return nil, err
	}

	shelf := services.NewBookshelfService(r.api, session)
	shelf.OnUnauthorized(session.HandleUnauthorized)
	r.shelf = shelf
	return shelf, nil
}

// requireLogin returns the bookshelf client, failing early when no usable token is stored.
func (r *Runner) requireLogin() (*services.BookshelfService, error) {
	shelf, err := r.bookshelf()
	if err != nil {
		return nil, err
	}
	if _, err := r.session.Token(); err != nil {
		return nil, fmt.Errorf("%w: run 'bookx auth login' first", err)
	}
	return shelf, nil
}

// openBook opens a reading session for bookID. pageSize <= 0 uses the configured size.
func (r *Runner) openBook(ctx context.Context, bookID string, pageSize int) (*reader.Session, error) {
	shelf, err := r.requireLogin()
	if err != nil {
		return nil, err
	}
	kv, err := r.storage()
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = r.config.Reader.PageSize
	}

	return reader.Open(ctx, bookID, reader.Deps{
		Library:         shelf,
		Storage:         kv,
		Assistant:       r.assistant,
		Logger:          r.logger,
		PageSize:        pageSize,
		ProgressTimeout: r.config.API.Timeout(),
	})
}

// pageArg parses a 1-based page number argument into a 0-based index.
func pageArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, fmt.Errorf("%w: %s must be a page number starting at 1, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return page - 1, nil
}

// bookArg returns the required book ID argument.
func bookArg(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: book id", shared.ErrMissingArgument)
	}
	return id, nil
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
