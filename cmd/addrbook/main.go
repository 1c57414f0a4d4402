package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/smileynet/addrbook"
	"github.com/smileynet/addrbook/internal/command"
	"github.com/smileynet/addrbook/internal/config"
	"github.com/smileynet/addrbook/internal/contact"
	"github.com/smileynet/addrbook/internal/export"
	"github.com/smileynet/addrbook/internal/logging"
	"github.com/smileynet/addrbook/internal/session"
	"github.com/smileynet/addrbook/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// projectConfig is the per-directory config layer, also the target of config --init.
const projectConfig = ".addrbook.yaml"

// CLI is the top-level command structure for addrbook.
type CLI struct {
	Globals

	Shell     ShellCmd     `cmd:"" default:"1" help:"Start the interactive assistant (default)."`
	Exec      ExecCmd      `cmd:"" help:"Run one assistant command, then save."`
	Birthdays BirthdaysCmd `cmd:"" help:"List upcoming birthdays."`
	Export    ExportCmd    `cmd:"" help:"Export contacts to an Excel workbook."`
	Config    ConfigCmd    `cmd:"" help:"Show the effective configuration or write the default template."`
}

// Globals are flags shared by every subcommand.
type Globals struct {
	Version    kong.VersionFlag `help:"Show version." short:"V"`
	Book       string           `help:"Address book file, overriding configuration."`
	ConfigFile string           `name:"config" help:"Extra config file applied after the user and project layers."`
	Plain      bool             `help:"Force the line-based session even if stdout is a TTY."`
	LogLevel   string           `help:"Log level: debug, info, warn or error."`
}

// apply overlays command-line flags on cfg. Empty flags leave cfg untouched.
func (g *Globals) apply(cfg *config.Config) {
	if g.Book != "" {
		cfg.Book.Path = g.Book
	}
	if g.Plain {
		cfg.Session.Plain = true
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
}

// userConfigDir holds the user config layer and template overrides.
func userConfigDir() string {
	return os.ExpandEnv("$HOME/.config/addrbook")
}

// loadConfig loads .env, then layered config from user, project and --config
// paths, then env and flag overrides.
func loadConfig(g *Globals) (*config.Config, error) {
	if err := config.LoadDotenv(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.LoadLayered(
		filepath.Join(userConfigDir(), "config.yaml"),
		projectConfig,
		g.ConfigFile,
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	g.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// persistError marks a failure to read or write the address book.
type persistError struct {
	err error
}

func (e *persistError) Error() string { return e.err.Error() }
func (e *persistError) Unwrap() error { return e.err }

// app carries the wiring shared by subcommands once setup has succeeded.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *store.FileStore
	now    func() time.Time
}

func newApp(cfg *config.Config, logger *zap.Logger) *app {
	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store.NewFileStore(cfg.Book.Path, store.WithLogger(logger)),
		now:    time.Now,
	}
}

// setup resolves configuration and builds the logger.
func setup(g *Globals) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger), nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) loadBook() (*contact.Book, error) {
	book, err := a.store.Load()
	if err != nil {
		return nil, &persistError{err: err}
	}
	return book, nil
}

func (a *app) saveBook(book *contact.Book) error {
	if err := a.store.Save(book); err != nil {
		return &persistError{err: err}
	}
	return nil
}

func (a *app) dispatcher(book *contact.Book) *command.Dispatcher {
	env := &command.Env{
		Book:   book,
		Now:    a.now,
		Window: a.cfg.Birthdays.WindowDays,
	}
	return command.NewDispatcher(env, command.WithLogger(a.logger))
}

// --- Shell command ---

// ShellCmd runs the interactive session and saves on close/exit.
type ShellCmd struct{}

// Run executes the shell command.
func (s *ShellCmd) Run(g *Globals) error {
	a, err := setup(g)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.run(ctx, os.Stdin, os.Stdout, a)
}

// run loads the book, runs one session over in/w and saves when the session
// ended through close/exit.
func (s *ShellCmd) run(ctx context.Context, in io.Reader, w io.Writer, a *app) error {
	book, err := a.loadBook()
	if err != nil {
		return err
	}

	runner := session.New(session.Options{
		In:         in,
		Out:        w,
		ForcePlain: a.cfg.Session.Plain,
		Prompt:     a.cfg.Session.Prompt,
		Dispatcher: a.dispatcher(book),
		Logger:     a.logger,
	})
	outcome, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	a.logger.Debug("session finished",
		zap.Bool("exit", outcome.Exit),
		zap.Int("commands", outcome.Commands),
	)

	if !outcome.Exit {
		_, _ = fmt.Fprintln(w, "Session interrupted; changes were not saved.")
		return nil
	}
	return a.saveBook(book)
}

// --- Exec command ---

// ExecCmd runs a single command line against the saved book.
type ExecCmd struct {
	Line []string `arg:"" passthrough:"" help:"Command and arguments, e.g. add alice 0123456789."`
}

// Run executes the exec command.
func (e *ExecCmd) Run(g *Globals) error {
	a, err := setup(g)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	defer a.close()
	return e.run(os.Stdout, a)
}

func (e *ExecCmd) run(w io.Writer, a *app) error {
	book, err := a.loadBook()
	if err != nil {
		return err
	}

	res := a.dispatcher(book).Dispatch(strings.Join(e.Line, " "))
	if res.Command == "" {
		return errors.New("exec: empty command")
	}
	_, _ = fmt.Fprintln(w, res.Output)
	return a.saveBook(book)
}

// --- Birthdays command ---

// BirthdaysCmd prints contacts with a birthday in the coming days.
type BirthdaysCmd struct {
	Days int    `help:"Days to look ahead (default: birthdays.window_days)." default:"-1"`
	Date string `help:"Reference date as DD.MM.YYYY (default: today)."`
}

// Run executes the birthdays command.
func (b *BirthdaysCmd) Run(g *Globals) error {
	a, err := setup(g)
	if err != nil {
		return fmt.Errorf("birthdays: %w", err)
	}
	defer a.close()
	return b.run(os.Stdout, a)
}

func (b *BirthdaysCmd) run(w io.Writer, a *app) error {
	ref, err := referenceDate(b.Date, a.now)
	if err != nil {
		return fmt.Errorf("birthdays: %w", err)
	}
	days := b.Days
	if days < 0 {
		days = a.cfg.Birthdays.WindowDays
	}

	book, err := a.loadBook()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, command.FormatUpcoming(book.UpcomingBirthdays(ref, days), days))
	return nil
}

// referenceDate parses an optional DD.MM.YYYY date, defaulting to now.
func referenceDate(s string, now func() time.Time) (time.Time, error) {
	if s == "" {
		return now(), nil
	}
	t, err := time.Parse(contact.BirthdayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use DD.MM.YYYY", s)
	}
	return t, nil
}

// --- Export command ---

// ExportCmd writes the book to an Excel workbook.
type ExportCmd struct {
	Path string `arg:"" help:"Destination .xlsx file."`
	Date string `help:"Reference date for next birthdays as DD.MM.YYYY (default: today)."`
}

// Run executes the export command.
func (e *ExportCmd) Run(g *Globals) error {
	a, err := setup(g)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer a.close()
	return e.run(os.Stdout, a)
}

func (e *ExportCmd) run(w io.Writer, a *app) error {
	ref, err := referenceDate(e.Date, a.now)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	book, err := a.loadBook()
	if err != nil {
		return err
	}
	if err := export.SaveXLSX(e.Path, book, ref); err != nil {
		return &persistError{err: err}
	}
	a.logger.Info("contacts exported", zap.String("path", e.Path), zap.Int("contacts", book.Len()))
	_, _ = fmt.Fprintf(w, "Exported %d contacts to %s\n", book.Len(), e.Path)
	return nil
}

// --- Config command ---

// ConfigCmd prints the effective configuration or writes the default template.
type ConfigCmd struct {
	Init  bool `help:"Write the default config template to .addrbook.yaml."`
	Force bool `help:"Overwrite an existing file with --init."`
}

// Run executes the config command.
func (c *ConfigCmd) Run(g *Globals) error {
	if c.Init {
		return c.writeTemplate(os.Stdout, projectConfig, addrbook.OverlayFS(userConfigDir(), addrbook.Templates))
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.print(os.Stdout, cfg)
}

func (c *ConfigCmd) print(w io.Writer, cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	_, _ = w.Write(data)
	return nil
}

// writeTemplate copies the config template from templates to target. A user
// copy in the config directory takes precedence over the embedded one.
func (c *ConfigCmd) writeTemplate(w io.Writer, target string, templates fs.FS) error {
	if !c.Force {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("config: %s already exists (use --force to overwrite)", target)
		}
	}
	data, err := fs.ReadFile(templates, addrbook.ConfigTemplate)
	if err != nil {
		return fmt.Errorf("config: reading template: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", target, err)
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", target)
	return nil
}

const (
	exitSuccess = 0
	exitPersist = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var pe *persistError
	if errors.As(err, &pe) {
		return exitPersist
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Description("A command-line assistant for contacts and birthdays."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
