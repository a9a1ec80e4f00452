// Package cli wires the pmreport commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sadopc/pmreport/internal/api"
	"github.com/sadopc/pmreport/internal/config"
	"github.com/sadopc/pmreport/internal/snapshot"
	"github.com/sadopc/pmreport/internal/store"
)

// App holds the dependencies shared by every command. Fields left nil are
// built from the configuration before a command runs.
type App struct {
	ConfigPath string
	LogLevel   string

	Config *config.Config
	Store  *store.Store
	Client *api.Client
	Loader *snapshot.Loader
	Logger zerolog.Logger
	Now    func() time.Time

	logFile   *os.File
	ownsStore bool
}

// logToFile marks commands that take over the terminal.
const logToFile = "log-to-file"

// NewRootCmd creates the top-level "pmreport" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	tuiCmd := newTUICmd(app)

	root := &cobra.Command{
		Use:           "pmreport",
		Short:         "Reports and activity for the project-management backend",
		Long:          "pmreport aggregates project, task, time and workload reports from the\nproject-management backend. Without a subcommand it opens the dashboard.",
		Annotations:   map[string]string{logToFile: "true"},
		RunE:          tuiCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	root.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Path to a config file (default is <config dir>/pmreport/config.yaml)")
	root.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(
		tuiCmd,
		newReportCmd(app),
		newExportCmd(app),
		newActivityCmd(app),
		newServeCmd(app),
	)

	return root
}

func (app *App) init(cmd *cobra.Command) error {
	if app.Now == nil {
		app.Now = time.Now
	}

	if app.Config == nil {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return err
		}
		app.Config = cfg
	}
	if app.LogLevel != "" {
		app.Config.Log.Level = app.LogLevel
	}
	level, err := app.Config.Level()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so it logs to a file instead.
	var out io.Writer = cmd.ErrOrStderr()
	if cmd.Annotations[logToFile] != "" && app.Config.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(app.Config.Log.File), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(app.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		app.logFile = f
		out = f
	}
	app.Logger = newLogger(out, level)
	cmd.SetContext(app.Logger.WithContext(cmd.Context()))

	if app.Store == nil {
		s, err := store.New(app.Config.DB.Path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		app.Store = s
		app.ownsStore = true
	}
	if app.Client == nil {
		app.Client = api.NewClient(api.Config{
			BaseURL: app.Config.API.BaseURL,
			Token:   app.Config.API.Token,
			Timeout: app.Config.API.Timeout,
		})
	}
	if app.Loader == nil {
		app.Loader = snapshot.NewLoader(app.Client)
	}
	return nil
}

// Close releases the store and log file opened by init.
func (app *App) Close() error {
	var err error
	if app.ownsStore {
		err = app.Store.Close()
		app.Store = nil
		app.ownsStore = false
	}
	if app.logFile != nil {
		app.logFile.Close()
		app.logFile = nil
	}
	return err
}

// newLogger writes human-readable output to terminals and JSON elsewhere.
func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
