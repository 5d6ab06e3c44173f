package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/cli/backups"
	"github.com/julianstephens/habitcycle/internal/cli/cycles"
	"github.com/julianstephens/habitcycle/internal/cli/exports"
	"github.com/julianstephens/habitcycle/internal/cli/habits"
	"github.com/julianstephens/habitcycle/internal/cli/settings"
	"github.com/julianstephens/habitcycle/internal/cli/system"
	"github.com/julianstephens/habitcycle/internal/constants"
	apperrors "github.com/julianstephens/habitcycle/internal/errors"
	"github.com/julianstephens/habitcycle/internal/keyring"
	"github.com/julianstephens/habitcycle/internal/logger"
	"github.com/julianstephens/habitcycle/internal/notifier"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/storage/postgres"
	"github.com/julianstephens/habitcycle/internal/storage/sqlite"
)

type CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or OS keyring instead." env:"HABITCYCLE_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"HABITCYCLE_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitcycle storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Check    habits.CheckCmd      `cmd:"" help:"Check in a habit for a day."`
	Cycle    cycles.CycleCmd      `cmd:"" help:"Inspect and advance habit cycles."`
	Stats    cycles.StatsCmd      `cmd:"" help:"Show habit statistics."`
	Summary  cycles.SummaryCmd    `cmd:"" help:"Show one status row per active habit."`
	Notify   system.NotifyCmd     `cmd:"" help:"Deliver due reminders (run every minute from cron)."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Export   exports.ExportCmd    `cmd:"" help:"Export habits, records and cycle histories."`
}

// Commands that manage storage themselves.
var (
	skipLoad  = map[string]bool{"init": true, "keyring": true, "doctor": true}
	skipCheck = map[string]bool{"init": true, "keyring": true, "doctor": true, "migrate": true, "backup": true}
)

func newParser(c *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(c, append([]kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Habit tracker built on 20-day cycles with MINI, MORE and MAX goals"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	}, options...)...)
}

func main() {
	var c CLI
	parser, err := newParser(&c)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	store, configDir, err := openStore(c.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	if err := logger.Init(logger.Config{Debug: c.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	apperrors.Fatal(execute(ctx, store, os.Stdout))
	logger.Close()
}

// execute runs the selected command against store and closes it afterwards.
func execute(ctx *kong.Context, store storage.Provider, out io.Writer) error {
	command := strings.Fields(ctx.Command())[0]
	appCtx := cli.NewContext(store, notifier.NewReminderScheduler(store))
	appCtx.Out = out

	defer func() {
		appCtx.Manager.Wait()
		if err := store.Close(); err != nil {
			logger.Warn("failed to close database", "error", err)
		}
	}()

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			return err
		}
	}
	if !skipCheck[command] {
		if err := appCtx.RunCycleCheck(); err != nil {
			logger.Error("cycle check failed", "error", err)
		}
	}

	return ctx.Run(appCtx)
}

// openStore picks the backend: an explicit --config value, then
// HABITCYCLE_DB_CONNECTION, then the OS keyring, then the default SQLite file.
func openStore(config string) (storage.Provider, string, error) {
	connStr := config
	if connStr == "" {
		connStr = os.Getenv(constants.EnvDBConnection)
	}
	if connStr == "" {
		if s, err := keyring.Connection.Get(); err == nil {
			connStr = s
		} else if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable) {
			fmt.Fprintf(os.Stderr, "Warning: failed to read keyring: %v\n", err)
		}
	}

	if connStr != "" && postgres.IsConnString(connStr) {
		if err := postgres.ValidateConnString(connStr); err != nil {
			// Secrets stores may hold the password; the command line may not.
			embedded := errors.Is(err, postgres.ErrEmbeddedCredentials)
			switch {
			case embedded && config == "":
			case embedded:
				return nil, "", fmt.Errorf("PostgreSQL connection strings with embedded credentials are NOT allowed on the command line; use '%s keyring set', %s or a .pgpass file", constants.AppName, constants.EnvDBConnection)
			default:
				return nil, "", err
			}
		}
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		return postgres.New(connStr), filepath.Join(dir, constants.AppName), nil
	}

	path := config
	if path == "" {
		path = constants.DefaultConfigPath
	}
	path, err := expandPath(path)
	if err != nil {
		return nil, "", err
	}
	return sqlite.NewStore(path), filepath.Dir(path), nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
