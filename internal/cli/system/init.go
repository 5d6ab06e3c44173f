package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/storage/postgres"
	"github.com/julianstephens/habitcycle/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", constants.AppName, ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyData(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		ctx.Println("Migration completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, err := filepath.Abs(dbPath)
		if err == nil {
			dbPath = absDB
		}
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	_, err := os.Stat(dbPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("failed to access existing database: %w", err)
	}

	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	if err := os.Remove(dbPath); err != nil {
		return fmt.Errorf("failed to delete existing database: %w", err)
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if postgres.IsConnString(source) {
		if err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, errors.New("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

// copyData copies every row of the source store in one destination transaction.
func (c *InitCmd) copyData(ctx *cli.Context) error {
	src, err := openSource(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	settings, err := src.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	habits, err := src.GetAllHabits(false)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	reminders, err := src.GetReminders()
	if err != nil {
		return fmt.Errorf("failed to get reminders from source: %w", err)
	}

	var records, histories int
	err = ctx.Store.InTx(func(r storage.Repo) error {
		if err := r.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		for _, h := range habits {
			if err := r.AddHabit(h); err != nil {
				return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
			}

			recs, err := src.GetRecordsForHabit(h.ID)
			if err != nil {
				return fmt.Errorf("failed to get records of habit %s: %w", h.ID, err)
			}
			for _, rec := range recs {
				if _, err := r.UpsertRecord(rec); err != nil {
					return fmt.Errorf("failed to add record %s: %w", rec.ID, err)
				}
			}
			records += len(recs)

			hists, err := src.GetCycleHistories(h.ID)
			if err != nil {
				return fmt.Errorf("failed to get histories of habit %s: %w", h.ID, err)
			}
			for _, hist := range hists {
				if err := r.AddCycleHistory(hist); err != nil {
					return fmt.Errorf("failed to add history %s: %w", hist.ID, err)
				}
			}
			histories += len(hists)
		}
		for _, rem := range reminders {
			if err := r.SaveReminder(rem); err != nil {
				return fmt.Errorf("failed to add reminder of habit %s: %w", rem.HabitID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx.Printf("  Migrated %d habits\n", len(habits))
	ctx.Printf("  Migrated %d daily records\n", records)
	ctx.Printf("  Migrated %d cycle histories\n", histories)
	ctx.Printf("  Migrated %d reminders\n", len(reminders))
	return nil
}
