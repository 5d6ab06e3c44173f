package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitcycle/internal/backup"
	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/utils"
	"github.com/julianstephens/habitcycle/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warn marks checks whose failure does not fail the command.
	warn bool
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
}

var doctorChecks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Timezone", run: checkTimezone, needsDB: true},
	{name: "Data validation", run: checkDataIntegrity, needsDB: true},
	{name: "Reminders", run: checkReminders, needsDB: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Println("✓ Database reachable: OK")
	}

	for _, c := range doctorChecks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run '%s migrate')", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("unknown timezone %q in settings", settings.Timezone)
	}
	return nil
}

func checkDataIntegrity(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}

	v := validation.New()
	result := v.ValidateHabits(habits)
	for _, h := range habits {
		snap, err := ctx.Manager.Snapshot(h.ID)
		if err != nil {
			return fmt.Errorf("failed to read habit %s: %w", h.ID, err)
		}
		data := v.ValidateHabitData(validation.HabitData{
			Habit:     snap.Habit,
			Records:   snap.Records,
			Histories: snap.Histories,
		})
		result.Conflicts = append(result.Conflicts, data.Conflicts...)
	}

	if result.HasConflicts() {
		return errors.New(strings.TrimSpace(result.FormatReport()))
	}
	return nil
}

func checkReminders(ctx *cli.Context) error {
	reminders, err := ctx.Store.GetReminders()
	if err != nil {
		return fmt.Errorf("failed to get reminders: %w", err)
	}
	for _, r := range reminders {
		if !utils.ValidateTimeFormat(r.TimeOfDay) {
			return fmt.Errorf("reminder of habit %s has invalid time %q", r.HabitID, r.TimeOfDay)
		}
		if _, err := ctx.Store.GetHabit(r.HabitID); errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("reminder references missing habit %s", r.HabitID)
		}
	}
	return nil
}
