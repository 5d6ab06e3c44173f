package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitcycle/internal/backup"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/lifecycle"
	"github.com/julianstephens/habitcycle/internal/logger"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/storage/postgres"
)

var hints = []struct {
	target error
	hint   string
}{
	{storage.ErrNotFound, fmt.Sprintf("Run '%s habit list --all' to see your habits.", constants.AppName)},
	{lifecycle.ErrFutureDay, "Check-ins can only be recorded for today or earlier days."},
	{lifecycle.ErrStartDateLocked, "Add a new habit if you want to restart from a different day."},
	{postgres.ErrEmbeddedCredentials, fmt.Sprintf("Store the connection string with '%s keyring set' or keep the password in .pgpass.", constants.AppName)},
	{backup.ErrNoDatabase, fmt.Sprintf("Run '%s init' first.", constants.AppName)},
}

// Hint returns a follow-up suggestion for errors the user can act on.
func Hint(err error) string {
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format renders err for the terminal with an "Error: " prefix and, when
// one exists, a hint on the next line.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n" + hint
	}
	return msg
}

// Fatal logs err, prints it and exits with status 1. A nil err is a no-op.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	logger.Close()
	os.Exit(1)
}
