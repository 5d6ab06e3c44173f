package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitcycle/internal/backup"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/lifecycle"
	"github.com/julianstephens/habitcycle/internal/logger"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/notifier"
	"github.com/julianstephens/habitcycle/internal/storage"
	"github.com/julianstephens/habitcycle/internal/utils"
)

type Context struct {
	Store   storage.Provider
	Manager *lifecycle.Manager

	// Out and In default to stdout and stdin.
	Out io.Writer
	In  io.Reader
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewContext wires a lifecycle manager to store.
func NewContext(store storage.Provider, gateway notifier.Gateway) *Context {
	return &Context{
		Store:   store,
		Manager: lifecycle.New(store, gateway),
	}
}

func (c *Context) Stdout() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Stdout(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Stdout(), args...)
}

// Now returns the current time in the timezone from settings.
func (c *Context) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	now := clock()

	settings, err := c.Store.GetSettings()
	if err != nil {
		logger.Debug("using local time, settings unavailable", "error", err)
		return now
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		logger.Warn("invalid timezone in settings, using local time", "timezone", settings.Timezone, "error", err)
		return now
	}
	return now.In(loc)
}

// Today returns the current civil day.
func (c *Context) Today() string {
	return c.Now().Format(constants.DateFormat)
}

// RunCycleCheck closes every cycle whose window has ended and reports the
// closed cycles.
func (c *Context) RunCycleCheck() error {
	report, err := c.Manager.CheckAll(c.Now())
	if err != nil {
		return err
	}
	for _, h := range report.Closed {
		title := h.HabitID
		if habit, err := c.Store.GetHabit(h.HabitID); err == nil {
			title = habit.Title
		}
		result := "not successful"
		if h.Successful {
			result = "successful"
		}
		c.Printf("Cycle %d of %q ended (%d/20 days, %s). Run 'habitcycle cycle next %s' to start the next one.\n",
			h.CycleNumber, title, h.CompletedDays, result, title)
	}
	return nil
}

// PerformAutomaticBackup creates a backup when auto_backup is on. Failures
// are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	settings, err := c.Store.GetSettings()
	if err != nil || !settings.AutoBackup {
		return
	}
	if !isFileStore(c.Store) {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm asks a yes/no question on In and returns true only for y or yes.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)

	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// isFileStore reports whether the store keeps its data in a local file.
func isFileStore(store storage.Provider) bool {
	_, err := os.Stat(store.GetConfigPath())
	return err == nil
}

// FormatLevel renders a completion level with its display name.
func FormatLevel(level models.CompletionLevel) string {
	if level == models.LevelNone {
		return "-"
	}
	return level.DisplayName()
}
