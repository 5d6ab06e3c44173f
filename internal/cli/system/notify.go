package system

import (
	"fmt"
	"sort"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/notifier"
)

// NotifyCmd delivers due habit reminders. Run it every minute from cron.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	var sender notifier.Sender = notifier.New()
	if c.DryRun {
		sender = notifier.Printer{W: ctx.Stdout()}
	}
	d := &notifier.Dispatcher{Store: ctx.Store, Sender: sender, DryRun: c.DryRun}

	result, err := d.Dispatch(ctx.Now())
	if err != nil {
		return err
	}

	if c.DryRun && len(result.Sent) == 0 {
		ctx.Println("No reminders due.")
	}
	ids := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ctx.Printf("Failed to send reminder for habit %s: %v\n", id, result.Failed[id])
	}
	return nil
}
