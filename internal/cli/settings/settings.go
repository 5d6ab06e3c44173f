package settings

import (
	"fmt"
	"sort"

	"github.com/julianstephens/habitcycle/internal/cli"
	"github.com/julianstephens/habitcycle/internal/constants"
	"github.com/julianstephens/habitcycle/internal/models"
	"github.com/julianstephens/habitcycle/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change a setting."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	data := models.SettingsToMap(settings)
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctx.Println("Current Settings:")
	for _, k := range keys {
		ctx.Printf("  %-30s %s\n", k, data[k])
	}
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting name (see 'settings show')."`
	Value string `arg:"" help:"New value."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.Key == constants.SettingTimezone && !utils.ValidateTimezone(c.Value) {
		return fmt.Errorf("unknown timezone %q", c.Value)
	}
	if err := models.SetSetting(&settings, c.Key, c.Value); err != nil {
		return err
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Printf("Set %s = %s\n", c.Key, models.SettingsToMap(settings)[c.Key])
	return nil
}
