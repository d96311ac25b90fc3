package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Alia5/gamecontrol/gamecontrol"
)

// Mappings groups the offline mapping editor subcommands. They operate on
// the settings file and must not run while `run` uses the same file.
type Mappings struct {
	Show  MappingsShow  `cmd:"" default:"1" help:"Print the stored mappings"`
	Set   MappingsSet   `cmd:"" help:"Map an action to a channel"`
	Reset MappingsReset `cmd:"" help:"Restore the default mappings"`
}

type MappingsShow struct {
	SettingsFile `embed:""`
}

func (c *MappingsShow) Run(logger *slog.Logger) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	g := gamecontrol.New(gamecontrol.Options{Settings: store, Logger: logger})
	return writeMappings(os.Stdout, g)
}

type MappingsSet struct {
	SettingsFile `embed:""`

	Action  string `arg:"" help:"Action name (push, push+, toggle_fly, yaw...)"`
	Channel string `arg:"" help:"Channel name (AXIS_<n>[+|-], BUTTON_<n> or NONE)"`
	DryRun  bool   `help:"Print the resulting mappings without saving them"`
}

func (c *MappingsSet) Run(logger *slog.Logger) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	g := gamecontrol.New(gamecontrol.Options{Settings: store, Logger: logger})
	if c.DryRun {
		return writeCandidate(os.Stdout, g, c.Action, c.Channel)
	}
	if err := setMapping(g, c.Action, c.Channel); err != nil {
		return err
	}
	g.SaveToSettings()
	if err := store.Flush(); err != nil {
		return err
	}
	logger.Info("Mapping saved", "action", c.Action, "channel", g.ChannelByAction(c.Action).LocalName(), "path", store.Path())
	return writeMappings(os.Stdout, g)
}

type MappingsReset struct {
	SettingsFile `embed:""`
}

func (c *MappingsReset) Run(logger *slog.Logger) error {
	store, err := c.open()
	if err != nil {
		return err
	}
	g := gamecontrol.New(gamecontrol.Options{Settings: store, Logger: logger})
	g.Manager().InitializeMappingsByDefault()
	g.SaveToSettings()
	if err := store.Flush(); err != nil {
		return err
	}
	logger.Info("Default mappings restored", "path", store.Path())
	return writeMappings(os.Stdout, g)
}

// setMapping validates the pair before updating the map. Binary actions
// take buttons, everything else takes axes.
func setMapping(g *gamecontrol.GameControl, action, channelName string) error {
	channelName = strings.ToUpper(strings.TrimSpace(channelName))
	channel := gamecontrol.ChannelByName(channelName)
	if channel.IsNone() && channelName != "NONE" {
		return fmt.Errorf("invalid channel: %q", channelName)
	}
	t := g.ActionNameType(action)
	if t == gamecontrol.ActionNameUnknown {
		return fmt.Errorf("unknown action: %q", action)
	}
	if !channel.IsNone() && channel.IsButton() != (t == gamecontrol.ActionNameBinary) {
		return fmt.Errorf("cannot map %s action %s to %s", t, action, channelName)
	}
	g.UpdateActionMap(action, channel)
	return nil
}

func writeMappings(w io.Writer, g *gamecontrol.GameControl) error {
	_, err := fmt.Fprintf(w, "analog: %s\nbinary: %s\nflycam: %s\n",
		g.AnalogMappings(), g.BinaryMappings(), g.FlycamMappings())
	return err
}

// writeCandidate renders the mappings as they would be after assigning
// channelName to action, leaving g untouched.
func writeCandidate(w io.Writer, g *gamecontrol.GameControl, action, channelName string) error {
	candidate := gamecontrol.ChannelByName(strings.ToUpper(strings.TrimSpace(channelName)))
	lookup := func(name string) gamecontrol.InputChannel {
		if name == action {
			return candidate
		}
		return g.ChannelByAction(name)
	}
	_, err := fmt.Fprintf(w, "analog: %s\nbinary: %s\nflycam: %s\n",
		gamecontrol.StringifyAnalogMappings(lookup),
		gamecontrol.StringifyBinaryMappings(lookup),
		gamecontrol.StringifyFlycamMappings(lookup))
	return err
}
