package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	theme string
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, app *tdsctl.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags returns the TUI flags registered on the root command.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "theme",
			Usage:       fmt.Sprintf("color theme (%s)", strings.Join(styles.ThemeNames(), ", ")),
			Destination: &cmd.theme,
		},
	}
}

// Run launches the interactive approval queue.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	if cmd.theme != "" {
		palette, ok := styles.GetPalette(cmd.theme)
		if !ok {
			return fmt.Errorf("unknown theme %q (have: %s)", cmd.theme, strings.Join(styles.ThemeNames(), ", "))
		}
		styles.SetTheme(palette)
	}

	return tui.Run(cmd.app, sess)
}
