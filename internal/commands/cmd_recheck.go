package commands

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type RecheckCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	remarks string
	keep    string
	remove  string
}

// NewRecheckCmd creates a new recheck command.
func NewRecheckCmd(flags *Flags, app *tdsctl.App) *RecheckCmd {
	return &RecheckCmd{flags: flags, app: app}
}

// Register adds the recheck command to the application.
func (cmd *RecheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "recheck",
		Usage:     "Resubmit a rejected TDS with updated documents",
		UsageText: "tdsctl recheck <tds-id> [--remarks TEXT] [--keep PATHS] [--remove PATHS] [file-or-glob]...",
		Description: `Answers a rejection by sending the TDS back through the approval
chain. --keep and --remove take comma-separated document references
from 'tdsctl ls --status recheck --json'. At least one document must
survive the cycle: kept from the existing set or newly uploaded.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "remarks",
				Aliases:     []string{"m"},
				Usage:       "response to the rejection remarks",
				Destination: &cmd.remarks,
			},
			&cli.StringFlag{
				Name:        "keep",
				Usage:       "comma-separated document references to keep",
				Destination: &cmd.keep,
			},
			&cli.StringFlag{
				Name:        "remove",
				Usage:       "comma-separated document references to drop",
				Destination: &cmd.remove,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RecheckCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	newFiles, err := expandGlobs(c.Args().Slice()[1:])
	if err != nil {
		return err
	}

	kept := splitCommaList(cmd.keep)
	removed := splitCommaList(cmd.remove)

	if err := approval.ValidateRecheck(kept, newFiles); err != nil {
		return err
	}

	if err := cmd.app.API.Recheck(ctx, id, sess.Username, cmd.remarks, removed, kept, newFiles); err != nil {
		return err
	}

	p.Successf("Resubmitted TDS %d for recheck", id)
	return nil
}

// splitCommaList splits a comma-separated flag value, trimming spaces
// and dropping empty entries.
func splitCommaList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
