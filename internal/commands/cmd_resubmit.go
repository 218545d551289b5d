package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type ResubmitCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	keepExisting  bool
	removeIndices string
}

// NewResubmitCmd creates a new resubmit command.
func NewResubmitCmd(flags *Flags, app *tdsctl.App) *ResubmitCmd {
	return &ResubmitCmd{flags: flags, app: app}
}

// Register adds the resubmit command to the application.
func (cmd *ResubmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "resubmit",
		Usage:     "Replace or prune documents on an SME-rejected TDS",
		UsageText: "tdsctl resubmit <tds-id> [--keep-existing] [--remove-indices N,M] [file]",
		Description: `Contractor followup to an SME rejection, listed under
'tdsctl ls --status rejected'. The optional file argument uploads a
replacement document. --remove-indices takes zero-based positions in
the TDS's current document list.

The request must do something: keep the existing set, remove specific
documents, or carry a replacement.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "keep-existing",
				Usage:       "keep the current document set",
				Destination: &cmd.keepExisting,
			},
			&cli.StringFlag{
				Name:        "remove-indices",
				Usage:       "comma-separated zero-based document positions to drop",
				Destination: &cmd.removeIndices,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ResubmitCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	indices, err := parseIndexList(cmd.removeIndices)
	if err != nil {
		return err
	}

	newFile := c.Args().Get(1)
	if err := approval.ValidateResubmit(cmd.keepExisting, indices, newFile); err != nil {
		return err
	}

	if err := cmd.app.API.Reupload(ctx, id, sess.Username, cmd.keepExisting, indices, newFile); err != nil {
		return err
	}

	p.Successf("Resubmitted documents for TDS %d", id)
	return nil
}

// parseIndexList parses a comma-separated list of zero-based indices.
func parseIndexList(raw string) ([]int, error) {
	var indices []int
	for _, part := range splitCommaList(raw) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid index %q", part)
		}
		indices = append(indices, n)
	}
	return indices, nil
}
