package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type ApproveCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	yes bool
}

// NewApproveCmd creates the approve and reject commands.
func NewApproveCmd(flags *Flags, app *tdsctl.App) *ApproveCmd {
	return &ApproveCmd{flags: flags, app: app}
}

// Register adds the approve and reject commands to the application.
func (cmd *ApproveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "approve",
			Usage:     "Approve a pending TDS",
			UsageText: "tdsctl approve <tds-id>",
			Description: `Submits an approval through your role's action endpoint. The server
decides what the approval means at the current workflow step; this
command only records your decision.`,
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(ctx, c, true)
			},
		},
		&cli.Command{
			Name:      "reject",
			Usage:     "Reject a pending TDS",
			UsageText: "tdsctl reject <tds-id> [--yes]",
			Description: `Submits a rejection through your role's action endpoint. Rejection
sends the TDS back for rework, so a confirmation prompt is shown
unless --yes is given.`,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "yes",
					Aliases:     []string{"y"},
					Usage:       "skip the confirmation prompt",
					Destination: &cmd.yes,
				},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				return cmd.run(ctx, c, false)
			},
		},
	)
	return app
}

func (cmd *ApproveCmd) run(ctx context.Context, c *cli.Command, approved bool) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	view, ok := approval.ViewFor(sess.Role)
	if !ok || !view.CanApprove() {
		return fmt.Errorf("role %s cannot approve or reject", sess.Role)
	}

	if !approved && !cmd.yes {
		confirmed, err := confirmReject(id)
		if err != nil {
			return err
		}
		if !confirmed {
			p.Infof("Cancelled")
			return nil
		}
	}

	if err := cmd.app.API.Approve(ctx, view, id, approved, sess.Username); err != nil {
		return err
	}

	if approved {
		p.Successf("Approved TDS %d", id)
	} else {
		p.Successf("Rejected TDS %d", id)
	}
	return nil
}

func confirmReject(id int64) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Reject TDS %d?", id)).
				Description("The record goes back to the contractor for rework.").
				Value(&confirmed),
		),
	).WithTheme(styles.FormTheme()).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("form: %w", err)
	}
	return confirmed, nil
}

func parseID(arg string) (int64, error) {
	if arg == "" {
		return 0, fmt.Errorf("missing <tds-id> argument")
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
