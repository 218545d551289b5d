package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type FinalizeCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	orderConfirmation string
	lrCopy            string
}

// NewFinalizeCmd creates a new finalize command.
func NewFinalizeCmd(flags *Flags, app *tdsctl.App) *FinalizeCmd {
	return &FinalizeCmd{flags: flags, app: app}
}

// Register adds the finalize command to the application.
func (cmd *FinalizeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "finalize",
		Usage:     "Finalize the purchase for an approved TDS",
		UsageText: "tdsctl finalize <tds-id> --order-confirmation FILE --lr-copy FILE",
		Description: `Completes the purchase step for a TDS that passed PM approval
(listed under 'tdsctl ls --status pm-approved'). Both the order
confirmation and the LR copy are mandatory.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "order-confirmation",
				Usage:       "order confirmation document",
				Destination: &cmd.orderConfirmation,
			},
			&cli.StringFlag{
				Name:        "lr-copy",
				Usage:       "LR copy document",
				Destination: &cmd.lrCopy,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FinalizeCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	if err := approval.ValidateFinalize(cmd.orderConfirmation, cmd.lrCopy); err != nil {
		return err
	}

	if err := cmd.app.API.FinalizePurchase(ctx, id, sess.Username, cmd.orderConfirmation, cmd.lrCopy); err != nil {
		return err
	}

	p.Successf("Finalized purchase for TDS %d", id)
	return nil
}
