package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type UsersCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	jsonOutput bool
}

// NewUsersCmd creates the user administration commands.
func NewUsersCmd(flags *Flags, app *tdsctl.App) *UsersCmd {
	return &UsersCmd{flags: flags, app: app}
}

// Register adds the users command to the application.
func (cmd *UsersCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "users",
		Usage: "User directory and Super Admin account approval",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List approved users",
				UsageText: "tdsctl users ls [--json]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    cmd.runLs,
			},
			{
				Name:      "pending",
				Usage:     "List accounts awaiting approval (Super Admin)",
				UsageText: "tdsctl users pending [--json]",
				Flags:     []cli.Flag{jsonFlag},
				Action:    cmd.runPending,
			},
			{
				Name:      "approve",
				Usage:     "Approve a pending account (Super Admin)",
				UsageText: "tdsctl users approve <user-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runDecide(ctx, c, true)
				},
			},
			{
				Name:      "reject",
				Usage:     "Reject a pending account (Super Admin)",
				UsageText: "tdsctl users reject <user-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					return cmd.runDecide(ctx, c, false)
				},
			},
		},
	})

	return app
}

func (cmd *UsersCmd) runLs(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	users, err := cmd.app.API.ApprovedUsers(ctx)
	if err != nil {
		return err
	}
	return cmd.render(c, users)
}

func (cmd *UsersCmd) runPending(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	users, err := cmd.app.API.PendingUsers(ctx)
	if err != nil {
		return err
	}
	return cmd.render(c, users)
}

func (cmd *UsersCmd) render(c *cli.Command, users []approval.User) error {
	out := c.Root().Writer

	if len(users) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No users found\n")
		}
		return nil
	}

	if cmd.jsonOutput {
		for _, u := range users {
			if err := iojson.WriteLine(out, u); err != nil {
				return fmt.Errorf("encode user: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.EmailID, u.Role)
	}
	return w.Flush()
}

func (cmd *UsersCmd) runDecide(ctx context.Context, c *cli.Command, approve bool) error {
	p := printer.Ctx(ctx)

	arg := c.Args().First()
	if arg == "" {
		return fmt.Errorf("missing <user-id> argument")
	}
	ids, err := parseIDList(arg)
	if err != nil || len(ids) != 1 {
		return fmt.Errorf("invalid user id %q", arg)
	}

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	if err := cmd.app.API.ApproveUser(ctx, ids[0], approve); err != nil {
		return err
	}

	if approve {
		p.Successf("Approved user %d", ids[0])
	} else {
		p.Successf("Rejected user %d", ids[0])
	}
	return nil
}
