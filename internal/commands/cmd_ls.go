package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	status     string
	jsonOutput bool
}

// NewLsCmd creates a new ls command.
func NewLsCmd(flags *Flags, app *tdsctl.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application.
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List TDS records for your role",
		UsageText: "tdsctl ls [--status STATUS] [--json]",
		Description: `Displays the TDS records relevant to the logged-in role.

The default listing is the role's pending queue: items waiting on your
approval (PM, L1, L2, L3, BU) or review (SME). Other statuses:

  approved     fully approved TDS records
  pm-approved  past PM approval, awaiting purchase finalization
  rejected     bounced back by SME review, awaiting resubmission
  recheck      rejected records awaiting the SME recheck cycle

Use --json for machine-readable output, one record per line.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "listing to fetch (pending, approved, pm-approved, rejected, recheck)",
				Value:       "pending",
				Destination: &cmd.status,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	if cmd.status == "pending" {
		return cmd.runPending(ctx, c, sess.Username, sess.Role)
	}

	var list []approval.TDS
	switch cmd.status {
	case "approved":
		list, err = cmd.app.API.ApprovedTDS(ctx, sess.Username)
	case "pm-approved":
		list, err = cmd.app.API.PMApprovedTDS(ctx, sess.Username)
	case "rejected":
		list, err = cmd.app.API.RejectedBySME(ctx, sess.Username)
	case "recheck":
		list, err = cmd.app.API.NeedToRecheck(ctx, sess.Username)
	default:
		return fmt.Errorf("unknown status %q", cmd.status)
	}
	if err != nil {
		return err
	}

	return cmd.render(c, list, genericColumns())
}

func (cmd *LsCmd) runPending(ctx context.Context, c *cli.Command, username string, role approval.Role) error {
	view, ok := approval.ViewFor(role)
	if !ok {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No pending queue for role %s\n", role)
		}
		return nil
	}

	list, err := cmd.app.API.PendingApprovals(ctx, view, username)
	if err != nil {
		return err
	}

	return cmd.render(c, list, view)
}

func (cmd *LsCmd) render(c *cli.Command, list []approval.TDS, view approval.View) error {
	out := c.Root().Writer

	if len(list) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No data available\n")
		}
		return nil
	}

	if cmd.jsonOutput {
		for _, t := range list {
			if err := iojson.WriteLine(out, buildTDSInfo(t)); err != nil {
				return fmt.Errorf("encode tds: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	headers := make([]string, 0, len(view.Columns)+1)
	headers = append(headers, "ID")
	for _, col := range view.Columns {
		headers = append(headers, strings.ToUpper(col.Title))
	}
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))

	for _, t := range list {
		row := append([]string{fmt.Sprintf("%d", t.ID)}, view.Row(t)...)
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

// genericColumns is the layout for status listings that aren't tied to
// a role's pending queue.
func genericColumns() approval.View {
	return approval.View{
		Columns: []approval.Column{
			{Title: "TDS Name", Width: 24},
			{Title: "Documents", Width: 28},
			{Title: "Status", Width: 12},
			{Title: "Remarks", Width: 20},
			{Title: "Project", Width: 18},
		},
	}
}

// tdsInfo is the JSON output format for tdsctl ls --json.
type tdsInfo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Documents   []string `json:"documents"`
	Status      string   `json:"status"`
	Remarks     string   `json:"remarks,omitempty"`
	CurrentStep int      `json:"currentStep"`
	Project     string   `json:"project,omitempty"`
	CreatedBy   string   `json:"createdBy,omitempty"`
}

func buildTDSInfo(t approval.TDS) tdsInfo {
	docs := make([]string, 0, len(t.Documents()))
	for _, d := range t.Documents() {
		docs = append(docs, approval.DisplayName(d))
	}

	return tdsInfo{
		ID:          t.ID,
		Name:        t.Name,
		Documents:   docs,
		Status:      t.Status,
		Remarks:     t.Remarks,
		CurrentStep: t.CurrentStep,
		Project:     t.ProjectName(),
		CreatedBy:   t.CreatedBy(),
	}
}
