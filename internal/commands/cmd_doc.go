package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
)

type DocCmd struct {
	flags *Flags

	// flags
	plain bool
}

// NewDocCmd creates a new doc command.
func NewDocCmd(flags *Flags) *DocCmd {
	return &DocCmd{flags: flags}
}

// Register adds the doc command to the application.
func (cmd *DocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "doc",
		Usage: "Documentation and workflow guides",
		Commands: []*cli.Command{
			{
				Name:  "workflow",
				Usage: "Show the TDS approval workflow guide",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "plain",
						Usage:       "print raw markdown without terminal rendering",
						Destination: &cmd.plain,
					},
				},
				Action: cmd.runWorkflow,
			},
		},
	})
	return app
}

func (cmd *DocCmd) runWorkflow(_ context.Context, c *cli.Command) error {
	w := c.Root().Writer

	if cmd.plain {
		_, _ = fmt.Fprintf(w, "%s\n", workflowGuide)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// Renderer failures degrade to raw markdown.
		_, _ = fmt.Fprintf(w, "%s\n", workflowGuide)
		return nil
	}

	out, err := r.Render(workflowGuide)
	if err != nil {
		_, _ = fmt.Fprintf(w, "%s\n", workflowGuide)
		return nil
	}

	_, _ = fmt.Fprint(w, out)
	return nil
}

const workflowGuide = `# TDS Approval Workflow

A Technical Data Sheet (TDS) moves through a fixed approval chain. The
server owns every transition; tdsctl only shows your queue and records
your decisions.

## Lifecycle

| Step | Actor | Command |
|------|-------|---------|
| 1. Draft | Stakeholder | ` + "`tdsctl create`" + ` |
| 2. SME review | SME | ` + "`tdsctl ls`" + ` (read-only queue) |
| 3. L1 approval | L1 | ` + "`tdsctl approve / reject`" + ` |
| 4. L2 final approval | L2 | ` + "`tdsctl approve / reject`" + ` |
| 5. L3 approval | L3 | ` + "`tdsctl approve / reject`" + ` |
| 6. BU approval | BU | ` + "`tdsctl approve / reject`" + ` |
| 7. PM approval | PM | ` + "`tdsctl approve / reject`" + ` |
| 8. Purchase | Contractor | ` + "`tdsctl finalize`" + ` |

## Rejection loops

A rejection at any approval step sends the TDS back for rework:

- **SME rejection**: the contractor fixes the documents with
  ` + "`tdsctl resubmit`" + ` (listed under ` + "`ls --status rejected`" + `).
- **Approver rejection**: the SME answers the remarks and resubmits
  with ` + "`tdsctl recheck`" + ` (listed under ` + "`ls --status recheck`" + `).

At least one document must survive every resubmission; the commands
refuse a cycle that would leave the TDS empty.

## Projects

Stakeholders create projects with ` + "`tdsctl project create`" + `,
assigning at least one user to each required role (PM, SME,
Stakeholder, L1, BU, Contractor). L2 validates new projects
(` + "`project ls --validation`" + `, ` + "`project review`" + `), and L1 fills in the
optional L2/L3 seats with ` + "`project team`" + `.

## Accounts

New accounts (` + "`tdsctl register`" + `) stay unusable until a Super Admin
approves them with ` + "`tdsctl users approve`" + `.

## Documents

- ` + "`tdsctl open <name>`" + ` downloads a TDS document and opens it.
- ` + "`tdsctl repo ls / get`" + ` browses the stakeholder/contractor shared
  repository.
`
