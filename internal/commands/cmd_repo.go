package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/session"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type RepoCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	stakeholder string
	contractor  string
	jsonOutput  bool
	output      string
	saveOnly    bool
}

// NewRepoCmd creates the shared document repository commands.
func NewRepoCmd(flags *Flags, app *tdsctl.App) *RepoCmd {
	return &RepoCmd{flags: flags, app: app}
}

// Register adds the repo command to the application.
func (cmd *RepoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "repo",
		Usage: "Browse the stakeholder/contractor shared document repository",
		Description: `The repository is scoped to a stakeholder/contractor pair.
Logged in as a contractor, the stakeholder is resolved from your first
assigned project; logged in as a stakeholder, pass --contractor.
Both can be overridden with flags.`,
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List repository documents",
				UsageText: "tdsctl repo ls [--stakeholder NAME] [--contractor NAME] [--json]",
				Flags: append(cmd.scopeFlags(),
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				),
				Action: cmd.runLs,
			},
			{
				Name:      "get",
				Usage:     "Download a repository document by storage key",
				UsageText: "tdsctl repo get <s3-key> [--output PATH] [--save-only]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "write to this path instead of the downloads directory",
						Destination: &cmd.output,
					},
					&cli.BoolFlag{
						Name:        "save-only",
						Usage:       "download without launching the opener",
						Destination: &cmd.saveOnly,
					},
				},
				Action: cmd.runGet,
			},
		},
	})

	return app
}

func (cmd *RepoCmd) scopeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "stakeholder",
			Usage:       "stakeholder username (resolved from your projects when omitted)",
			Destination: &cmd.stakeholder,
		},
		&cli.StringFlag{
			Name:        "contractor",
			Usage:       "contractor username (defaults to yourself for contractors)",
			Destination: &cmd.contractor,
		},
	}
}

func (cmd *RepoCmd) runLs(ctx context.Context, c *cli.Command) error {
	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	stakeholder, contractor, err := cmd.resolveScope(ctx, sess)
	if err != nil {
		return err
	}

	docs, err := cmd.app.API.S3Documents(ctx, stakeholder, contractor)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if len(docs) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No documents in repository\n")
		}
		return nil
	}

	if cmd.jsonOutput {
		for _, d := range docs {
			if err := iojson.WriteLine(out, d); err != nil {
				return fmt.Errorf("encode document: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED\tKEY")
	for _, d := range docs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Filename, formatSize(d.Size), d.LastModified, d.S3Key)
	}
	return w.Flush()
}

func (cmd *RepoCmd) runGet(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	key := c.Args().First()
	if key == "" {
		return fmt.Errorf("missing <s3-key> argument")
	}

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	dst := cmd.output
	if dst == "" {
		var err error
		dst, err = cmd.app.DownloadPath(path.Base(key))
		if err != nil {
			return err
		}
	}

	if err := downloadTo(ctx, dst, func(f *os.File) error {
		return cmd.app.API.DownloadS3(ctx, key, f)
	}); err != nil {
		return err
	}

	p.Success("Downloaded", dst)

	if cmd.saveOnly {
		return nil
	}
	if err := cmd.app.OpenFile(dst); err != nil {
		p.Infof("%v", err)
	}
	return nil
}

// resolveScope fills in the stakeholder/contractor pair from flags and
// the session role.
func (cmd *RepoCmd) resolveScope(ctx context.Context, sess session.Session) (stakeholder, contractor string, err error) {
	stakeholder = cmd.stakeholder
	contractor = cmd.contractor

	switch sess.Role {
	case approval.RoleContractor:
		if contractor == "" {
			contractor = sess.Username
		}
		if stakeholder == "" {
			projects, perr := cmd.app.API.ContractorProjects(ctx, contractor)
			if perr != nil {
				return "", "", perr
			}
			for _, proj := range projects {
				if proj.Stakeholder != nil {
					stakeholder = proj.Stakeholder.Username
					break
				}
			}
			if stakeholder == "" {
				return "", "", fmt.Errorf("no stakeholder found on your projects; pass --stakeholder")
			}
		}
	case approval.RoleStakeholder:
		if stakeholder == "" {
			stakeholder = sess.Username
		}
		if contractor == "" {
			return "", "", fmt.Errorf("pass --contractor to pick the repository scope")
		}
	default:
		if stakeholder == "" || contractor == "" {
			return "", "", fmt.Errorf("pass --stakeholder and --contractor for role %s", sess.Role)
		}
	}

	return stakeholder, contractor, nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}
