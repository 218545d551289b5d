package commands

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type CreateCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	name      string
	projectID int64
}

// NewCreateCmd creates a new create command.
func NewCreateCmd(flags *Flags, app *tdsctl.App) *CreateCmd {
	return &CreateCmd{flags: flags, app: app}
}

// Register adds the create command to the application.
func (cmd *CreateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "create",
		Usage:     "Create a new TDS with its initial documents",
		UsageText: "tdsctl create [--name NAME] [--project ID] <file-or-glob>...",
		Description: `Submits a new TDS in Draft status. File arguments may be literal
paths or glob patterns ('docs/**/*.pdf'); at least one document is
required.

When --name or --project is omitted, an interactive form prompts for
input using the projects you are assigned to.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "TDS name",
				Destination: &cmd.name,
			},
			&cli.Int64Flag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "owning project id",
				Destination: &cmd.projectID,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CreateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	files, err := expandGlobs(c.Args().Slice())
	if err != nil {
		return err
	}

	if cmd.name == "" || cmd.projectID == 0 {
		if err := cmd.runForm(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	if err := approval.ValidateCreateTDS(cmd.name, cmd.projectID, files); err != nil {
		return err
	}

	if err := cmd.app.API.CreateTDS(ctx, cmd.name, cmd.projectID, sess.Username, files); err != nil {
		return err
	}

	p.Successf("Created TDS %q with %d document(s)", cmd.name, len(files))
	return nil
}

func (cmd *CreateCmd) runForm(ctx context.Context) error {
	projects, err := cmd.app.API.AssignedProjects(ctx)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return fmt.Errorf("no projects assigned to you; ask a stakeholder to add you")
	}

	opts := make([]huh.Option[int64], 0, len(projects))
	for _, proj := range projects {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%d)", proj.Name, proj.ID), proj.ID))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("TDS name").
				Validate(validateRequired("name")).
				Value(&cmd.name),
			huh.NewSelect[int64]().
				Title("Project").
				Options(opts...).
				Value(&cmd.projectID),
		),
	).WithTheme(styles.FormTheme()).Run()
}

// expandGlobs resolves each argument as a doublestar pattern, passing
// non-pattern arguments through untouched so missing literal paths
// still reach validation with a useful error.
func expandGlobs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string

	for _, arg := range args {
		if !hasGlobMeta(arg) {
			if !seen[arg] {
				seen[arg] = true
				files = append(files, arg)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matched no files", arg)
		}

		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func hasGlobMeta(s string) bool {
	for _, r := range s {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
