package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type ProjectCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	name        string
	description string
	validation  bool
	jsonOutput  bool
	reject      bool
	roleIDs     map[approval.Role]*string
	l2IDs       string
	l3IDs       string
}

// NewProjectCmd creates the project management commands.
func NewProjectCmd(flags *Flags, app *tdsctl.App) *ProjectCmd {
	return &ProjectCmd{
		flags: flags,
		app:   app,
		roleIDs: map[approval.Role]*string{
			approval.RolePM:          new(string),
			approval.RoleSME:         new(string),
			approval.RoleStakeholder: new(string),
			approval.RoleL1:          new(string),
			approval.RoleBU:          new(string),
			approval.RoleContractor:  new(string),
		},
	}
}

// Register adds the project command to the application.
func (cmd *ProjectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "project",
		Usage: "Manage projects and their teams",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List your projects",
				UsageText: "tdsctl project ls [--validation] [--json]",
				Description: `Lists the projects you are assigned to. With --validation, lists
the projects awaiting L2 review instead.`,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "validation",
						Usage:       "list projects awaiting L2 review",
						Destination: &cmd.validation,
					},
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "create",
				Usage:     "Create a project with its per-role team",
				UsageText: "tdsctl project create [--name NAME] [--description TEXT] [--pm IDS] [--sme IDS] ...",
				Description: `Registers a new project. Every required role (PM, SME, Stakeholder,
L1, BU, Contractor) needs at least one assignee; L2 and L3 are set
later by L1 via 'tdsctl project team'.

Assignee flags take comma-separated user ids from 'tdsctl users ls'.
Without --name, an interactive form offers approved users per role.`,
				Flags:  cmd.createFlags(),
				Action: cmd.runCreate,
			},
			{
				Name:      "review",
				Usage:     "Approve or reject a project under L2 validation",
				UsageText: "tdsctl project review <project-id> [--reject]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "reject",
						Usage:       "reject instead of approve",
						Destination: &cmd.reject,
					},
				},
				Action: cmd.runReview,
			},
			{
				Name:      "team",
				Usage:     "Set a project's optional L2/L3 assignments",
				UsageText: "tdsctl project team <project-id> [--l2 IDS] [--l3 IDS]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "l2",
						Usage:       "comma-separated L2 user ids",
						Destination: &cmd.l2IDs,
					},
					&cli.StringFlag{
						Name:        "l3",
						Usage:       "comma-separated L3 user ids",
						Destination: &cmd.l3IDs,
					},
				},
				Action: cmd.runTeam,
			},
		},
	})

	return app
}

func (cmd *ProjectCmd) createFlags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "name",
			Aliases:     []string{"n"},
			Usage:       "project name",
			Destination: &cmd.name,
		},
		&cli.StringFlag{
			Name:        "description",
			Aliases:     []string{"d"},
			Usage:       "project description",
			Destination: &cmd.description,
		},
	}

	names := map[approval.Role]string{
		approval.RolePM:          "pm",
		approval.RoleSME:         "sme",
		approval.RoleStakeholder: "stakeholder",
		approval.RoleL1:          "l1",
		approval.RoleBU:          "bu",
		approval.RoleContractor:  "contractor",
	}
	for _, role := range approval.RequiredProjectRoles {
		flags = append(flags, &cli.StringFlag{
			Name:        names[role],
			Usage:       fmt.Sprintf("comma-separated %s user ids", role),
			Destination: cmd.roleIDs[role],
		})
	}
	return flags
}

func (cmd *ProjectCmd) runLs(ctx context.Context, c *cli.Command) error {
	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	var projects []approval.Project
	var err error
	if cmd.validation {
		projects, err = cmd.app.API.L2ValidationProjects(ctx)
	} else {
		projects, err = cmd.app.API.AssignedProjects(ctx)
	}
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if len(projects) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No projects found\n")
		}
		return nil
	}

	if cmd.jsonOutput {
		for _, proj := range projects {
			if err := iojson.WriteLine(out, proj); err != nil {
				return fmt.Errorf("encode project: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION\tSTATUS\tSTAKEHOLDER")
	for _, proj := range projects {
		status := "pending"
		if proj.Status {
			status = "active"
		}
		stakeholder := ""
		if proj.Stakeholder != nil {
			stakeholder = proj.Stakeholder.Username
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", proj.ID, proj.Name, proj.Description, status, stakeholder)
	}
	return w.Flush()
}

func (cmd *ProjectCmd) runCreate(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	assignments := map[approval.Role][]int64{}

	if cmd.name == "" {
		users, err := cmd.app.API.ApprovedUsers(ctx)
		if err != nil {
			return err
		}
		if err := cmd.createForm(users, assignments); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	} else {
		for role, raw := range cmd.roleIDs {
			ids, err := parseIDList(*raw)
			if err != nil {
				return fmt.Errorf("%s: %w", role, err)
			}
			assignments[role] = ids
		}
	}

	if err := approval.ValidateProjectCreate(cmd.name, cmd.description, assignments); err != nil {
		return err
	}

	if err := cmd.app.API.CreateProject(ctx, cmd.name, cmd.description, assignments); err != nil {
		return err
	}

	p.Successf("Created project %q", cmd.name)
	return nil
}

// createForm builds one multi-select per required role from the
// approved user directory.
func (cmd *ProjectCmd) createForm(users []approval.User, assignments map[approval.Role][]int64) error {
	byRole := map[approval.Role][]approval.User{}
	for _, u := range users {
		byRole[u.Role] = append(byRole[u.Role], u)
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Project name").
			Validate(validateRequired("name")).
			Value(&cmd.name),
		huh.NewInput().
			Title("Description").
			Validate(validateRequired("description")).
			Value(&cmd.description),
	}

	selections := map[approval.Role]*[]int64{}
	for _, role := range approval.RequiredProjectRoles {
		candidates := byRole[role]
		if len(candidates) == 0 {
			return fmt.Errorf("no approved %s users exist yet", role)
		}

		opts := make([]huh.Option[int64], 0, len(candidates))
		for _, u := range candidates {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s <%s>", u.Username, u.EmailID), u.ID))
		}

		sel := &[]int64{}
		selections[role] = sel
		fields = append(fields, huh.NewMultiSelect[int64]().
			Title(string(role)).
			Options(opts...).
			Value(sel))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(styles.FormTheme()).Run(); err != nil {
		return err
	}

	for role, sel := range selections {
		assignments[role] = *sel
	}
	return nil
}

func (cmd *ProjectCmd) runReview(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	if err := cmd.app.API.ReviewProject(ctx, id, !cmd.reject); err != nil {
		return err
	}

	if cmd.reject {
		p.Successf("Rejected project %d", id)
	} else {
		p.Successf("Approved project %d", id)
	}
	return nil
}

func (cmd *ProjectCmd) runTeam(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	l2, err := parseIDList(cmd.l2IDs)
	if err != nil {
		return fmt.Errorf("--l2: %w", err)
	}
	l3, err := parseIDList(cmd.l3IDs)
	if err != nil {
		return fmt.Errorf("--l3: %w", err)
	}

	if err := cmd.app.API.UpdateProjectTeam(ctx, id, l2, l3); err != nil {
		return err
	}

	p.Successf("Updated team for project %d", id)
	return nil
}

// parseIDList parses a comma-separated list of user ids.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range splitCommaList(raw) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
