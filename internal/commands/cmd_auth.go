package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/activus-tech/tdsctl/internal/core/approval"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	username   string
	password   string
	role       string
	email      string
	jsonOutput bool
}

// NewAuthCmd creates the login, logout, register, and whoami commands.
func NewAuthCmd(flags *Flags, app *tdsctl.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the auth commands to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Authenticate against the approval server",
			UsageText: "tdsctl login [--username NAME] [--role ROLE]",
			Description: `Authenticates and stores the issued credential in the data directory.

When --username or --role is omitted, an interactive form prompts for
input. The password is never accepted as a flag; it is prompted
without echo, or read from TDSCTL_PASSWORD for scripted use.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "username",
					Aliases:     []string{"u"},
					Usage:       "account username",
					Destination: &cmd.username,
				},
				&cli.StringFlag{
					Name:        "role",
					Aliases:     []string{"r"},
					Usage:       "role to log in as (PM, SME, Stakeholder, L1, L2, L3, BU, Contractor, SUPER_ADMIN)",
					Destination: &cmd.role,
				},
			},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Discard the stored credential",
			Action: cmd.runLogout,
		},
		&cli.Command{
			Name:      "register",
			Usage:     "Request a new account",
			UsageText: "tdsctl register [--username NAME] [--email ADDR] [--role ROLE]",
			Description: `Submits an account request. The account stays unusable until a
Super Admin approves it.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "username",
					Aliases:     []string{"u"},
					Usage:       "desired username",
					Destination: &cmd.username,
				},
				&cli.StringFlag{
					Name:        "email",
					Usage:       "contact email address",
					Destination: &cmd.email,
				},
				&cli.StringFlag{
					Name:        "role",
					Aliases:     []string{"r"},
					Usage:       "requested role",
					Destination: &cmd.role,
				},
			},
			Action: cmd.runRegister,
		},
		&cli.Command{
			Name:  "whoami",
			Usage: "Show the logged-in identity",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runWhoami,
		},
	)
	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.username == "" || cmd.role == "" {
		if err := cmd.loginForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if _, ok := approval.ParseRole(cmd.role); !ok {
		return fmt.Errorf("unknown role %q", cmd.role)
	}

	if cmd.password == "" {
		pw, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		cmd.password = pw
	}

	token, err := cmd.app.API.Login(ctx, cmd.username, cmd.password, cmd.role)
	if err != nil {
		return err
	}

	if err := cmd.app.Session.Save(token); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	cmd.app.API.SetToken(token)

	sess, err := cmd.app.Session.Current()
	if err != nil {
		return err
	}

	p.Successf("Logged in as %s (%s)", sess.Username, sess.Role)
	return nil
}

func (cmd *AuthCmd) runLogout(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if err := cmd.app.Session.Clear(); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	cmd.app.API.SetToken("")

	p.Successf("Logged out")
	return nil
}

func (cmd *AuthCmd) runRegister(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	if cmd.username == "" || cmd.email == "" || cmd.role == "" {
		if err := cmd.registerForm(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("form: %w", err)
		}
	}

	if _, ok := approval.ParseRole(cmd.role); !ok {
		return fmt.Errorf("unknown role %q", cmd.role)
	}

	if cmd.password == "" {
		pw, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		cmd.password = pw
	}

	if err := cmd.app.API.Register(ctx, cmd.username, cmd.password, cmd.email, cmd.role); err != nil {
		return err
	}

	p.Successf("Account requested; a Super Admin must approve it before login works")
	return nil
}

func (cmd *AuthCmd) runWhoami(ctx context.Context, c *cli.Command) error {
	sess, err := cmd.app.RequireSession()
	if err != nil {
		return err
	}

	if cmd.jsonOutput {
		return iojson.Write(c.Root().Writer, struct {
			Username string `json:"username"`
			Role     string `json:"role"`
			Server   string `json:"server"`
		}{sess.Username, string(sess.Role), cmd.app.Config.Server.URL})
	}

	p := printer.Ctx(ctx)
	p.Printf("%s (%s) @ %s", sess.Username, sess.Role, cmd.app.Config.Server.URL)

	if menu := approval.Menu(sess.Role); len(menu) > 0 {
		p.Printf("")
		for _, item := range menu {
			p.Infof("%s", item.Label)
		}
	}
	return nil
}

func (cmd *AuthCmd) loginForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Validate(validateRequired("username")).
				Value(&cmd.username),
			huh.NewSelect[string]().
				Title("Role").
				Options(roleOptions()...).
				Value(&cmd.role),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&cmd.password),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func (cmd *AuthCmd) registerForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Validate(validateRequired("username")).
				Value(&cmd.username),
			huh.NewInput().
				Title("Email").
				Validate(validateRequired("email")).
				Value(&cmd.email),
			huh.NewSelect[string]().
				Title("Role").
				Options(roleOptions()...).
				Value(&cmd.role),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Validate(validateRequired("password")).
				Value(&cmd.password),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func roleOptions() []huh.Option[string] {
	roles := []approval.Role{
		approval.RolePM,
		approval.RoleSME,
		approval.RoleStakeholder,
		approval.RoleL1,
		approval.RoleL2,
		approval.RoleL3,
		approval.RoleBU,
		approval.RoleContractor,
		approval.RoleSuperAdmin,
	}
	opts := make([]huh.Option[string], 0, len(roles))
	for _, r := range roles {
		opts = append(opts, huh.NewOption(string(r), string(r)))
	}
	return opts
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// readPassword prompts without echo when attached to a terminal, and
// falls back to TDSCTL_PASSWORD for scripted use.
func readPassword(prompt string) (string, error) {
	if pw := os.Getenv("TDSCTL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no terminal for password prompt; set TDSCTL_PASSWORD")
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
