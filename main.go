package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/api"
	"github.com/activus-tech/tdsctl/internal/commands"
	"github.com/activus-tech/tdsctl/internal/core/config"
	"github.com/activus-tech/tdsctl/internal/core/session"
	"github.com/activus-tech/tdsctl/internal/core/styles"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		app       = &tdsctl.App{}
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "tdsctl",
		Usage:     "Terminal client for the TDS approval workflow",
		UsageText: "tdsctl [global options] command [command options]",
		Description: `tdsctl talks to a TDS approval server: it lists the records waiting
on your role, records approve/reject decisions, moves rejected sheets
back through the recheck cycle, and downloads documents.

Run 'tdsctl login' first; the stored credential decides which queue
and actions you see.

Run 'tdsctl' with no arguments to open the interactive queue.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TDSCTL_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/tdsctl.log)",
				Sources:     cli.EnvVars("TDSCTL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TDSCTL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TDSCTL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; stdout belongs to command output.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "tdsctl.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			client := api.New(cfg.Server.URL, time.Duration(cfg.Server.TimeoutSeconds)*time.Second, log.With().Str("component", "api").Logger())

			// A missing or broken credential is not fatal here; login and
			// register must still run, and everything else reports it
			// through RequireSession.
			sess := session.NewProvider(cfg.DataDir)
			switch err := sess.Load(); err {
			case nil:
				current, _ := sess.Current()
				client.SetToken(current.Token)
			case session.ErrNotLoggedIn:
			default:
				log.Warn().Err(err).Msg("stored credential is unusable")
			}

			// Populate the pre-allocated App struct (commands already
			// hold a pointer to it)
			*app = *tdsctl.NewApp(cfg, sess, client, log.Logger, version)

			return printer.WithContext(ctx, printer.New(os.Stdout)), nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, app)

	root = commands.NewAuthCmd(flags, app).Register(root)
	root = commands.NewLsCmd(flags, app).Register(root)
	root = commands.NewApproveCmd(flags, app).Register(root)
	root = commands.NewCreateCmd(flags, app).Register(root)
	root = commands.NewRecheckCmd(flags, app).Register(root)
	root = commands.NewResubmitCmd(flags, app).Register(root)
	root = commands.NewFinalizeCmd(flags, app).Register(root)
	root = commands.NewOpenCmd(flags, app).Register(root)
	root = commands.NewRepoCmd(flags, app).Register(root)
	root = commands.NewProjectCmd(flags, app).Register(root)
	root = commands.NewUsersCmd(flags, app).Register(root)
	root = commands.NewConfigCmd(flags, app).Register(root)
	root = commands.NewDocCmd(flags).Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'tdsctl --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
