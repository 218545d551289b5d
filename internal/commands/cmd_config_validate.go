package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/core/config"
	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
	"github.com/activus-tech/tdsctl/pkg/iojson"
)

type ConfigCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	format string
}

// NewConfigCmd creates the configuration management commands.
func NewConfigCmd(flags *Flags, app *tdsctl.App) *ConfigCmd {
	return &ConfigCmd{flags: flags, app: app}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tdsctl config validate [options]",
				Description: "Validates the configuration file, checking the server URL, directories, and opener command.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: cmd.runShow,
			},
		},
	})

	return app
}

func (cmd *ConfigCmd) runValidate(ctx context.Context, c *cli.Command) error {
	validateErr := cmd.app.Config.ValidateDeep(cmd.flags.ConfigPath)
	warnings := cmd.app.Config.Warnings()

	if cmd.format == "json" {
		out := struct {
			Valid    bool                       `json:"valid"`
			Error    string                     `json:"error,omitempty"`
			Warnings []config.ValidationWarning `json:"warnings,omitempty"`
		}{
			Valid:    validateErr == nil,
			Warnings: warnings,
		}
		if validateErr != nil {
			out.Error = validateErr.Error()
		}
		return iojson.Write(c.Root().Writer, out)
	}

	p := printer.Ctx(ctx)

	for _, warn := range warnings {
		p.Infof("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}

	if validateErr != nil {
		p.Errorf("%v", validateErr)
		return cli.Exit("", 1)
	}

	p.Successf("Configuration is valid")
	return nil
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	return iojson.Write(c.Root().Writer, cmd.app.Config)
}
