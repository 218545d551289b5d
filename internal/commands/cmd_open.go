package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/activus-tech/tdsctl/internal/printer"
	"github.com/activus-tech/tdsctl/internal/tdsctl"
)

type OpenCmd struct {
	flags *Flags
	app   *tdsctl.App

	// flags
	output   string
	saveOnly bool
}

// NewOpenCmd creates a new open command.
func NewOpenCmd(flags *Flags, app *tdsctl.App) *OpenCmd {
	return &OpenCmd{flags: flags, app: app}
}

// Register adds the open command to the application.
func (cmd *OpenCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "open",
		Usage:     "Download a TDS document and open it",
		UsageText: "tdsctl open <document-name> [--output PATH] [--save-only]",
		Description: `Downloads the named document into the configured downloads
directory and hands it to the configured opener. Document names come
from 'tdsctl ls'; pass the display name, not the storage path.`,
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
		Action: cmd.run,
	})

	return app
}

func (cmd *OpenCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("missing <document-name> argument")
	}

	if _, err := cmd.app.RequireSession(); err != nil {
		return err
	}

	dst := cmd.output
	if dst == "" {
		var err error
		dst, err = cmd.app.DownloadPath(name)
		if err != nil {
			return err
		}
	}

	if err := downloadTo(ctx, dst, func(f *os.File) error {
		return cmd.app.API.Download(ctx, name, f)
	}); err != nil {
		return err
	}

	p.Success("Downloaded", dst)

	if cmd.saveOnly {
		return nil
	}
	if err := cmd.app.OpenFile(dst); err != nil {
		// The document is on disk either way; a missing opener is not
		// worth a non-zero exit.
		p.Infof("%v", err)
	}
	return nil
}

// downloadTo streams into a temp file next to dst and renames on
// success, so a failed download never leaves a truncated document.
func downloadTo(ctx context.Context, dst string, fetch func(*os.File) error) error {
	tmp, err := os.CreateTemp("", "tdsctl-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := fetch(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		// Cross-device rename fails on some setups; fall back to copy.
		data, rerr := os.ReadFile(tmp.Name())
		if rerr != nil {
			return fmt.Errorf("move download: %w", err)
		}
		if werr := os.WriteFile(dst, data, 0o644); werr != nil {
			return fmt.Errorf("write download: %w", werr)
		}
	}
	return nil
}
