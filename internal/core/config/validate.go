package config

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including URL syntax and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips
// the config file check). This calls Validate() first for basic
// structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("server.url", c.Server.URL, isHTTPURL),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("downloads.dir", c.Downloads.Dir, isDirectoryOrNotExist),
		criterio.Run("downloads.opener", c.Downloads.Opener, openerExists),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if u, err := url.Parse(c.Server.URL); err == nil && u.Scheme == "http" && u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		warnings = append(warnings, ValidationWarning{
			Category: "Server",
			Item:     c.Server.URL,
			Message:  "bearer credentials will be sent over plain http",
		})
	}

	if c.Downloads.Opener == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Downloads",
			Message:  "no opener configured; documents are saved but not opened",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// openerExists validates that the opener command is on PATH.
func openerExists(cmd string) error {
	if cmd == "" {
		return nil
	}
	if _, err := exec.LookPath(cmd); err != nil {
		return fmt.Errorf("executable not found: %s", cmd)
	}
	return nil
}
