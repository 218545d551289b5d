// Package session manages the persisted login credential and derives
// the caller's identity from it.
//
// The credential is a bearer token issued by the approval server. Its
// payload is decoded locally (without signature verification) only to
// learn the username and role for display and endpoint dispatch; the
// server re-validates the token on every protected call, so nothing
// here is an access-control boundary.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

// ErrNotLoggedIn is returned when no credential is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// ErrInvalidToken is returned when the stored credential is malformed
// or its payload cannot be decoded. Callers must block data loading
// and prompt for re-authentication.
var ErrInvalidToken = errors.New("invalid token")

const (
	tokenFile = "token"
	roleFile  = "role"
)

// Session is the identity derived from the stored credential.
type Session struct {
	Username string
	Role     approval.Role
	Token    string
}

// Provider owns the credential files under the data directory. It is
// loaded once at startup and read-only afterwards; Save and Clear are
// only called by the login and logout commands.
type Provider struct {
	dataDir string
	current *Session
}

// NewProvider returns a Provider rooted at dataDir. Call Load before
// Current.
func NewProvider(dataDir string) *Provider {
	return &Provider{dataDir: dataDir}
}

// Load reads the stored credential and decodes the identity from it.
// A missing credential yields ErrNotLoggedIn; an undecodable one
// yields ErrInvalidToken. Both leave the provider empty.
func (p *Provider) Load() error {
	raw, err := os.ReadFile(filepath.Join(p.dataDir, tokenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotLoggedIn
		}
		return fmt.Errorf("read credential: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return ErrNotLoggedIn
	}

	username, role, err := Decode(token)
	if err != nil {
		return err
	}

	p.current = &Session{Username: username, Role: role, Token: token}
	return nil
}

// Current returns the loaded session. ErrNotLoggedIn when Load was
// not called or found no credential.
func (p *Provider) Current() (Session, error) {
	if p.current == nil {
		return Session{}, ErrNotLoggedIn
	}
	return *p.current, nil
}

// Save persists the credential and its last-known role, then reloads
// the provider from the decoded payload.
func (p *Provider) Save(token string) error {
	username, role, err := Decode(token)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.dataDir, tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	if err := os.WriteFile(filepath.Join(p.dataDir, roleFile), []byte(role), 0o600); err != nil {
		return fmt.Errorf("write role: %w", err)
	}

	p.current = &Session{Username: username, Role: role, Token: token}
	return nil
}

// Clear erases the stored credential. Missing files are not an error;
// logout is idempotent.
func (p *Provider) Clear() error {
	p.current = nil
	for _, name := range []string{tokenFile, roleFile} {
		if err := os.Remove(filepath.Join(p.dataDir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}

// Decode extracts the sub and role claims from the token's payload
// segment without verifying the signature.
func Decode(token string) (username string, role approval.Role, err error) {
	claims := jwt.MapClaims{}
	if _, _, perr := jwt.NewParser().ParseUnverified(token, claims); perr != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, perr)
	}

	sub, serr := claims.GetSubject()
	if serr != nil || sub == "" {
		return "", "", fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	rawRole, _ := claims["role"].(string)
	if rawRole == "" {
		return "", "", fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}

	// Unknown role names are preserved rather than rejected; the
	// dispatcher degrades them to an empty view.
	r, ok := approval.ParseRole(rawRole)
	if !ok {
		r = approval.Role(rawRole)
	}

	return sub, r, nil
}
