package session

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

// testToken builds an unsigned three-segment token with the given
// payload claims. The signature segment is garbage on purpose: the
// client never verifies it.
func testToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".sig"
}

func TestDecode(t *testing.T) {
	t.Run("well-formed payload", func(t *testing.T) {
		token := testToken(t, map[string]any{"sub": "alice", "role": "PM"})

		username, role, err := Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", username)
		assert.Equal(t, approval.RolePM, role)
	})

	t.Run("missing payload segment", func(t *testing.T) {
		_, _, err := Decode("header-only")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("payload is not base64", func(t *testing.T) {
		_, _, err := Decode("a.!!!.c")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing sub", func(t *testing.T) {
		_, _, err := Decode(testToken(t, map[string]any{"role": "PM"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing role", func(t *testing.T) {
		_, _, err := Decode(testToken(t, map[string]any{"sub": "alice"}))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role preserved", func(t *testing.T) {
		_, role, err := Decode(testToken(t, map[string]any{"sub": "bob", "role": "Auditor"}))
		require.NoError(t, err)
		assert.Equal(t, approval.Role("Auditor"), role)
	})
}

func TestProviderLifecycle(t *testing.T) {
	dir := t.TempDir()
	token := testToken(t, map[string]any{"sub": "carol", "role": "Contractor"})

	p := NewProvider(dir)

	// Nothing stored yet.
	assert.ErrorIs(t, p.Load(), ErrNotLoggedIn)
	_, err := p.Current()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// Login writes both the credential and the last-known role.
	require.NoError(t, p.Save(token))

	sess, err := p.Current()
	require.NoError(t, err)
	assert.Equal(t, "carol", sess.Username)
	assert.Equal(t, approval.RoleContractor, sess.Role)
	assert.Equal(t, token, sess.Token)

	roleBytes, err := os.ReadFile(filepath.Join(dir, "role"))
	require.NoError(t, err)
	assert.Equal(t, "Contractor", string(roleBytes))

	// A fresh provider reconstructs the session from disk.
	p2 := NewProvider(dir)
	require.NoError(t, p2.Load())
	sess2, err := p2.Current()
	require.NoError(t, err)
	assert.Equal(t, sess, sess2)

	// Logout is idempotent.
	require.NoError(t, p2.Clear())
	require.NoError(t, p2.Clear())
	assert.ErrorIs(t, p2.Load(), ErrNotLoggedIn)
}

func TestProviderLoad_InvalidStoredToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "token"), []byte("garbage"), 0o600))

	p := NewProvider(dir)
	assert.ErrorIs(t, p.Load(), ErrInvalidToken)
}

func TestProviderSave_RejectsBadToken(t *testing.T) {
	p := NewProvider(t.TempDir())
	assert.ErrorIs(t, p.Save("not-a-token"), ErrInvalidToken)
}
