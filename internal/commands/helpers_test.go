package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    int64
		wantErr bool
	}{
		{name: "valid", arg: "42", want: 42},
		{name: "missing", arg: "", wantErr: true},
		{name: "not a number", arg: "abc", wantErr: true},
		{name: "zero", arg: "0", wantErr: true},
		{name: "negative", arg: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseID(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitCommaList(t *testing.T) {
	assert.Nil(t, splitCommaList(""))
	assert.Equal(t, []string{"a", "b"}, splitCommaList("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitCommaList(" a , b , "))
	assert.Equal(t, []string{"/uploads/x.pdf"}, splitCommaList("/uploads/x.pdf"))
}

func TestParseIndexList(t *testing.T) {
	got, err := parseIndexList("0,2,5")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5}, got)

	got, err = parseIndexList("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseIndexList("1,-2")
	assert.Error(t, err)

	_, err = parseIndexList("one")
	assert.Error(t, err)
}

func TestParseIDList(t *testing.T) {
	got, err := parseIDList("1,2,3")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, got)

	_, err = parseIDList("0")
	assert.Error(t, err)
}

func TestExpandGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"a.pdf", "b.pdf", filepath.Join("sub", "c.pdf"), "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	t.Run("literal paths pass through", func(t *testing.T) {
		got, err := expandGlobs([]string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "missing.pdf")})
		require.NoError(t, err)
		// Missing literals surface later through validation with a
		// better message than "matched no files".
		assert.Len(t, got, 2)
	})

	t.Run("recursive glob", func(t *testing.T) {
		got, err := expandGlobs([]string{filepath.Join(dir, "**", "*.pdf")})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("no matches is an error", func(t *testing.T) {
		_, err := expandGlobs([]string{filepath.Join(dir, "*.docx")})
		assert.Error(t, err)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		got, err := expandGlobs([]string{
			filepath.Join(dir, "a.pdf"),
			filepath.Join(dir, "a.pdf"),
			filepath.Join(dir, "[a].pdf"),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, got)
	})
}

func TestHasGlobMeta(t *testing.T) {
	assert.True(t, hasGlobMeta("*.pdf"))
	assert.True(t, hasGlobMeta("docs/**/x.pdf"))
	assert.True(t, hasGlobMeta("file?.pdf"))
	assert.False(t, hasGlobMeta("plain/path.pdf"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", formatSize(512))
	assert.Equal(t, "2.0K", formatSize(2048))
	assert.Equal(t, "1.5M", formatSize(3*1<<20/2))
}
