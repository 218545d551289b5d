package approval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))
	return path
}

func TestValidateFinalize(t *testing.T) {
	order := writeTempFile(t, "order.pdf")
	lr := writeTempFile(t, "lr.pdf")

	t.Run("both files present", func(t *testing.T) {
		assert.NoError(t, ValidateFinalize(order, lr))
	})

	t.Run("missing lr copy", func(t *testing.T) {
		err := ValidateFinalize(order, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lr_copy")
	})

	t.Run("missing order confirmation", func(t *testing.T) {
		err := ValidateFinalize("", lr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order_confirmation")
	})

	t.Run("unreadable file", func(t *testing.T) {
		err := ValidateFinalize(filepath.Join(t.TempDir(), "nope.pdf"), lr)
		assert.Error(t, err)
	})
}

func TestValidateRecheck(t *testing.T) {
	newFile := writeTempFile(t, "replacement.pdf")

	tests := []struct {
		name    string
		kept    []string
		files   []string
		wantErr bool
	}{
		{"kept only", []string{"/uploads/a.pdf"}, nil, false},
		{"new only", nil, []string{newFile}, false},
		{"both", []string{"/uploads/a.pdf"}, []string{newFile}, false},
		{"neither", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecheck(tt.kept, tt.files)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateResubmit(t *testing.T) {
	newFile := writeTempFile(t, "replacement.pdf")

	assert.NoError(t, ValidateResubmit(true, nil, ""))
	assert.NoError(t, ValidateResubmit(false, []int{0}, ""))
	assert.NoError(t, ValidateResubmit(false, nil, newFile))
	assert.Error(t, ValidateResubmit(false, nil, ""))
}

func TestValidateProjectCreate(t *testing.T) {
	full := map[Role][]int64{
		RolePM:          {1},
		RoleSME:         {2},
		RoleStakeholder: {3},
		RoleL1:          {4},
		RoleBU:          {5},
		RoleContractor:  {6},
	}

	t.Run("all required roles covered", func(t *testing.T) {
		assert.NoError(t, ValidateProjectCreate("Plant A", "Pipeline rework", full))
	})

	t.Run("L2 and L3 optional", func(t *testing.T) {
		withOptional := map[Role][]int64{}
		for k, v := range full {
			withOptional[k] = v
		}
		withOptional[RoleL2] = nil
		withOptional[RoleL3] = nil
		assert.NoError(t, ValidateProjectCreate("Plant A", "Pipeline rework", withOptional))
	})

	t.Run("missing required role", func(t *testing.T) {
		partial := map[Role][]int64{}
		for k, v := range full {
			partial[k] = v
		}
		delete(partial, RoleBU)

		err := ValidateProjectCreate("Plant A", "Pipeline rework", partial)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BU")
	})

	t.Run("missing name and description", func(t *testing.T) {
		assert.Error(t, ValidateProjectCreate("", "", full))
	})
}

func TestValidateCreateTDS(t *testing.T) {
	file := writeTempFile(t, "sheet.pdf")

	assert.NoError(t, ValidateCreateTDS("Valve TDS", 7, []string{file}))
	assert.Error(t, ValidateCreateTDS("", 7, []string{file}))
	assert.Error(t, ValidateCreateTDS("Valve TDS", 0, []string{file}))
	assert.Error(t, ValidateCreateTDS("Valve TDS", 7, nil), "at least one document is required")
}
