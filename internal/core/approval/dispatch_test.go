package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewFor(t *testing.T) {
	tests := []struct {
		role          Role
		wantList      string
		wantApprove   string
		usernameList  bool
		usernameWrite bool
	}{
		{RolePM, "/api/tds/need-to-approve/pm", "/api/tds/approve/pm", true, true},
		{RoleSME, "/api/tds/need-to-review/sme", "", false, false},
		{RoleL1, "/api/tds/need-to-approve/l1", "/api/tds/approve/l1", true, true},
		{RoleL2, "/api/tds/need-to-approve/l2", "/api/tds/approve/l2", false, false},
		{RoleL3, "/api/tds/need-to-approve/l3", "/api/tds/approve/l3", true, true},
		{RoleBU, "/api/tds/need-to-approve/bu", "/api/tds/approve/bu", true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			v, ok := ViewFor(tt.role)
			require.True(t, ok)

			assert.Equal(t, tt.wantList, v.ListPath)
			assert.Equal(t, tt.wantApprove, v.ApprovePath)
			assert.Equal(t, tt.usernameList, v.ListNeedsUsername)
			assert.Equal(t, tt.usernameWrite, v.ApproveNeedsUsername)
			assert.NotEmpty(t, v.Columns)
		})
	}
}

func TestViewFor_UnknownRolesDegrade(t *testing.T) {
	for _, role := range []Role{RoleStakeholder, RoleContractor, RoleSuperAdmin, Role("intern")} {
		_, ok := ViewFor(role)
		assert.False(t, ok, "role %q should have no pending-approvals view", role)
	}
}

func TestViewRow(t *testing.T) {
	tds := TDS{
		ID:           7,
		Name:         "Valve TDS",
		DocumentPath: "/uploads/a.pdf,/uploads/spec v2.pdf",
		Status:       "Pending",
		Remarks:      "needs torque table",
		Project: &Project{
			Name:        "Plant A",
			Stakeholder: &User{Username: "stan"},
		},
	}

	pm, ok := ViewFor(RolePM)
	require.True(t, ok)
	assert.Equal(t, []string{"Valve TDS", "a.pdf, spec v2.pdf", "Pending", "needs torque table", "Plant A"}, pm.Row(tds))

	// Creator views carry the extra column.
	l1, ok := ViewFor(RoleL1)
	require.True(t, ok)
	row := l1.Row(tds)
	require.Len(t, row, len(l1.Columns))
	assert.Equal(t, "stan", row[len(row)-1])
}

func TestViewCanApprove(t *testing.T) {
	sme, ok := ViewFor(RoleSME)
	require.True(t, ok)
	assert.False(t, sme.CanApprove(), "SME view is read-only")

	pm, ok := ViewFor(RolePM)
	require.True(t, ok)
	assert.True(t, pm.CanApprove())
}
