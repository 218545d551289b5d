// Package approval holds the client-side model of the TDS approval
// workflow: roles, workflow items, projects, and the role-to-view
// dispatch table shared by the CLI commands and the TUI.
package approval

// Role is one of the fixed approval-chain roles known to the server.
// The decoded credential's role claim is only used to pick endpoints
// and columns; the server re-validates authorization on every call.
type Role string

const (
	RolePM          Role = "PM"
	RoleSME         Role = "SME"
	RoleStakeholder Role = "Stakeholder"
	RoleL1          Role = "L1"
	RoleL2          Role = "L2"
	RoleL3          Role = "L3"
	RoleBU          Role = "BU"
	RoleContractor  Role = "Contractor"
	RoleSuperAdmin  Role = "SUPER_ADMIN"
)

// Roles lists every role the server accepts, in approval-chain order.
var Roles = []Role{
	RolePM,
	RoleSME,
	RoleStakeholder,
	RoleL1,
	RoleL2,
	RoleL3,
	RoleBU,
	RoleContractor,
	RoleSuperAdmin,
}

// ParseRole matches s against the known role names. Role names are
// case-sensitive on the server, so no folding is done here.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// RequiredProjectRoles are the roles that must have at least one
// assigned user before a project can be created. L2 and L3 are
// optional and assigned later by L1.
var RequiredProjectRoles = []Role{
	RolePM,
	RoleSME,
	RoleStakeholder,
	RoleL1,
	RoleBU,
	RoleContractor,
}

// MenuItem is one entry in a role's allowed set of views.
type MenuItem struct {
	Key   string
	Label string
}

// menuConfig maps each role to the views it may open. Roles absent
// from the map see no content rather than an error.
var menuConfig = map[Role][]MenuItem{
	RoleStakeholder: {
		{Key: "projects", Label: "Projects"},
		{Key: "pending", Label: "TDS"},
	},
	RolePM: {
		{Key: "projects", Label: "Projects"},
		{Key: "pending", Label: "TDS (Pending Approval)"},
		{Key: "approved", Label: "Fully Approved TDS"},
	},
	RoleL1: {
		{Key: "pending", Label: "TDS"},
		{Key: "team", Label: "Project Team Update"},
	},
	RoleL2: {
		{Key: "project-review", Label: "Projects"},
		{Key: "pending", Label: "TDS Final Approval"},
	},
	RoleL3: {
		{Key: "pending", Label: "TDS"},
	},
	RoleBU: {
		{Key: "pending", Label: "TDS"},
	},
	RoleSME: {
		{Key: "create", Label: "Create TDS"},
		{Key: "recheck", Label: "Rejected TDS"},
		{Key: "pending", Label: "Validate Documents"},
	},
	RoleContractor: {
		{Key: "approved", Label: "Fully Approved TDS"},
		{Key: "resubmit", Label: "Resubmit Documents"},
		{Key: "finalize", Label: "Accept Purchase"},
	},
	RoleSuperAdmin: {
		{Key: "users", Label: "User Approval"},
	},
}

// Menu returns the views available to the given role. An unknown or
// unassigned role gets an empty menu.
func Menu(role Role) []MenuItem {
	return menuConfig[role]
}
