package approval

import "strings"

// Column describes one table column of a role's pending-approvals view.
type Column struct {
	Title string
	Width int
}

// View is the single configuration record that drives a role's
// pending-approvals page: which endpoint to read, which endpoint
// mutates, which query parameters each needs, and which columns to
// render. Centralizing this table keeps every role page on the same
// code path.
type View struct {
	Role  Role
	Title string

	// ListPath is the collection read endpoint for the role.
	ListPath string
	// ListNeedsUsername adds the username query parameter to the read.
	ListNeedsUsername bool

	// ApprovePath is the approve/reject endpoint prefix; the item ID is
	// appended as the final path segment. Empty when the role cannot
	// act from this view.
	ApprovePath string
	// ApproveNeedsUsername adds the username query parameter to the
	// mutation.
	ApproveNeedsUsername bool

	Columns []Column
}

// CanApprove reports whether the view exposes approve/reject actions.
func (v View) CanApprove() bool {
	return v.ApprovePath != ""
}

var baseColumns = []Column{
	{Title: "TDS Name", Width: 24},
	{Title: "Documents", Width: 28},
	{Title: "Status", Width: 12},
	{Title: "Remarks", Width: 20},
	{Title: "Project", Width: 18},
}

var creatorColumns = append(append([]Column{}, baseColumns...), Column{Title: "Created By", Width: 14})

// views is the role dispatch table. Roles without an entry have no
// pending-approvals view and degrade to "no data available".
var views = map[Role]View{
	RolePM: {
		Role:                 RolePM,
		Title:                "PM TDS Approval",
		ListPath:             "/api/tds/need-to-approve/pm",
		ListNeedsUsername:    true,
		ApprovePath:          "/api/tds/approve/pm",
		ApproveNeedsUsername: true,
		Columns:              baseColumns,
	},
	RoleSME: {
		Role:     RoleSME,
		Title:    "SME Document Review",
		ListPath: "/api/tds/need-to-review/sme",
		Columns:  baseColumns,
	},
	RoleL1: {
		Role:                 RoleL1,
		Title:                "L1 TDS Approval",
		ListPath:             "/api/tds/need-to-approve/l1",
		ListNeedsUsername:    true,
		ApprovePath:          "/api/tds/approve/l1",
		ApproveNeedsUsername: true,
		Columns:              creatorColumns,
	},
	RoleL2: {
		Role:        RoleL2,
		Title:       "TDS Final Approval",
		ListPath:    "/api/tds/need-to-approve/l2",
		ApprovePath: "/api/tds/approve/l2",
		Columns:     baseColumns,
	},
	RoleL3: {
		Role:                 RoleL3,
		Title:                "L3 TDS Approval",
		ListPath:             "/api/tds/need-to-approve/l3",
		ListNeedsUsername:    true,
		ApprovePath:          "/api/tds/approve/l3",
		ApproveNeedsUsername: true,
		Columns:              creatorColumns,
	},
	RoleBU: {
		Role:                 RoleBU,
		Title:                "BU TDS Approval",
		ListPath:             "/api/tds/need-to-approve/bu",
		ListNeedsUsername:    true,
		ApprovePath:          "/api/tds/approve/bu",
		ApproveNeedsUsername: true,
		Columns:              creatorColumns,
	},
}

// ViewFor returns the pending-approvals view configuration for a role.
// The second return is false for roles without one.
func ViewFor(role Role) (View, bool) {
	v, ok := views[role]
	return v, ok
}

// Row renders one TDS as cell values in the view's column order.
func (v View) Row(t TDS) []string {
	cells := make([]string, 0, len(v.Columns))
	for _, col := range v.Columns {
		cells = append(cells, cell(t, col.Title))
	}
	return cells
}

func cell(t TDS, title string) string {
	switch title {
	case "TDS Name":
		return t.Name
	case "Documents":
		names := make([]string, 0, len(t.Documents()))
		for _, doc := range t.Documents() {
			names = append(names, DisplayName(doc))
		}
		return strings.Join(names, ", ")
	case "Status":
		return t.Status
	case "Remarks":
		return t.Remarks
	case "Project":
		return t.ProjectName()
	case "Created By":
		return t.CreatedBy()
	default:
		return ""
	}
}
