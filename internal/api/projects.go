package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

// ApprovedUsers lists all accounts that passed Super Admin approval,
// grouped client-side by role when assigning project teams.
func (c *Client) ApprovedUsers(ctx context.Context) ([]approval.User, error) {
	var users []approval.User
	if err := c.get(ctx, "/api/auth/approved-users", nil, &users); err != nil {
		return nil, fmt.Errorf("fetch approved users: %w", err)
	}
	return users, nil
}

// AssignedProjects lists the projects the calling user is assigned to.
func (c *Client) AssignedProjects(ctx context.Context) ([]approval.Project, error) {
	var projects []approval.Project
	if err := c.get(ctx, "/api/projects/assigned", nil, &projects); err != nil {
		return nil, fmt.Errorf("fetch assigned projects: %w", err)
	}
	return projects, nil
}

// ProjectsForUser lists the projects where username holds the given
// role.
func (c *Client) ProjectsForUser(ctx context.Context, username string, role approval.Role) ([]approval.Project, error) {
	query := url.Values{}
	query.Set("role", string(role))

	var projects []approval.Project
	path := "/api/projects/assigned-to-user/" + url.PathEscape(username)
	if err := c.get(ctx, path, query, &projects); err != nil {
		return nil, fmt.Errorf("fetch projects for user: %w", err)
	}
	return projects, nil
}

// L2ValidationProjects lists projects awaiting L2 review.
func (c *Client) L2ValidationProjects(ctx context.Context) ([]approval.Project, error) {
	var projects []approval.Project
	if err := c.get(ctx, "/api/projects/l2-validation", nil, &projects); err != nil {
		return nil, fmt.Errorf("fetch l2 validation projects: %w", err)
	}
	return projects, nil
}

// ReviewProject submits the L2 approve/disapprove decision for a
// project.
func (c *Client) ReviewProject(ctx context.Context, id int64, approved bool) error {
	query := url.Values{}
	query.Set("isApproved", strconv.FormatBool(approved))

	path := fmt.Sprintf("/api/projects/review/%d", id)
	if err := c.putJSON(ctx, path, query, nil); err != nil {
		return fmt.Errorf("review project: %w", err)
	}
	return nil
}

type createProjectRequest struct {
	ProjectName        string             `json:"projectName"`
	ProjectDescription string             `json:"projectDescription"`
	StakeholderID      int64              `json:"stakeholderId"`
	RoleAssignments    map[string][]int64 `json:"roleAssignments"`
}

// CreateProject registers a new project with its per-role user
// assignments. The first assigned Stakeholder becomes the owning
// stakeholder.
func (c *Client) CreateProject(ctx context.Context, name, description string, assignments map[approval.Role][]int64) error {
	stakeholders := assignments[approval.RoleStakeholder]
	if len(stakeholders) == 0 {
		return fmt.Errorf("create project: no stakeholder assigned")
	}

	roleAssignments := make(map[string][]int64, len(assignments))
	for role, ids := range assignments {
		roleAssignments[string(role)] = ids
	}

	err := c.postJSON(ctx, "/api/projects/create", createProjectRequest{
		ProjectName:        name,
		ProjectDescription: description,
		StakeholderID:      stakeholders[0],
		RoleAssignments:    roleAssignments,
	}, false, nil)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

type updateTeamRequest struct {
	L2 []int64 `json:"L2"`
	L3 []int64 `json:"L3"`
}

// UpdateProjectTeam replaces a project's optional L2/L3 assignments.
func (c *Client) UpdateProjectTeam(ctx context.Context, id int64, l2, l3 []int64) error {
	reader, err := jsonBody(updateTeamRequest{L2: l2, L3: l3})
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/api/projects/update/%d", id)
	req := request{method: "PUT", path: path, body: reader, contentType: "application/json"}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("update project team: %w", err)
	}
	return nil
}

// ContractorProjects lists the projects the given contractor belongs
// to; callers use the first project's stakeholder for the shared
// document repository.
func (c *Client) ContractorProjects(ctx context.Context, contractorUsername string) ([]approval.Project, error) {
	var projects []approval.Project
	path := "/api/projects/contractor/" + url.PathEscape(contractorUsername)
	if err := c.get(ctx, path, nil, &projects); err != nil {
		return nil, fmt.Errorf("fetch contractor projects: %w", err)
	}
	return projects, nil
}
