package api

import (
	"context"
	"fmt"

	"github.com/activus-tech/tdsctl/internal/core/approval"
)

// PendingUsers lists accounts awaiting Super Admin approval. This
// endpoint answers with a bare array rather than the usual envelope.
func (c *Client) PendingUsers(ctx context.Context) ([]approval.User, error) {
	var users []approval.User
	if err := c.get(ctx, "/api/superadmin/pending-users", nil, &users); err != nil {
		return nil, fmt.Errorf("fetch pending users: %w", err)
	}
	return users, nil
}

type approveUserRequest struct {
	UserID  int64 `json:"userId"`
	Approve bool  `json:"approve"`
}

// ApproveUser accepts (true) or rejects (false) a pending account.
func (c *Client) ApproveUser(ctx context.Context, userID int64, approve bool) error {
	err := c.postJSON(ctx, "/api/superadmin/approve-user", approveUserRequest{
		UserID:  userID,
		Approve: approve,
	}, false, nil)
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return nil
}
