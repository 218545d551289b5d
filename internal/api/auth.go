package api

import (
	"context"
	"fmt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	EmailID  string `json:"emailId"`
	Role     string `json:"role"`
}

// Login authenticates against the server and returns the issued
// bearer token. The envelope's data field is the token string itself.
func (c *Client) Login(ctx context.Context, username, password, role string) (string, error) {
	var token string
	err := c.postJSON(ctx, "/api/auth/login", loginRequest{
		Username: username,
		Password: password,
		Role:     role,
	}, true, &token)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("login: server returned an empty credential")
	}
	return token, nil
}

// Register creates a new account. The account stays unusable until a
// Super Admin approves it.
func (c *Client) Register(ctx context.Context, username, password, emailID, role string) error {
	err := c.postJSON(ctx, "/api/auth/register", registerRequest{
		Username: username,
		Password: password,
		EmailID:  emailID,
		Role:     role,
	}, true, nil)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}
