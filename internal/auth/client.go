package auth

import (
	"context"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
	"github.com/skillshikhi/skillshikhi-go/internal/session"
)

// Client wraps the login endpoints. Token issuance itself is the server's
// concern; this only exchanges credentials for a token and hands it to the
// session supplier.
type Client struct {
	api     *apiclient.Client
	session *session.Supplier
}

// NewClient creates an auth client.
func NewClient(api *apiclient.Client, s *session.Supplier) *Client {
	return &Client{api: api, session: s}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
}

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp loginResponse
	if err := c.api.PostPublic(ctx, "/api/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	return c.session.SetToken(resp.Token)
}

// Logout clears the local session. The platform has no server-side logout;
// dropping the token is the whole operation.
func (c *Client) Logout() {
	c.session.Clear()
}
