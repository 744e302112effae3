package profile

import (
	"context"
	"net/url"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Profile is a user profile as served by the API.
type Profile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	Skills       []string `json:"skills"`
	ProfileImage string   `json:"profileImage"`
}

// Update is the mutable subset of the viewer's own profile.
type Update struct {
	Name     string   `json:"name,omitempty"`
	Bio      string   `json:"bio,omitempty"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// Client wraps the profile endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a profile client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Me fetches the viewer's own profile.
func (c *Client) Me(ctx context.Context) (Profile, error) {
	var p Profile
	if err := c.api.Get(ctx, "/api/profile", &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Get fetches another user's public profile.
func (c *Client) Get(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	if err := c.api.Get(ctx, "/api/users/"+url.PathEscape(userID), &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// UpdateMe applies changes to the viewer's own profile.
func (c *Client) UpdateMe(ctx context.Context, u Update) (Profile, error) {
	var p Profile
	if err := c.api.Put(ctx, "/api/profile", u, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Search finds users by name or skill.
func (c *Client) Search(ctx context.Context, query string) ([]Profile, error) {
	var result struct {
		Users []Profile `json:"users"`
	}
	if err := c.api.Get(ctx, "/api/users/search?q="+url.QueryEscape(query), &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}
