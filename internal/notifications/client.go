package notifications

import (
	"context"
	"time"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Notification is one entry in the viewer's notification list.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // friend_request, friend_accept, message, session, like, comment
	Message   string    `json:"message"`
	FromID    string    `json:"fromId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client wraps the notifications endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a notifications client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// List fetches the viewer's notifications, newest first.
func (c *Client) List(ctx context.Context) ([]Notification, error) {
	var result struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.api.Get(ctx, "/api/notifications", &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

// MarkAllRead marks every notification read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.api.Put(ctx, "/api/notifications/read", nil, nil)
}

// UnreadCount counts unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	all, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range all {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
