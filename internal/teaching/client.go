package teaching

import (
	"context"
	"net/url"
	"time"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// SessionStatus is the lifecycle status of a teaching session request.
type SessionStatus string

const (
	StatusPending   SessionStatus = "pending"
	StatusAccepted  SessionStatus = "accepted"
	StatusRejected  SessionStatus = "rejected"
	StatusCompleted SessionStatus = "completed"
)

// Session is a request for one user to teach another a skill.
type Session struct {
	ID            string        `json:"id"`
	FromUserID    string        `json:"fromUserId"`
	ToUserID      string        `json:"toUserId"`
	Skill         string        `json:"skill"`
	PreferredTime string        `json:"preferredTime"`
	Status        SessionStatus `json:"status"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Client wraps the teaching-session endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a teaching client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

type createSession struct {
	ToUserID      string `json:"toUserId"`
	Skill         string `json:"skill"`
	PreferredTime string `json:"preferredTime,omitempty"`
}

// Request asks toUserID for a session on skill.
func (c *Client) Request(ctx context.Context, toUserID, skill, preferredTime string) (Session, error) {
	var s Session
	body := createSession{ToUserID: toUserID, Skill: skill, PreferredTime: preferredTime}
	if err := c.api.Post(ctx, "/api/sessions", body, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// List fetches the viewer's sessions, both directions.
func (c *Client) List(ctx context.Context) ([]Session, error) {
	var result struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.api.Get(ctx, "/api/sessions", &result); err != nil {
		return nil, err
	}
	return result.Sessions, nil
}

// SetStatus moves a session to accepted, rejected or completed.
func (c *Client) SetStatus(ctx context.Context, sessionID string, status SessionStatus) error {
	body := map[string]string{"status": string(status)}
	return c.api.Put(ctx, "/api/sessions/"+url.PathEscape(sessionID), body, nil)
}
