package friends

import (
	"context"
	"net/url"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Decision is the recipient's answer to a received request.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Client wraps the friends endpoints of the platform API.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a friends API client over the base client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Lists fetches the viewer's three relationship lists in one call.
func (c *Client) Lists(ctx context.Context) (Lists, error) {
	var l Lists
	if err := c.api.Get(ctx, "/api/friends", &l); err != nil {
		return Lists{}, err
	}
	return l, nil
}

// Send creates a pending request to userID. The created request ID is
// returned when the server includes it, "" otherwise.
func (c *Client) Send(ctx context.Context, userID string) (string, error) {
	body := map[string]string{"userId": userID}
	var resp struct {
		Message string `json:"message"`
		Request struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
		} `json:"request"`
	}
	if err := c.api.Post(ctx, "/api/friends", body, &resp); err != nil {
		return "", err
	}
	if resp.Request.ID != "" {
		return resp.Request.ID, nil
	}
	return resp.Request.MongoID, nil
}

// CancelByID deletes a pending sent request by its record ID.
func (c *Client) CancelByID(ctx context.Context, requestID string) error {
	return c.api.Post(ctx, "/api/friends/cancel", map[string]string{"requestId": requestID}, nil)
}

// CancelByTarget deletes the pending sent request addressed to targetUserID,
// for callers that never learned the record ID.
func (c *Client) CancelByTarget(ctx context.Context, targetUserID string) error {
	return c.api.Post(ctx, "/api/friends/cancel-request", map[string]string{"targetUserId": targetUserID}, nil)
}

// Respond accepts or rejects a received request. The primary route is
// PUT /api/friends; older deployments only expose POST /api/friends/respond
// with a status vocabulary, so that is the fallback when the primary route
// is missing.
func (c *Client) Respond(ctx context.Context, requestID string, d Decision) error {
	body := map[string]string{"requestId": requestID, "action": string(d)}
	err := c.api.Put(ctx, "/api/friends", body, nil)
	if err == nil || !apiclient.IsNotFound(err) {
		return err
	}

	status := "accepted"
	if d == DecisionReject {
		status = "rejected"
	}
	fallback := map[string]string{"requestId": requestID, "status": status}
	return c.api.Post(ctx, "/api/friends/respond", fallback, nil)
}

// Unfriend removes the accepted edge with friendID. Always authenticated.
func (c *Client) Unfriend(ctx context.Context, friendID string) error {
	return c.api.Post(ctx, "/api/friends/unfriend", map[string]string{"friendId": friendID}, nil)
}

// CheckFriend asks the server directly whether userID is a friend.
func (c *Client) CheckFriend(ctx context.Context, userID string) (bool, error) {
	var resp struct {
		IsFriend bool `json:"isFriend"`
	}
	if err := c.api.Get(ctx, "/api/friends/check/"+url.PathEscape(userID), &resp); err != nil {
		return false, err
	}
	return resp.IsFriend, nil
}
