package chat

import (
	"context"
	"net/url"
	"time"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Conversation is one thread between the viewer and a counterpart.
type Conversation struct {
	ID          string    `json:"id"`
	WithUserID  string    `json:"withUserId"`
	WithName    string    `json:"withName"`
	LastMessage string    `json:"lastMessage"`
	LastAt      time.Time `json:"lastAt"`
	Unread      int       `json:"unread"`
}

// Message is a single direct message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	FromUserID     string    `json:"fromUserId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Client wraps the direct-messaging endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a chat client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Conversations lists the viewer's threads, most recent first.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	var result struct {
		Conversations []Conversation `json:"conversations"`
	}
	if err := c.api.Get(ctx, "/api/chat/conversations", &result); err != nil {
		return nil, err
	}
	return result.Conversations, nil
}

// Messages lists a thread's messages, oldest first.
func (c *Client) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	var result struct {
		Messages []Message `json:"messages"`
	}
	if err := c.api.Get(ctx, "/api/chat/messages/"+url.PathEscape(conversationID), &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

type sendRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	RecipientID    string `json:"recipientId,omitempty"`
	Text           string `json:"text"`
}

// Send posts a message into an existing thread.
func (c *Client) Send(ctx context.Context, conversationID, text string) (Message, error) {
	return c.send(ctx, sendRequest{ConversationID: conversationID, Text: text})
}

// SendTo posts a message to a user, creating the thread if needed.
func (c *Client) SendTo(ctx context.Context, recipientID, text string) (Message, error) {
	return c.send(ctx, sendRequest{RecipientID: recipientID, Text: text})
}

func (c *Client) send(ctx context.Context, req sendRequest) (Message, error) {
	var m Message
	if err := c.api.Post(ctx, "/api/chat/messages", req, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// UnreadCount sums unread messages across threads.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	convs, err := c.Conversations(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, conv := range convs {
		total += conv.Unread
	}
	return total, nil
}
