package feed

import (
	"context"
	"net/url"
	"time"

	"github.com/skillshikhi/skillshikhi-go/internal/pkg/apiclient"
)

// Post is one newsfeed entry.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	SkillTag  string    `json:"skillTag"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment is one comment under a post.
type Comment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Client wraps the newsfeed endpoints.
type Client struct {
	api *apiclient.Client
}

// NewClient creates a feed client.
func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Posts fetches the viewer's feed, newest first.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var result struct {
		Posts []Post `json:"posts"`
	}
	if err := c.api.Get(ctx, "/api/posts", &result); err != nil {
		return nil, err
	}
	return result.Posts, nil
}

type createPost struct {
	Content  string `json:"content"`
	SkillTag string `json:"skillTag,omitempty"`
}

// Create publishes a new post.
func (c *Client) Create(ctx context.Context, content, skillTag string) (Post, error) {
	var p Post
	if err := c.api.Post(ctx, "/api/posts", createPost{Content: content, SkillTag: skillTag}, &p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// ToggleLike flips the viewer's like on a post and returns the new count.
func (c *Client) ToggleLike(ctx context.Context, postID string) (int, error) {
	var resp struct {
		Likes int  `json:"likes"`
		Liked bool `json:"liked"`
	}
	if err := c.api.Post(ctx, "/api/posts/"+url.PathEscape(postID)+"/like", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Likes, nil
}

// AddComment appends a comment under a post.
func (c *Client) AddComment(ctx context.Context, postID, text string) (Comment, error) {
	var comment Comment
	body := map[string]string{"text": text}
	if err := c.api.Post(ctx, "/api/posts/"+url.PathEscape(postID)+"/comments", body, &comment); err != nil {
		return Comment{}, err
	}
	return comment, nil
}

// Delete removes the viewer's own post.
func (c *Client) Delete(ctx context.Context, postID string) error {
	return c.api.Delete(ctx, "/api/posts/"+url.PathEscape(postID), nil)
}
