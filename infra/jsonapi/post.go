package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CrestNiraj12/scrollfeed/domain"
)

// postService implements app.PostService over GET /posts/{id}.
type postService struct {
	client *Client
}

// NewPostService creates a PostService backed by the JSON API.
func NewPostService(client *Client) *postService {
	return &postService{client: client}
}

// apiPost is the subset of the post record we care about.
type apiPost struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func (s *postService) FetchPost(ctx context.Context, id int) (domain.Post, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("/posts/%d", id))
	if err != nil {
		return domain.Post{}, fmt.Errorf("fetching post: %w", err)
	}
	empty, err := domain.IsEmptyJSON(data)
	if err != nil {
		return domain.Post{}, fmt.Errorf("parsing post %d: %w", id, err)
	}
	if empty {
		return domain.Post{}, domain.ErrNotFound
	}

	var p apiPost
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Post{}, fmt.Errorf("parsing post: %w", err)
	}
	if p.ID == 0 {
		p.ID = id
	}

	return domain.Post{
		ID:       p.ID,
		AuthorID: p.UserID,
		Title:    sanitizeForTerminal(p.Title),
		Content:  sanitizeForTerminal(p.Body),
	}, nil
}
