package jsonapi

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/CrestNiraj12/scrollfeed/domain"
)

// authorService implements app.AuthorService over GET /users/{id}.
type authorService struct {
	client *Client
}

// NewAuthorService creates an AuthorService backed by the JSON API.
func NewAuthorService(client *Client) *authorService {
	return &authorService{client: client}
}

func (s *authorService) FetchAuthor(ctx context.Context, id int) (domain.Author, error) {
	data, err := s.client.Get(ctx, fmt.Sprintf("/users/%d", id))
	if err != nil {
		return domain.Author{}, fmt.Errorf("fetching author: %w", err)
	}

	var u struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return domain.Author{}, fmt.Errorf("parsing author: %w", err)
	}
	if u.ID == 0 {
		u.ID = id
	}

	return domain.Author{
		ID:       u.ID,
		Username: sanitizeForTerminal(u.Username),
	}, nil
}
