package app

import (
	"context"

	"github.com/CrestNiraj12/scrollfeed/domain"
)

// PostService fetches single posts by id.
type PostService interface {
	// FetchPost returns the post with the given id, or domain.ErrNotFound
	// when the backend answers with an empty record.
	FetchPost(ctx context.Context, id int) (domain.Post, error)
}

// AuthorService resolves post authors.
type AuthorService interface {
	FetchAuthor(ctx context.Context, id int) (domain.Author, error)
}
