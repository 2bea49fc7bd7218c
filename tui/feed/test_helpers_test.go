package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/CrestNiraj12/scrollfeed/app/feed"
	"github.com/CrestNiraj12/scrollfeed/domain"
)

// stubPosts serves ids up to last; later ids are empty records.
type stubPosts struct {
	mu    sync.Mutex
	last  int
	calls int
}

func (s *stubPosts) FetchPost(_ context.Context, id int) (domain.Post, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if id > s.last {
		return domain.Post{}, domain.ErrNotFound
	}
	return makePost(id, 1+id%3), nil
}

func (s *stubPosts) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubAuthors struct{}

func (stubAuthors) FetchAuthor(_ context.Context, id int) (domain.Author, error) {
	return domain.Author{ID: id, Username: fmt.Sprintf("user%d", id)}, nil
}

func makePost(id, authorID int) domain.Post {
	return domain.Post{
		ID:       id,
		AuthorID: authorID,
		Title:    fmt.Sprintf("title %d", id),
		Content:  fmt.Sprintf("body of post %d", id),
	}
}

func newTestController(last, pageSize int) (*feed.Controller, *stubPosts) {
	posts := &stubPosts{last: last}
	return feed.New(posts, stubAuthors{}, feed.WithPageSize(pageSize)), posts
}
