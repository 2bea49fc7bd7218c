package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/CrestNiraj12/scrollfeed/domain"
)

type stubPosts struct {
	mu     sync.Mutex
	posts  map[int]domain.Post
	fail   map[int]error
	calls  []int
	block  chan struct{} // When set, FetchPost waits on it
	signal chan struct{} // When set, receives one value per call
}

func (s *stubPosts) FetchPost(ctx context.Context, id int) (domain.Post, error) {
	s.mu.Lock()
	s.calls = append(s.calls, id)
	block, signal := s.block, s.signal
	s.mu.Unlock()
	if signal != nil {
		signal <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err, ok := s.fail[id]; ok {
		return domain.Post{}, err
	}
	p, ok := s.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (s *stubPosts) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type stubAuthors struct {
	mu    sync.Mutex
	names map[int]string
	fail  map[int]error
	calls map[int]int
}

func (s *stubAuthors) FetchAuthor(_ context.Context, id int) (domain.Author, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[int]int)
	}
	s.calls[id]++
	if err, ok := s.fail[id]; ok {
		return domain.Author{}, err
	}
	return domain.Author{ID: id, Username: s.names[id]}, nil
}

func (s *stubAuthors) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func makePosts(from, to int, authorOf func(id int) int) map[int]domain.Post {
	out := make(map[int]domain.Post, to-from)
	for id := from; id < to; id++ {
		out[id] = domain.Post{
			ID:       id,
			AuthorID: authorOf(id),
			Title:    fmt.Sprintf("title %d", id),
			Content:  fmt.Sprintf("body %d", id),
		}
	}
	return out
}

func TestFetchNextPage_AppendsPostsWithResolvedAuthors(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 6, func(id int) int { return 1 + id%2 })}
	authors := &stubAuthors{names: map[int]string{1: "bret", 2: "antonette"}}
	c := New(posts, authors)

	out, err := c.FetchNextPage(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if out.Appended != 5 || out.Cursor != 6 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	st := c.Snapshot()
	if st.Loading || st.HasError {
		t.Fatalf("expected idle healthy state: %+v", st)
	}
	for i, p := range st.Posts {
		if p.ID != i+1 {
			t.Fatalf("source order not preserved at %d: got id %d", i, p.ID)
		}
		want := "antonette"
		if p.AuthorID == 1 {
			want = "bret"
		}
		if p.AuthorUsername != want {
			t.Fatalf("post %d: got author %q want %q", p.ID, p.AuthorUsername, want)
		}
	}
	if len(st.Authors) != 2 {
		t.Fatalf("expected two resolved authors, got %d", len(st.Authors))
	}
}

func TestFetchNextPage_CursorAdvancesByPageSize(t *testing.T) {
	posts := &stubPosts{
		posts: makePosts(10, 30, func(int) int { return 1 }),
		fail:  map[int]error{},
	}
	// Holes inside pages must not change the cursor arithmetic.
	delete(posts.posts, 12)
	delete(posts.posts, 18)
	authors := &stubAuthors{names: map[int]string{1: "bret"}}
	c := New(posts, authors, WithStartID(10), WithPageSize(4))

	for n := 1; n <= 4; n++ {
		if _, err := c.FetchNextPage(context.Background()); err != nil {
			t.Fatalf("page %d failed: %v", n, err)
		}
		if got, want := c.Snapshot().Cursor, 10+n*4; got != want {
			t.Fatalf("after %d pages cursor=%d want %d", n, got, want)
		}
	}
	if got := len(c.Snapshot().Posts); got != 14 {
		t.Fatalf("expected 14 posts after skipping two holes, got %d", got)
	}
}

func TestFetchNextPage_DuplicateAuthorFetchedOnce(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 11, func(int) int { return 7 })}
	authors := &stubAuthors{names: map[int]string{7: "kamren"}}
	c := New(posts, authors)

	for range 2 {
		if _, err := c.FetchNextPage(context.Background()); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
	}
	if authors.calls[7] != 1 || authors.total() != 1 {
		t.Fatalf("expected exactly one author fetch for id 7, got %v", authors.calls)
	}
	for _, p := range c.Snapshot().Posts {
		if p.AuthorUsername != "kamren" {
			t.Fatalf("post %d missing author: %+v", p.ID, p)
		}
	}
}

func TestFetchNextPage_PagesAppendInFetchOrder(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 11, func(id int) int { return id })}
	authors := &stubAuthors{names: map[int]string{}}
	c := New(posts, authors)

	_, _ = c.FetchNextPage(context.Background())
	_, _ = c.FetchNextPage(context.Background())

	st := c.Snapshot()
	if len(st.Posts) != 10 {
		t.Fatalf("expected 10 posts, got %d", len(st.Posts))
	}
	for i := 1; i < len(st.Posts); i++ {
		if st.Posts[i-1].ID >= st.Posts[i].ID {
			t.Fatalf("display list out of order at %d: %d then %d", i, st.Posts[i-1].ID, st.Posts[i].ID)
		}
	}
}

func TestFetchNextPage_EmptyPageHaltsAndAdvancesCursor(t *testing.T) {
	posts := &stubPosts{posts: map[int]domain.Post{}}
	authors := &stubAuthors{}
	c := New(posts, authors, WithStartID(101))

	out, err := c.FetchNextPage(context.Background())
	if !errors.Is(err, domain.ErrFeedExhausted) {
		t.Fatalf("expected exhausted error, got %v", err)
	}
	st := c.Snapshot()
	if !st.HasError || st.Loading {
		t.Fatalf("expected halted idle state: %+v", st)
	}
	if st.Cursor != 106 || out.Cursor != 106 {
		t.Fatalf("cursor must still advance, got %d", st.Cursor)
	}
	if len(st.Posts) != 0 || out.Skipped != 5 {
		t.Fatalf("no posts expected: %+v", out)
	}
	if authors.total() != 0 {
		t.Fatalf("no author requests expected for an empty page")
	}
}

func TestFetchNextPage_PostFailureKeepsSiblingsAndHalts(t *testing.T) {
	posts := &stubPosts{
		posts: makePosts(1, 6, func(int) int { return 1 }),
		fail:  map[int]error{3: errors.New("connection reset")},
	}
	authors := &stubAuthors{names: map[int]string{1: "bret"}}
	c := New(posts, authors)

	out, err := c.FetchNextPage(context.Background())
	if err == nil {
		t.Fatalf("expected degraded page error")
	}
	if posts.callCount() != 5 {
		t.Fatalf("sibling requests must not be aborted, got %d calls", posts.callCount())
	}
	st := c.Snapshot()
	if !st.HasError {
		t.Fatalf("post failure must set the sticky error")
	}
	if out.Appended != 4 || len(st.Posts) != 4 {
		t.Fatalf("surviving posts must be appended: %+v", out)
	}
	for _, p := range st.Posts {
		if p.ID == 3 {
			t.Fatalf("failed id must not be appended")
		}
	}
}

func TestFetchNextPage_AuthorFailureAbortsMerge(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 6, func(id int) int { return id })}
	authors := &stubAuthors{
		names: map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"},
		fail:  map[int]error{4: errors.New("boom")},
	}
	c := New(posts, authors)

	out, err := c.FetchNextPage(context.Background())
	if err == nil {
		t.Fatalf("expected author failure")
	}
	st := c.Snapshot()
	if !st.HasError || st.Loading {
		t.Fatalf("expected halted idle state: %+v", st)
	}
	if len(st.Posts) != 0 || len(st.Authors) != 0 || out.Appended != 0 {
		t.Fatalf("nothing may be merged after an author failure: %+v", st)
	}
	if st.Cursor != 6 {
		t.Fatalf("cursor advances before author resolution, got %d", st.Cursor)
	}
}

func TestFetchNextPage_UnmatchedAuthorLeavesUsernameAbsent(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 3, func(int) int { return 9 })}
	authors := &authorWithWrongID{}
	c := New(posts, authors, WithPageSize(2))

	if _, err := c.FetchNextPage(context.Background()); err != nil {
		t.Fatalf("unmatched author is not an error: %v", err)
	}
	for _, p := range c.Snapshot().Posts {
		if p.HasAuthor() {
			t.Fatalf("expected absent username, got %q", p.AuthorUsername)
		}
	}
}

func TestFetchNextPage_MissingAuthorIDNotRequested(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 5, func(id int) int {
		if id == 2 {
			return 4
		}
		return 0
	})}
	authors := &stubAuthors{names: map[int]string{4: "delphine"}}
	c := New(posts, authors, WithPageSize(4))

	if _, err := c.FetchNextPage(context.Background()); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if authors.calls[0] != 0 || authors.total() != 1 {
		t.Fatalf("expected only author 4 requested, got %v", authors.calls)
	}
	for _, p := range c.Snapshot().Posts {
		if p.ID == 2 && p.AuthorUsername != "delphine" {
			t.Fatalf("post 2 missing author: %+v", p)
		}
		if p.ID != 2 && p.HasAuthor() {
			t.Fatalf("post %d without author id got %q", p.ID, p.AuthorUsername)
		}
	}
}

type authorWithWrongID struct{}

func (authorWithWrongID) FetchAuthor(_ context.Context, id int) (domain.Author, error) {
	return domain.Author{ID: id + 1000, Username: "ghost"}, nil
}

func TestHalted_NoFurtherRequests(t *testing.T) {
	posts := &stubPosts{posts: map[int]domain.Post{}}
	authors := &stubAuthors{}
	c := New(posts, authors)

	_, _ = c.FetchNextPage(context.Background())
	before := posts.callCount()

	if _, err := c.FetchNextPage(context.Background()); !errors.Is(err, ErrHalted) {
		t.Fatalf("expected ErrHalted, got %v", err)
	}
	if _, ok := c.MaybeFetchNextPage(Viewport{Height: 10, ScrollTop: 0, ContentHeight: 5}); ok {
		t.Fatalf("halted feed must not start a fetch")
	}
	if posts.callCount() != before {
		t.Fatalf("halted feed issued %d extra requests", posts.callCount()-before)
	}
}

func TestMaybeFetchNextPage_OnlyAtBottom(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 6, func(int) int { return 1 })}
	authors := &stubAuthors{names: map[int]string{1: "bret"}}
	c := New(posts, authors)

	if _, ok := c.MaybeFetchNextPage(Viewport{Height: 10, ScrollTop: 0, ContentHeight: 40}); ok {
		t.Fatalf("fetch must not fire away from the bottom")
	}
	if c.Snapshot().Loading {
		t.Fatalf("loading must stay false when nothing fired")
	}

	bottom := Viewport{Height: 10, ScrollTop: 30, ContentHeight: 40}
	ticket, ok := c.MaybeFetchNextPage(bottom)
	if !ok {
		t.Fatalf("fetch must fire at the bottom")
	}
	if _, again := c.MaybeFetchNextPage(bottom); again {
		t.Fatalf("second trigger while loading must be suppressed")
	}
	if !c.Snapshot().Loading {
		t.Fatalf("expected loading after claiming the slot")
	}
	out := c.Run(context.Background(), ticket)
	if out.Err != nil || out.Appended != 5 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if posts.callCount() != 5 {
		t.Fatalf("expected exactly one page of requests, got %d", posts.callCount())
	}
}

func TestBegin_ConcurrentTriggersClaimOnce(t *testing.T) {
	c := New(&stubPosts{}, &stubAuthors{})

	var wg sync.WaitGroup
	var mu sync.Mutex
	claimed := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Begin(); ok {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if claimed != 1 {
		t.Fatalf("expected exactly one claim, got %d", claimed)
	}
}

func TestRun_StaleTicketRejected(t *testing.T) {
	posts := &stubPosts{posts: makePosts(1, 6, func(int) int { return 1 })}
	c := New(posts, &stubAuthors{names: map[int]string{1: "bret"}})

	first, _ := c.Begin()
	c.Run(context.Background(), first)

	out := c.Run(context.Background(), first)
	if !errors.Is(out.Err, ErrStaleTicket) {
		t.Fatalf("expected stale ticket error, got %v", out.Err)
	}
	if got := c.Snapshot().Cursor; got != 6 {
		t.Fatalf("stale run must not move the cursor, got %d", got)
	}
	if posts.callCount() != 5 {
		t.Fatalf("stale run must not issue requests")
	}
}

func TestFetchNextPage_BusyWhileInFlight(t *testing.T) {
	posts := &stubPosts{
		posts:  makePosts(1, 6, func(int) int { return 1 }),
		block:  make(chan struct{}),
		signal: make(chan struct{}, 5),
	}
	c := New(posts, &stubAuthors{names: map[int]string{1: "bret"}})

	done := make(chan error, 1)
	go func() {
		_, err := c.FetchNextPage(context.Background())
		done <- err
	}()
	<-posts.signal

	if _, err := c.FetchNextPage(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(posts.block)
	if err := <-done; err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if c.Snapshot().Loading {
		t.Fatalf("loading must clear after completion")
	}
}
