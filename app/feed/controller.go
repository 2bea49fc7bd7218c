package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/iter"
	"github.com/sourcegraph/conc/pool"

	"github.com/CrestNiraj12/scrollfeed/app"
	"github.com/CrestNiraj12/scrollfeed/domain"
)

const (
	DefaultPageSize = 5
	DefaultStartID  = 1
)

var (
	// ErrBusy is returned when a page fetch is already in flight.
	ErrBusy = errors.New("feed: fetch already in flight")

	// ErrHalted is returned once the feed hit a terminal condition.
	ErrHalted = errors.New("feed: halted")

	// ErrStaleTicket is returned when Run is called with a ticket that does
	// not own the in-flight slot.
	ErrStaleTicket = errors.New("feed: stale ticket")
)

// Ticket is the in-flight token handed out by Begin. Only the holder of the
// current ticket may run a fetch.
type Ticket struct {
	Seq    uint64
	Cursor int
}

// Viewport describes the scroll position of the rendered feed, in lines.
type Viewport struct {
	Height        int
	ScrollTop     int
	ContentHeight int
}

// AtBottom reports whether the visible window reaches the end of the content.
func (v Viewport) AtBottom() bool {
	return v.Height+v.ScrollTop >= v.ContentHeight
}

// State is the session state of the feed. HasError is sticky.
type State struct {
	Cursor   int
	PageSize int
	Loading  bool
	HasError bool
	Posts    []domain.Post
	Authors  []domain.Author
	Err      error  // First terminal cause; never shown to the user
	Version  uint64 // Bumped on every transition
}

// Outcome summarises one page fetch.
type Outcome struct {
	Ticket     Ticket
	IDs        []int
	Appended   int
	Skipped    int // Empty or failed ids
	NewAuthors []int
	Cursor     int // Cursor after the fetch
	Err        error
}

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets how many post ids are requested per page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.state.PageSize = n
		}
	}
}

// WithStartID sets the first post id to fetch.
func WithStartID(id int) Option {
	return func(c *Controller) {
		if id >= 0 {
			c.state.Cursor = id
		}
	}
}

// WithLogger sets the logger used for fetch failures and page summaries.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller owns the feed state and is the only place it changes.
// It is safe for concurrent use.
type Controller struct {
	posts   app.PostService
	authors app.AuthorService
	logger  *slog.Logger

	mu        sync.Mutex
	state     State
	authorIdx map[int]int // author id -> index into state.Authors
	seq       uint64
	inflight  uint64 // Seq of the running ticket, 0 when idle
}

// New creates a controller backed by the given services.
func New(posts app.PostService, authors app.AuthorService, opts ...Option) *Controller {
	c := &Controller{
		posts:   posts,
		authors: authors,
		logger:  slog.New(slog.DiscardHandler),
		state: State{
			Cursor:   DefaultStartID,
			PageSize: DefaultPageSize,
		},
		authorIdx: make(map[int]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Posts = append([]domain.Post(nil), c.state.Posts...)
	s.Authors = append([]domain.Author(nil), c.state.Authors...)
	return s
}

// Version returns the state version without copying the state.
func (c *Controller) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Version
}

// Begin claims the in-flight slot. It fails while a fetch is running or
// after the feed halted.
func (c *Controller) Begin() (Ticket, bool) {
	t, err := c.begin()
	return t, err == nil
}

func (c *Controller) begin() (Ticket, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.HasError {
		return Ticket{}, ErrHalted
	}
	if c.state.Loading || c.inflight != 0 {
		return Ticket{}, ErrBusy
	}
	c.seq++
	c.inflight = c.seq
	c.state.Loading = true
	c.state.Version++
	return Ticket{Seq: c.seq, Cursor: c.state.Cursor}, nil
}

// MaybeFetchNextPage claims the in-flight slot when the viewport reached
// the bottom and the feed is idle and healthy.
func (c *Controller) MaybeFetchNextPage(vp Viewport) (Ticket, bool) {
	if !vp.AtBottom() {
		return Ticket{}, false
	}
	return c.Begin()
}

// FetchNextPage claims the slot and runs one page fetch to completion.
func (c *Controller) FetchNextPage(ctx context.Context) (Outcome, error) {
	t, err := c.begin()
	if err != nil {
		return Outcome{}, err
	}
	out := c.Run(ctx, t)
	return out, out.Err
}

// Run fetches the page claimed by t, resolves unknown authors and appends
// the posts. Loading is cleared on return whatever happens.
func (c *Controller) Run(ctx context.Context, t Ticket) Outcome {
	out := Outcome{Ticket: t}

	c.mu.Lock()
	if t.Seq == 0 || t.Seq != c.inflight {
		out.Cursor = c.state.Cursor
		c.mu.Unlock()
		out.Err = ErrStaleTicket
		return out
	}
	cursor, size := c.state.Cursor, c.state.PageSize
	c.mu.Unlock()
	defer c.finish(t)

	out.IDs = Range(cursor, cursor+size)
	posts, pageErr := c.fetchPage(ctx, out.IDs)
	out.Skipped = len(out.IDs) - len(posts)

	c.mu.Lock()
	if pageErr != nil {
		c.haltLocked(pageErr)
		out.Err = pageErr
	}
	if len(posts) == 0 {
		c.haltLocked(domain.ErrFeedExhausted)
		if out.Err == nil {
			out.Err = domain.ErrFeedExhausted
		}
	}
	c.state.Cursor = cursor + size
	c.state.Version++
	out.Cursor = c.state.Cursor
	missing := c.missingAuthorsLocked(posts)
	c.mu.Unlock()

	authors, err := c.fetchAuthors(ctx, missing)
	if err != nil {
		c.logger.Error("author resolution failed", "cursor", cursor, "err", err)
		c.mu.Lock()
		c.haltLocked(err)
		c.mu.Unlock()
		out.Err = err
		return out
	}

	c.mu.Lock()
	for _, a := range authors {
		if _, ok := c.authorIdx[a.ID]; ok {
			continue
		}
		c.authorIdx[a.ID] = len(c.state.Authors)
		c.state.Authors = append(c.state.Authors, a)
		out.NewAuthors = append(out.NewAuthors, a.ID)
	}
	for _, p := range posts {
		if i, ok := c.authorIdx[p.AuthorID]; ok {
			p.AuthorUsername = c.state.Authors[i].Username
		}
		c.state.Posts = append(c.state.Posts, p)
	}
	out.Appended = len(posts)
	c.state.Version++
	c.mu.Unlock()

	c.logger.Info("page fetched",
		"from", cursor,
		"size", size,
		"appended", out.Appended,
		"skipped", out.Skipped,
		"new_authors", len(out.NewAuthors),
	)
	return out
}

func (c *Controller) finish(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight == t.Seq {
		c.inflight = 0
	}
	c.state.Loading = false
	c.state.Version++
}

func (c *Controller) haltLocked(err error) {
	if !c.state.HasError {
		c.logger.Warn("feed halted", "err", err)
	}
	c.state.HasError = true
	if c.state.Err == nil {
		c.state.Err = err
	}
}

type postResult struct {
	post domain.Post
	err  error
}

// fetchPage requests every id concurrently. Empty records are dropped; a
// failed request is logged and dropped without cancelling its siblings.
// The returned error is the first failure in id order.
func (c *Controller) fetchPage(ctx context.Context, ids []int) ([]domain.Post, error) {
	mapper := iter.Mapper[int, postResult]{MaxGoroutines: len(ids)}
	results := mapper.Map(ids, func(id *int) postResult {
		p, err := c.posts.FetchPost(ctx, *id)
		return postResult{post: p, err: err}
	})

	var firstErr error
	posts := make([]domain.Post, 0, len(results))
	for i, r := range results {
		switch {
		case errors.Is(r.err, domain.ErrNotFound):
			continue
		case r.err != nil:
			c.logger.Warn("post fetch failed", "id", ids[i], "err", r.err)
			if firstErr == nil {
				firstErr = fmt.Errorf("fetching post %d: %w", ids[i], r.err)
			}
			continue
		}
		posts = append(posts, r.post)
	}
	return posts, firstErr
}

// missingAuthorsLocked returns the distinct author ids referenced by posts
// that are not resolved yet, in first-seen order. Ids <= 0 are never
// requested: the API has no such user, and a post without a usable author
// id renders as unknown either way.
func (c *Controller) missingAuthorsLocked(posts []domain.Post) []int {
	seen := make(map[int]struct{}, len(posts))
	var ids []int
	for _, p := range posts {
		id := p.AuthorID
		if id <= 0 {
			continue
		}
		if _, ok := c.authorIdx[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// fetchAuthors resolves ids concurrently. The first failure cancels the
// remaining requests.
func (c *Controller) fetchAuthors(ctx context.Context, ids []int) ([]domain.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	p := pool.NewWithResults[domain.Author]().
		WithContext(ctx).
		WithFirstError().
		WithCancelOnError()
	for _, id := range ids {
		p.Go(func(ctx context.Context) (domain.Author, error) {
			a, err := c.authors.FetchAuthor(ctx, id)
			if err != nil {
				return domain.Author{}, fmt.Errorf("fetching author %d: %w", id, err)
			}
			return a, nil
		})
	}
	return p.Wait()
}
