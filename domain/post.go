package domain

// Post is a single feed entry as shown in the display list.
type Post struct {
	ID             int
	AuthorID       int
	Title          string
	Content        string
	AuthorUsername string // Empty when the author could not be resolved
}

// HasAuthor reports whether the post's author username was resolved.
func (p Post) HasAuthor() bool {
	return p.AuthorUsername != ""
}

// Author is a resolved post author. Authors are fetched once per session.
type Author struct {
	ID       int
	Username string
}
