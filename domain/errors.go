package domain

import "errors"

var (
	// ErrNotFound indicates the API answered with an empty object.
	ErrNotFound = errors.New("not found")

	// ErrFeedExhausted indicates a page produced no posts.
	ErrFeedExhausted = errors.New("no more posts")
)
