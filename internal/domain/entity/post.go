package entity

import (
	"time"
	"unicode/utf8"
)

// TitleMinLen is the minimum post title length in characters.
const TitleMinLen = 5

// Post is the aggregate root for the blog domain. The Published flag is
// only mutated through the publish service; comments hang off a post and
// are removed with it.
type Post struct {
	ID        string
	Title     string
	Body      string
	Published bool
	CoverURL  string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the post invariants and returns a *ValidationError
// listing every violated field, or nil.
func (p *Post) Validate() error {
	v := NewValidationError()
	if utf8.RuneCountInString(p.Title) < TitleMinLen {
		v.Add("title", "must be at least 5 characters long")
	}
	if p.Body == "" {
		v.Add("body", "is required")
	}
	if p.AuthorID == "" {
		v.Add("author_id", "is required")
	}
	return v.OrNil()
}
