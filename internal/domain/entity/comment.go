package entity

import "time"

// Comment is a reply attached to a published post.
type Comment struct {
	ID        string
	Body      string
	PostID    string
	AuthorID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the comment against its parent post. A comment on an
// unpublished post is a validation failure, not an authorization one.
func (c *Comment) Validate(parent *Post) error {
	v := NewValidationError()
	if c.Body == "" {
		v.Add("body", "is required")
	}
	if c.AuthorID == "" {
		v.Add("author_id", "is required")
	}
	if parent == nil {
		v.Add("post", "is required")
	} else if !parent.Published {
		v.Add("post", "must be published to accept comments")
	}
	return v.OrNil()
}
