package application

import (
	"context"
	"time"

	"blogpress/internal/domain/entity"
)

// View selects the field profile used when mapping a post.
type View string

const (
	ViewDefault  View = "default"
	ViewExtended View = "extended"
)

// PostView is the stable external shape of a post. Author is the owner's
// email and CommentsCount is computed at render time, never cached.
// Comments is only populated for the extended view.
type PostView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Body          string        `json:"body"`
	Published     bool          `json:"published"`
	CoverURL      string        `json:"cover_url,omitempty"`
	Author        string        `json:"author"`
	CommentsCount int           `json:"comments_count"`
	Comments      []CommentView `json:"comments,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CommentView is the stable external shape of a comment.
type CommentView struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	BlogID    string    `json:"blog_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RenderComment maps one comment. Pure: it never mutates its inputs.
func RenderComment(c *entity.Comment, author *entity.User) CommentView {
	email := ""
	if author != nil {
		email = author.Email
	}
	return CommentView{
		ID:        c.ID,
		Body:      c.Body,
		Author:    email,
		BlogID:    c.PostID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// RenderComments maps a collection by delegating to RenderComment per
// item, so collection and single rendering always agree.
func RenderComments(comments []*entity.Comment, authors map[string]*entity.User) []CommentView {
	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, RenderComment(c, authors[c.AuthorID]))
	}
	return out
}

// RenderPost maps one post in the default view.
func RenderPost(p *entity.Post, owner *entity.User, commentsCount int) PostView {
	email := ""
	if owner != nil {
		email = owner.Email
	}
	return PostView{
		ID:            p.ID,
		Title:         p.Title,
		Body:          p.Body,
		Published:     p.Published,
		CoverURL:      p.CoverURL,
		Author:        email,
		CommentsCount: commentsCount,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// RenderPostExtended maps one post with its comments nested, newest
// first as delivered by the repository.
func RenderPostExtended(p *entity.Post, owner *entity.User, comments []*entity.Comment, authors map[string]*entity.User) PostView {
	view := RenderPost(p, owner, len(comments))
	view.Comments = RenderComments(comments, authors)
	return view
}

// RenderPostView assembles the entity graph for a post and maps it in
// the requested view.
func (s *BlogService) RenderPostView(ctx context.Context, post *entity.Post, view View) (PostView, error) {
	owner, err := s.Users.GetByID(ctx, post.AuthorID)
	if err != nil {
		return PostView{}, err
	}

	if view == ViewExtended {
		comments, err := s.Comments.ListByPost(ctx, post.ID)
		if err != nil {
			return PostView{}, err
		}
		authors, err := s.commentAuthors(ctx, comments)
		if err != nil {
			return PostView{}, err
		}
		return RenderPostExtended(post, owner, comments, authors), nil
	}

	count, err := s.Posts.CountComments(ctx, post.ID)
	if err != nil {
		return PostView{}, err
	}
	return RenderPost(post, owner, count), nil
}

// RenderCommentView maps one comment with its author resolved.
func (s *BlogService) RenderCommentView(ctx context.Context, comment *entity.Comment) (CommentView, error) {
	author, err := s.Users.GetByID(ctx, comment.AuthorID)
	if err != nil {
		return CommentView{}, err
	}
	return RenderComment(comment, author), nil
}

// RenderCommentViews maps a post's comments with authors resolved.
func (s *BlogService) RenderCommentViews(ctx context.Context, comments []*entity.Comment) ([]CommentView, error) {
	authors, err := s.commentAuthors(ctx, comments)
	if err != nil {
		return nil, err
	}
	return RenderComments(comments, authors), nil
}

func (s *BlogService) commentAuthors(ctx context.Context, comments []*entity.Comment) (map[string]*entity.User, error) {
	authors := make(map[string]*entity.User)
	for _, c := range comments {
		if _, ok := authors[c.AuthorID]; ok {
			continue
		}
		u, err := s.Users.GetByID(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		authors[c.AuthorID] = u
	}
	return authors, nil
}
