package repository

import (
	"context"

	"blogpress/internal/domain/entity"
)

// UserRepository defines the user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}

// PostRepository defines the post-related database operations.
// Deleting a post cascades to its comments at the storage layer.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id string) (*entity.Post, error)
	// List returns published posts plus unpublished posts owned by
	// viewerID (all unpublished posts when admin), newest first.
	List(ctx context.Context, viewerID string, admin bool) ([]*entity.Post, error)
	Update(ctx context.Context, p *entity.Post) error
	Delete(ctx context.Context, id string) error
	CountComments(ctx context.Context, postID string) (int, error)
}

// CommentRepository defines the comment-related database operations.
type CommentRepository interface {
	Create(ctx context.Context, c *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	// ListByPost returns the post's comments newest-created-first.
	ListByPost(ctx context.Context, postID string) ([]*entity.Comment, error)
	Delete(ctx context.Context, id string) error
}
