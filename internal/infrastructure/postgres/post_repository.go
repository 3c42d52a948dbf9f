package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, body, published, cover_url, author_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Body, p.Published, p.CoverURL, p.AuthorID)

	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	p := &entity.Post{}

	row := r.pool.QueryRow(ctx, `
		SELECT id, title, body, published, cover_url, author_id, created_at, updated_at
		FROM posts
		WHERE id = $1
	`, id)

	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Published, &p.CoverURL,
		&p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *PostRepository) List(ctx context.Context, viewerID string, admin bool) ([]*entity.Post, error) {
	query := `
		SELECT id, title, body, published, cover_url, author_id, created_at, updated_at
		FROM posts
		WHERE published OR author_id = $1
		ORDER BY created_at DESC
	`
	args := []any{viewerID}
	if admin {
		query = `
			SELECT id, title, body, published, cover_url, author_id, created_at, updated_at
			FROM posts
			ORDER BY created_at DESC
		`
		args = nil
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []*entity.Post
	for rows.Next() {
		p := &entity.Post{}
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Published, &p.CoverURL,
			&p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Update(ctx context.Context, p *entity.Post) error {
	p.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE posts
		SET title = $1, body = $2, published = $3, cover_url = $4, updated_at = $5
		WHERE id = $6
	`, p.Title, p.Body, p.Published, p.CoverURL, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}

	if res.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// Delete removes the post; comments go with it via ON DELETE CASCADE.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *PostRepository) CountComments(ctx context.Context, postID string) (int, error) {
	var n int
	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
