package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/policy"
)

func TestRenderPost(t *testing.T) {
	owner := &entity.User{ID: "u1", Email: "owner@example.com"}
	post := &entity.Post{
		ID:        "p1",
		Title:     "Hello world",
		Body:      "body",
		Published: true,
		AuthorID:  "u1",
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	view := RenderPost(post, owner, 3)
	assert.Equal(t, "p1", view.ID)
	assert.Equal(t, "owner@example.com", view.Author)
	assert.Equal(t, 3, view.CommentsCount)
	assert.Nil(t, view.Comments)

	// A missing owner renders an empty author, not a panic.
	view = RenderPost(post, nil, 0)
	assert.Equal(t, "", view.Author)
}

func TestRenderComment(t *testing.T) {
	author := &entity.User{ID: "u2", Email: "reader@example.com"}
	comment := &entity.Comment{ID: "c1", Body: "nice", PostID: "p1", AuthorID: "u2"}

	view := RenderComment(comment, author)
	assert.Equal(t, "c1", view.ID)
	assert.Equal(t, "reader@example.com", view.Author)
	assert.Equal(t, "p1", view.BlogID)
}

func TestRenderPostExtended(t *testing.T) {
	owner := &entity.User{ID: "u1", Email: "owner@example.com"}
	reader := &entity.User{ID: "u2", Email: "reader@example.com"}
	post := &entity.Post{ID: "p1", Title: "Hello world", Body: "body", Published: true, AuthorID: "u1"}
	comments := []*entity.Comment{
		{ID: "c2", Body: "second", PostID: "p1", AuthorID: "u2"},
		{ID: "c1", Body: "first", PostID: "p1", AuthorID: "u1"},
	}
	authors := map[string]*entity.User{"u1": owner, "u2": reader}

	view := RenderPostExtended(post, owner, comments, authors)
	assert.Equal(t, 2, view.CommentsCount)
	require.Len(t, view.Comments, 2)

	// Ordering is whatever the repository delivered, newest first.
	assert.Equal(t, "c2", view.Comments[0].ID)
	assert.Equal(t, "c1", view.Comments[1].ID)

	// Nested comments render exactly like standalone ones.
	assert.Equal(t, RenderComment(comments[0], reader), view.Comments[0])
	assert.Equal(t, RenderComment(comments[1], owner), view.Comments[1])
}

func TestRenderPostViewService(t *testing.T) {
	ctx := context.Background()
	owner := &entity.User{ID: "u1", Email: "owner@example.com"}
	reader := &entity.User{ID: "u2", Email: "reader@example.com"}
	f := newBlogFixture(owner, reader)

	post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
	require.NoError(t, err)
	post.Published = true

	_, err = f.svc.CreateComment(ctx, policy.Authenticated(reader), post, "first")
	require.NoError(t, err)
	second, err := f.svc.CreateComment(ctx, policy.Authenticated(owner), post, "second")
	require.NoError(t, err)

	t.Run("default view counts without nesting", func(t *testing.T) {
		f.posts.counts = map[string]int{post.ID: 2}

		view, err := f.svc.RenderPostView(ctx, post, ViewDefault)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", view.Author)
		assert.Equal(t, 2, view.CommentsCount)
		assert.Nil(t, view.Comments)
	})

	t.Run("extended view nests comments newest first", func(t *testing.T) {
		view, err := f.svc.RenderPostView(ctx, post, ViewExtended)
		require.NoError(t, err)
		assert.Equal(t, 2, view.CommentsCount)
		require.Len(t, view.Comments, 2)
		assert.Equal(t, second.ID, view.Comments[0].ID)
		assert.Equal(t, "owner@example.com", view.Comments[0].Author)
		assert.Equal(t, "reader@example.com", view.Comments[1].Author)
	})
}

func TestPostViewJSONShape(t *testing.T) {
	owner := &entity.User{ID: "u1", Email: "owner@example.com"}
	post := &entity.Post{ID: "p1", Title: "Hello world", Body: "body", AuthorID: "u1"}

	b, err := json.Marshal(RenderPost(post, owner, 0))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Contains(t, m, "author")
	assert.Contains(t, m, "comments_count")
	assert.NotContains(t, m, "comments")
	assert.NotContains(t, m, "author_id")
}

func TestCommentViewJSONShape(t *testing.T) {
	author := &entity.User{ID: "u2", Email: "reader@example.com"}
	comment := &entity.Comment{ID: "c1", Body: "nice", PostID: "p1", AuthorID: "u2"}

	b, err := json.Marshal(RenderComment(comment, author))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "p1", m["blog_id"])
	assert.Equal(t, "reader@example.com", m["author"])
	assert.NotContains(t, m, "post_id")
}
