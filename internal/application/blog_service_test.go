package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/policy"
	"blogpress/internal/jobs"
	"blogpress/pkg/mailer"
)

type blogFixture struct {
	svc       *BlogService
	users     *fakeUserRepo
	posts     *fakePostRepo
	comments  *fakeCommentRepo
	scheduler *fakeScheduler
	mail      *fakeMailQueue
}

func newBlogFixture(users ...*entity.User) *blogFixture {
	f := &blogFixture{
		users:     newFakeUserRepo(users...),
		posts:     newFakePostRepo(),
		comments:  &fakeCommentRepo{},
		scheduler: &fakeScheduler{},
		mail:      &fakeMailQueue{},
	}
	f.svc = NewBlogService(f.users, f.posts, f.comments, f.scheduler, time.Hour, f.mail, nil, "", nil, "", testLogger())
	return f
}

func TestActor(t *testing.T) {
	ctx := context.Background()
	f := newBlogFixture(&entity.User{ID: "u1", Email: "a@example.com"})

	assert.True(t, f.svc.Actor(ctx, "").IsGuest())
	assert.True(t, f.svc.Actor(ctx, "nope").IsGuest())

	a := f.svc.Actor(ctx, "u1")
	assert.False(t, a.IsGuest())
	assert.Equal(t, "u1", a.UserID())
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	author := &entity.User{ID: "u1", Email: "a@example.com"}

	t.Run("persists unpublished and schedules auto-publish once", func(t *testing.T) {
		f := newBlogFixture(author)

		post, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hello world", "body")
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
		assert.False(t, post.Published)
		assert.Equal(t, "u1", post.AuthorID)

		require.Len(t, f.scheduler.calls, 1)
		assert.Equal(t, time.Hour, f.scheduler.calls[0].delay)

		payload, ok := f.scheduler.calls[0].payload.(jobs.AutoPublishPayload)
		require.True(t, ok)
		assert.Equal(t, post.ID, payload.PostID)
		assert.False(t, payload.EnqueuedAt.IsZero())
	})

	t.Run("updates never re-schedule", func(t *testing.T) {
		f := newBlogFixture(author)

		post, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hello world", "body")
		require.NoError(t, err)

		_, err = f.svc.UpdatePost(ctx, post, "Hello again", "new body")
		require.NoError(t, err)
		assert.Len(t, f.scheduler.calls, 1)
	})

	t.Run("invalid title is rejected before persistence", func(t *testing.T) {
		f := newBlogFixture(author)

		_, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hiya", "body")

		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Empty(t, f.posts.posts)
		assert.Empty(t, f.scheduler.calls)
	})

	t.Run("scheduler failure does not fail the create", func(t *testing.T) {
		f := newBlogFixture(author)
		f.scheduler.err = assert.AnError

		post, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hello world", "body")
		require.NoError(t, err)
		assert.NotEmpty(t, post.ID)
	})
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	author := &entity.User{ID: "u1", Email: "a@example.com"}
	f := newBlogFixture(author)

	post, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hello world", "body")
	require.NoError(t, err)

	t.Run("edits title and body", func(t *testing.T) {
		got, err := f.svc.UpdatePost(ctx, post, "New title", "new body")
		require.NoError(t, err)
		assert.Equal(t, "New title", got.Title)
		assert.Equal(t, "new body", got.Body)
	})

	t.Run("published flag is untouched", func(t *testing.T) {
		post.Published = true
		_, err := f.svc.UpdatePost(ctx, post, "Other title", "other body")
		require.NoError(t, err)
		assert.True(t, post.Published)
	})

	t.Run("validation failure leaves nothing persisted", func(t *testing.T) {
		updates := f.posts.updates
		_, err := f.svc.UpdatePost(ctx, post, "absq", "body")

		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, updates, f.posts.updates)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	author := &entity.User{ID: "u1", Email: "a@example.com"}
	f := newBlogFixture(author)

	post, err := f.svc.CreatePost(ctx, policy.Authenticated(author), "Hello world", "body")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, post))
	_, err = f.svc.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestListPosts(t *testing.T) {
	ctx := context.Background()
	owner := &entity.User{ID: "u1", Email: "a@example.com"}
	other := &entity.User{ID: "u2", Email: "b@example.com"}
	admin := &entity.User{ID: "u3", Email: "c@example.com", Admin: true}
	f := newBlogFixture(owner, other, admin)

	draft, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Draft post", "body")
	require.NoError(t, err)
	published, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Live post!", "body")
	require.NoError(t, err)
	published.Published = true

	ids := func(posts []*entity.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.ID)
		}
		return out
	}

	got, err := f.svc.ListPosts(ctx, policy.Guest())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{published.ID}, ids(got))

	got, err = f.svc.ListPosts(ctx, policy.Authenticated(owner))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{draft.ID, published.ID}, ids(got))

	got, err = f.svc.ListPosts(ctx, policy.Authenticated(other))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{published.ID}, ids(got))

	got, err = f.svc.ListPosts(ctx, policy.Authenticated(admin))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{draft.ID, published.ID}, ids(got))
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()
	owner := &entity.User{ID: "u1", Email: "owner@example.com", Name: "Owner"}
	reader := &entity.User{ID: "u2", Email: "reader@example.com", Name: "Reader"}

	t.Run("attaches to a published post and notifies the owner", func(t *testing.T) {
		f := newBlogFixture(owner, reader)
		post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
		require.NoError(t, err)
		post.Published = true

		comment, err := f.svc.CreateComment(ctx, policy.Authenticated(reader), post, "nice one")
		require.NoError(t, err)
		assert.Equal(t, post.ID, comment.PostID)
		assert.Equal(t, "u2", comment.AuthorID)

		require.Len(t, f.mail.jobs, 1)
		assert.Equal(t, "owner@example.com", f.mail.jobs[0].To)
		assert.Equal(t, mailer.TemplateNewComment, f.mail.jobs[0].Template)
	})

	t.Run("unpublished post rejects comments", func(t *testing.T) {
		f := newBlogFixture(owner, reader)
		post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
		require.NoError(t, err)

		_, err = f.svc.CreateComment(ctx, policy.Authenticated(reader), post, "too soon")

		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "must be published to accept comments", verr.Fields["post"])
		assert.Empty(t, f.comments.comments)
	})

	t.Run("self comments skip the notification", func(t *testing.T) {
		f := newBlogFixture(owner)
		post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
		require.NoError(t, err)
		post.Published = true

		_, err = f.svc.CreateComment(ctx, policy.Authenticated(owner), post, "first!")
		require.NoError(t, err)
		assert.Empty(t, f.mail.jobs)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		f := newBlogFixture(owner, reader)
		post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
		require.NoError(t, err)
		post.Published = true

		_, err = f.svc.CreateComment(ctx, policy.Authenticated(reader), post, "")

		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	owner := &entity.User{ID: "u1", Email: "owner@example.com"}
	f := newBlogFixture(owner)
	post, err := f.svc.CreatePost(ctx, policy.Authenticated(owner), "Hello world", "body")
	require.NoError(t, err)
	post.Published = true

	comment, err := f.svc.CreateComment(ctx, policy.Authenticated(owner), post, "gone soon")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteComment(ctx, comment))
	_, err = f.svc.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}
