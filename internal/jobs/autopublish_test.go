package jobs

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogpress/internal/domain/entity"
)

type stubPostRepo struct {
	post   *entity.Post
	getErr error
}

func (r *stubPostRepo) Create(context.Context, *entity.Post) error { return nil }

func (r *stubPostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.post == nil || r.post.ID != id {
		return nil, entity.ErrNotFound
	}
	return r.post, nil
}

func (r *stubPostRepo) List(context.Context, string, bool) ([]*entity.Post, error) {
	return nil, nil
}

func (r *stubPostRepo) Update(context.Context, *entity.Post) error { return nil }
func (r *stubPostRepo) Delete(context.Context, string) error       { return nil }
func (r *stubPostRepo) CountComments(context.Context, string) (int, error) {
	return 0, nil
}

type stubPublisher struct {
	calls []*entity.Post
	err   error
}

func (p *stubPublisher) Publish(_ context.Context, post *entity.Post) error {
	if p.err != nil {
		return p.err
	}
	p.calls = append(p.calls, post)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestAutoPublishRun(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a still-unpublished post", func(t *testing.T) {
		post := &entity.Post{ID: "p1", Title: "Hello world", Body: "b", AuthorID: "u1"}
		publisher := &stubPublisher{}
		task := NewAutoPublish(&stubPostRepo{post: post}, publisher, quietLogger())

		require.NoError(t, task.Run(ctx, "p1"))
		require.Len(t, publisher.calls, 1)
		assert.Same(t, post, publisher.calls[0])
	})

	t.Run("deleted post is a no-op", func(t *testing.T) {
		publisher := &stubPublisher{}
		task := NewAutoPublish(&stubPostRepo{}, publisher, quietLogger())

		require.NoError(t, task.Run(ctx, "gone"))
		assert.Empty(t, publisher.calls)
	})

	t.Run("already published post is a no-op", func(t *testing.T) {
		post := &entity.Post{ID: "p1", Title: "Hello world", Body: "b", AuthorID: "u1", Published: true}
		publisher := &stubPublisher{}
		task := NewAutoPublish(&stubPostRepo{post: post}, publisher, quietLogger())

		require.NoError(t, task.Run(ctx, "p1"))
		assert.Empty(t, publisher.calls)
	})

	t.Run("lookup failure propagates for retry", func(t *testing.T) {
		task := NewAutoPublish(&stubPostRepo{getErr: assert.AnError}, &stubPublisher{}, quietLogger())
		assert.ErrorIs(t, task.Run(ctx, "p1"), assert.AnError)
	})

	t.Run("publish failure propagates for retry", func(t *testing.T) {
		post := &entity.Post{ID: "p1", Title: "Hello world", Body: "b", AuthorID: "u1"}
		publisher := &stubPublisher{err: assert.AnError}
		task := NewAutoPublish(&stubPostRepo{post: post}, publisher, quietLogger())

		assert.ErrorIs(t, task.Run(ctx, "p1"), assert.AnError)
	})
}

func TestAutoPublishPayloadJSON(t *testing.T) {
	b, err := json.Marshal(AutoPublishPayload{PostID: "p1"})
	require.NoError(t, err)

	var decoded AutoPublishPayload
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "p1", decoded.PostID)
}
