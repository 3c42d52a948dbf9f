// Package jobs holds deferred units of work executed by queue workers.
// Task bodies are written against repository and service interfaces so
// they stay independent of the broker that delivers them.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/repository"
	"blogpress/internal/metrics"
)

// AutoPublishPayload is the JSON message enqueued when a post is created
// unpublished. It is delivered to the auto-publish worker after the
// configured delay.
type AutoPublishPayload struct {
	PostID     string    `json:"post_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// PostPublisher is the slice of the publish service the task needs.
type PostPublisher interface {
	Publish(ctx context.Context, post *entity.Post) error
}

// AutoPublish publishes a post that is still unpublished when the delay
// elapses. Run is idempotent and re-entrant: a deleted post and an
// already-published post are both benign no-ops, so redelivery and a
// manual publish racing the timer are safe.
type AutoPublish struct {
	Posts     repository.PostRepository
	Publisher PostPublisher
	Logger    *logrus.Logger
}

func NewAutoPublish(posts repository.PostRepository, publisher PostPublisher, logger *logrus.Logger) *AutoPublish {
	return &AutoPublish{Posts: posts, Publisher: publisher, Logger: logger}
}

// Run executes the task for one post. A non-nil error signals the
// scheduling subsystem to apply its retry policy.
func (t *AutoPublish) Run(ctx context.Context, postID string) error {
	post, err := t.Posts.GetByID(ctx, postID)
	if errors.Is(err, entity.ErrNotFound) {
		t.Logger.WithField("post_id", postID).
			Warn("auto-publish: post no longer exists, skipping")
		metrics.AutoPublishTotal.WithLabelValues("missing").Inc()
		return nil
	}
	if err != nil {
		metrics.AutoPublishTotal.WithLabelValues("error").Inc()
		return err
	}

	if post.Published {
		t.Logger.WithField("post_id", postID).
			Info("auto-publish: post already published, nothing to do")
		metrics.AutoPublishTotal.WithLabelValues("noop").Inc()
		return nil
	}

	if err := t.Publisher.Publish(ctx, post); err != nil {
		t.Logger.WithError(err).WithField("post_id", postID).
			Error("auto-publish failed")
		metrics.AutoPublishTotal.WithLabelValues("error").Inc()
		return err
	}

	t.Logger.WithFields(logrus.Fields{"post_id": postID, "title": post.Title}).
		Info("auto-publish complete")
	metrics.AutoPublishTotal.WithLabelValues("published").Inc()
	return nil
}
