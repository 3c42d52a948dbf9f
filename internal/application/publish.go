package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/repository"
	"blogpress/pkg/mailer"
)

// PublishError is a publish-state guard violation: a missing post, a
// redundant publish/unpublish, or a persistence validation failure on
// the state flip. The interactive path treats it as terminal for the
// request; the auto-publish worker treats it as retryable.
type PublishError struct {
	msg string
}

func (e *PublishError) Error() string {
	return e.msg
}

func publishErrorf(msg string) *PublishError {
	return &PublishError{msg: msg}
}

// PublishService owns the post published flag. Publish and Unpublish are
// strict inverses: repeating either without the other in between fails.
// There is deliberately no "ensure published" mode.
type PublishService struct {
	Posts  repository.PostRepository
	Users  repository.UserRepository
	Mail   MailQueue
	Logger *logrus.Logger
}

func NewPublishService(posts repository.PostRepository, users repository.UserRepository, mail MailQueue, logger *logrus.Logger) *PublishService {
	return &PublishService{Posts: posts, Users: users, Mail: mail, Logger: logger}
}

// Publish flips the post to published and persists it.
func (s *PublishService) Publish(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return publishErrorf("post is missing")
	}
	if post.Published {
		return publishErrorf("post is already published")
	}
	if err := s.save(ctx, post, true); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{"post_id": post.ID, "title": post.Title}).
		Info("post published")
	s.notifyOwner(ctx, post)
	return nil
}

// Unpublish flips the post back to draft and persists it.
func (s *PublishService) Unpublish(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return publishErrorf("post is missing")
	}
	if !post.Published {
		return publishErrorf("post is not published")
	}
	if err := s.save(ctx, post, false); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{"post_id": post.ID, "title": post.Title}).
		Info("post unpublished")
	return nil
}

// Toggle dispatches on the current state and inherits the guards of the
// delegated operation.
func (s *PublishService) Toggle(ctx context.Context, post *entity.Post) error {
	if post == nil {
		return publishErrorf("post is missing")
	}
	if post.Published {
		return s.Unpublish(ctx, post)
	}
	return s.Publish(ctx, post)
}

func (s *PublishService) save(ctx context.Context, post *entity.Post, published bool) error {
	was := post.Published
	post.Published = published
	if err := post.Validate(); err != nil {
		post.Published = was
		return publishErrorf(err.Error())
	}
	if err := s.Posts.Update(ctx, post); err != nil {
		post.Published = was
		if errors.Is(err, entity.ErrNotFound) {
			return publishErrorf("post is missing")
		}
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			return publishErrorf(verr.Error())
		}
		return err
	}
	return nil
}

// notifyOwner queues a "post published" email to the post owner;
// failures only log.
func (s *PublishService) notifyOwner(ctx context.Context, post *entity.Post) {
	if s.Mail == nil || s.Users == nil {
		return
	}
	owner, err := s.Users.GetByID(ctx, post.AuthorID)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", post.ID).
			Warn("resolve post owner for notification failed")
		return
	}
	job := mailer.EmailJob{
		To:       owner.Email,
		Template: mailer.TemplatePostPublished,
		Data: map[string]any{
			"Name":      owner.Name,
			"PostTitle": post.Title,
		},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("post_id", post.ID).
			Warn("queue publish notification failed")
	}
}
