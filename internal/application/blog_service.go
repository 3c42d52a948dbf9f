package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/policy"
	"blogpress/internal/domain/repository"
	"blogpress/internal/jobs"
	"blogpress/pkg/helpers"
	"blogpress/pkg/mailer"
)

// BlogService orchestrates posts and comments: validation, persistence,
// auto-publish scheduling, search indexing, cover uploads and comment
// notifications. Authorization stays at the handlers via policy.Allow.
type BlogService struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository

	Scheduler        Scheduler
	AutoPublishDelay time.Duration

	Mail MailQueue

	GCS       *storage.Client
	GCSBucket string

	ES           *elasticsearch.Client
	ESPostsIndex string

	Logger *logrus.Logger
}

func NewBlogService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	scheduler Scheduler,
	autoPublishDelay time.Duration,
	mail MailQueue,
	gcs *storage.Client,
	gcsBucket string,
	es *elasticsearch.Client,
	esPostsIndex string,
	logger *logrus.Logger,
) *BlogService {
	return &BlogService{
		Users:            users,
		Posts:            posts,
		Comments:         comments,
		Scheduler:        scheduler,
		AutoPublishDelay: autoPublishDelay,
		Mail:             mail,
		GCS:              gcs,
		GCSBucket:        gcsBucket,
		ES:               es,
		ESPostsIndex:     esPostsIndex,
		Logger:           logger,
	}
}

// Actor resolves the acting user for a request. An empty or unknown id
// yields the guest actor.
func (s *BlogService) Actor(ctx context.Context, userID string) policy.Actor {
	if userID == "" {
		return policy.Guest()
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return policy.Guest()
	}
	return policy.Authenticated(u)
}

// CreatePost validates and persists a new unpublished post and schedules
// its auto-publish one delay from now. The schedule fires exactly once
// per creation and is never re-enqueued on update.
func (s *BlogService) CreatePost(ctx context.Context, actor policy.Actor, title, body string) (*entity.Post, error) {
	post := &entity.Post{
		Title:    title,
		Body:     body,
		AuthorID: actor.UserID(),
	}
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, err
	}

	if !post.Published && s.Scheduler != nil {
		payload := jobs.AutoPublishPayload{PostID: post.ID, EnqueuedAt: time.Now().UTC()}
		if err := s.Scheduler.Schedule(ctx, payload, s.AutoPublishDelay); err != nil {
			s.Logger.WithError(err).WithField("post_id", post.ID).
				Error("schedule auto-publish failed")
		} else {
			s.Logger.WithFields(logrus.Fields{"post_id": post.ID, "delay": s.AutoPublishDelay}).
				Info("auto-publish scheduled")
		}
	}

	s.indexPost(ctx, post)
	return post, nil
}

// UpdatePost edits title and body. The published flag is out of reach
// here; only the publish service touches it.
func (s *BlogService) UpdatePost(ctx context.Context, post *entity.Post, title, body string) (*entity.Post, error) {
	post.Title = title
	post.Body = body
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.indexPost(ctx, post)
	return post, nil
}

func (s *BlogService) DeletePost(ctx context.Context, post *entity.Post) error {
	if err := s.Posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.removePostIndex(ctx, post.ID)
	return nil
}

func (s *BlogService) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	return s.Posts.GetByID(ctx, id)
}

// ListPosts returns what the actor may see: published posts plus their
// own drafts, everything for admins.
func (s *BlogService) ListPosts(ctx context.Context, actor policy.Actor) ([]*entity.Post, error) {
	return s.Posts.List(ctx, actor.UserID(), actor.IsAdmin())
}

// CreateComment attaches a comment to a published post. An unpublished
// parent is a validation failure. On success the post owner gets a
// notification email queued.
func (s *BlogService) CreateComment(ctx context.Context, actor policy.Actor, post *entity.Post, body string) (*entity.Comment, error) {
	comment := &entity.Comment{
		Body:     body,
		PostID:   post.ID,
		AuthorID: actor.UserID(),
	}
	if err := comment.Validate(post); err != nil {
		return nil, err
	}
	if err := s.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.notifyNewComment(ctx, post, comment)
	return comment, nil
}

func (s *BlogService) GetComment(ctx context.Context, id string) (*entity.Comment, error) {
	return s.Comments.GetByID(ctx, id)
}

func (s *BlogService) DeleteComment(ctx context.Context, comment *entity.Comment) error {
	return s.Comments.Delete(ctx, comment.ID)
}

func (s *BlogService) ListComments(ctx context.Context, postID string) ([]*entity.Comment, error) {
	return s.Comments.ListByPost(ctx, postID)
}

// UploadCover stores a cover image in GCS and records its public URL on
// the post.
func (s *BlogService) UploadCover(ctx context.Context, post *entity.Post, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("covers", post.ID, id+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	post.CoverURL = url
	if err := s.Posts.Update(ctx, post); err != nil {
		return "", err
	}
	s.indexPost(ctx, post)
	return url, nil
}

func (s *BlogService) notifyNewComment(ctx context.Context, post *entity.Post, comment *entity.Comment) {
	if s.Mail == nil {
		return
	}
	// Commenting on your own post needs no email.
	if comment.AuthorID == post.AuthorID {
		return
	}
	owner, err := s.Users.GetByID(ctx, post.AuthorID)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", post.ID).
			Warn("resolve post owner for comment notification failed")
		return
	}
	job := mailer.EmailJob{
		To:       owner.Email,
		Template: mailer.TemplateNewComment,
		Data: map[string]any{
			"Name":      owner.Name,
			"PostTitle": post.Title,
			"Comment":   comment.Body,
		},
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("post_id", post.ID).
			Warn("queue comment notification failed")
	}
}

func (s *BlogService) indexPost(ctx context.Context, p *entity.Post) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"body":       p.Body,
		"published":  p.Published,
		"author_id":  p.AuthorID,
		"created_at": p.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESPostsIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("post_id", p.ID).
			Warn("es index response error")
	}
}

func (s *BlogService) removePostIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESPostsIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
		return
	}
	_ = res.Body.Close()
}

// SearchPosts performs a multi_match search on title and body, limited
// to published documents.
func (s *BlogService) SearchPosts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESPostsIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"title^2", "body"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"published": true},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESPostsIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
