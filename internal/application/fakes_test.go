package application

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"blogpress/internal/domain/entity"
	"blogpress/pkg/mailer"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = fmt.Sprintf("u-%d", len(r.users)+1)
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return entity.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

type fakePostRepo struct {
	posts     map[string]*entity.Post
	counts    map[string]int
	seq       int
	updateErr error
	updates   int
}

func newFakePostRepo(posts ...*entity.Post) *fakePostRepo {
	r := &fakePostRepo{posts: map[string]*entity.Post{}}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) Create(_ context.Context, p *entity.Post) error {
	r.seq++
	p.ID = fmt.Sprintf("p-%d", r.seq)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.posts[p.ID] = p
	return nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id string) (*entity.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return p, nil
}

func (r *fakePostRepo) List(_ context.Context, viewerID string, admin bool) ([]*entity.Post, error) {
	out := []*entity.Post{}
	for _, p := range r.posts {
		if p.Published || admin || (viewerID != "" && p.AuthorID == viewerID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Update(_ context.Context, p *entity.Post) error {
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.posts[p.ID]; !ok {
		return entity.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	r.posts[p.ID] = p
	return nil
}

func (r *fakePostRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.posts[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) CountComments(_ context.Context, postID string) (int, error) {
	p, ok := r.posts[postID]
	if !ok {
		return 0, entity.ErrNotFound
	}
	if r.counts == nil {
		return 0, nil
	}
	return r.counts[p.ID], nil
}

type fakeCommentRepo struct {
	comments []*entity.Comment
	seq      int
}

func (r *fakeCommentRepo) Create(_ context.Context, c *entity.Comment) error {
	r.seq++
	c.ID = fmt.Sprintf("c-%d", r.seq)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	// Newest first, matching the storage ordering.
	r.comments = append([]*entity.Comment{c}, r.comments...)
	return nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	for _, c := range r.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeCommentRepo) ListByPost(_ context.Context, postID string) ([]*entity.Comment, error) {
	out := []*entity.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id string) error {
	for i, c := range r.comments {
		if c.ID == id {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return entity.ErrNotFound
}

type scheduledCall struct {
	payload any
	delay   time.Duration
}

type fakeScheduler struct {
	calls []scheduledCall
	err   error
}

func (s *fakeScheduler) Schedule(_ context.Context, payload any, delay time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, scheduledCall{payload: payload, delay: delay})
	return nil
}

type fakeMailQueue struct {
	jobs []mailer.EmailJob
}

func (q *fakeMailQueue) PublishJSON(_ context.Context, body any) error {
	if job, ok := body.(mailer.EmailJob); ok {
		q.jobs = append(q.jobs, job)
	}
	return nil
}
