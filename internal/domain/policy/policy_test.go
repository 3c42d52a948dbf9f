package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"blogpress/internal/domain/entity"
)

func TestAllowPost(t *testing.T) {
	owner := Authenticated(&entity.User{ID: "owner"})
	other := Authenticated(&entity.User{ID: "other"})
	admin := Authenticated(&entity.User{ID: "admin", Admin: true})
	guest := Guest()

	published := &entity.Post{ID: "p1", AuthorID: "owner", Published: true}
	draft := &entity.Post{ID: "p2", AuthorID: "owner"}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		post   *entity.Post
		want   bool
	}{
		{"guest reads published", guest, ActionRead, published, true},
		{"guest cannot read draft", guest, ActionRead, draft, false},
		{"owner reads own draft", owner, ActionRead, draft, true},
		{"other cannot read draft", other, ActionRead, draft, false},
		{"admin reads draft", admin, ActionRead, draft, true},

		{"guest cannot create", guest, ActionCreate, &entity.Post{}, false},
		{"user creates", other, ActionCreate, &entity.Post{}, true},

		{"owner updates", owner, ActionUpdate, published, true},
		{"other cannot update", other, ActionUpdate, published, false},
		{"guest cannot update", guest, ActionUpdate, published, false},
		{"admin updates", admin, ActionUpdate, published, true},

		{"owner destroys", owner, ActionDestroy, draft, true},
		{"other cannot destroy", other, ActionDestroy, draft, false},
		{"guest cannot destroy", guest, ActionDestroy, published, false},
		{"admin destroys", admin, ActionDestroy, draft, true},

		{"owner publishes", owner, ActionPublish, draft, true},
		{"other cannot publish", other, ActionPublish, draft, false},
		{"admin publishes", admin, ActionPublish, draft, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.actor, tt.action, tt.post))
		})
	}
}

func TestAllowComment(t *testing.T) {
	author := Authenticated(&entity.User{ID: "author"})
	other := Authenticated(&entity.User{ID: "other"})
	admin := Authenticated(&entity.User{ID: "admin", Admin: true})
	guest := Guest()

	comment := &entity.Comment{ID: "c1", PostID: "p1", AuthorID: "author"}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"guest cannot read", guest, ActionRead, false},
		{"user reads", other, ActionRead, true},
		{"guest cannot create", guest, ActionCreate, false},
		{"user creates", other, ActionCreate, true},
		{"author destroys own", author, ActionDestroy, true},
		{"other cannot destroy", other, ActionDestroy, false},
		{"admin destroys", admin, ActionDestroy, true},
		{"author updates own", author, ActionUpdate, true},
		{"other cannot update", other, ActionUpdate, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.actor, tt.action, comment))
		})
	}
}

func TestGuestNeverOwns(t *testing.T) {
	// A resource with an empty author id must not match the guest's
	// empty user id.
	orphan := &entity.Post{ID: "p1", AuthorID: ""}
	assert.False(t, Allow(Guest(), ActionUpdate, orphan))
	assert.False(t, Allow(Guest(), ActionDestroy, orphan))
}

func TestAllowUnknownResource(t *testing.T) {
	user := Authenticated(&entity.User{ID: "u1"})
	assert.False(t, Allow(user, ActionRead, struct{}{}))
	assert.False(t, Allow(user, ActionRead, nil))
}

func TestActorAccessors(t *testing.T) {
	u := &entity.User{ID: "u1", Admin: true}
	a := Authenticated(u)
	assert.False(t, a.IsGuest())
	assert.True(t, a.IsAdmin())
	assert.Equal(t, "u1", a.UserID())
	assert.Same(t, u, a.User())

	g := Guest()
	assert.True(t, g.IsGuest())
	assert.False(t, g.IsAdmin())
	assert.Equal(t, "", g.UserID())
	assert.Nil(t, g.User())
}
