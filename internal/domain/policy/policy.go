// Package policy centralizes the allow/deny decisions for every actor,
// action and resource combination. Handlers call Allow before touching a
// repository; the decision itself has no side effects.
package policy

import (
	"blogpress/internal/domain/entity"
)

// Action is a permission verb evaluated against a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDestroy Action = "destroy"
	ActionPublish Action = "publish"
)

// Actor is the subject of an authorization decision: either an
// authenticated user or the transient guest. Guest carries no user and
// never matches ownership, so an unset AuthorID on a resource can never
// accidentally grant access.
type Actor struct {
	user *entity.User
}

// Authenticated wraps a persisted user as an actor.
func Authenticated(u *entity.User) Actor {
	return Actor{user: u}
}

// Guest returns the transient unauthenticated actor.
func Guest() Actor {
	return Actor{}
}

func (a Actor) IsGuest() bool {
	return a.user == nil
}

func (a Actor) IsAdmin() bool {
	return a.user != nil && a.user.Admin
}

// UserID returns the actor's user id, or "" for a guest.
func (a Actor) UserID() string {
	if a.user == nil {
		return ""
	}
	return a.user.ID
}

// User returns the underlying user, nil for a guest.
func (a Actor) User() *entity.User {
	return a.user
}

func (a Actor) owns(userID string) bool {
	return a.user != nil && userID != "" && a.user.ID == userID
}

// Allow decides whether the actor may perform action on resource.
// Admins may do anything. Resources it does not know about are denied.
func Allow(a Actor, action Action, resource any) bool {
	if a.IsAdmin() {
		return true
	}
	switch res := resource.(type) {
	case *entity.Post:
		return allowPost(a, action, res)
	case *entity.Comment:
		return allowComment(a, action, res)
	}
	return false
}

func allowPost(a Actor, action Action, p *entity.Post) bool {
	switch action {
	case ActionRead:
		return p != nil && (p.Published || a.owns(p.AuthorID))
	case ActionCreate:
		return !a.IsGuest()
	case ActionUpdate, ActionDestroy, ActionPublish:
		return p != nil && a.owns(p.AuthorID)
	}
	return false
}

func allowComment(a Actor, action Action, c *entity.Comment) bool {
	switch action {
	case ActionRead, ActionCreate:
		return !a.IsGuest()
	case ActionUpdate, ActionDestroy:
		return c != nil && a.owns(c.AuthorID)
	}
	return false
}
