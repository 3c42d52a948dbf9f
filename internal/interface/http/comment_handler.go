package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogpress/internal/application"
	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/policy"
	"blogpress/pkg/response"
	"blogpress/pkg/validation"
)

type CommentHandler struct {
	Blog   *application.BlogService
	Logger *logrus.Logger
}

func NewCommentHandler(blog *application.BlogService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Blog: blog, Logger: logger}
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *CommentHandler) actor(c *gin.Context) policy.Actor {
	return h.Blog.Actor(c.Request.Context(), c.GetString("userID"))
}

// ListByPost returns a post's comments, gated by the post read policy
// so drafts stay invisible to everyone but their owner.
func (h *CommentHandler) ListByPost(c *gin.Context) {
	post, err := h.Blog.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "post not found", nil)
		} else {
			h.Logger.WithError(err).Error("load post failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to load post", nil)
		}
		return
	}

	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionRead, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	comments, err := h.Blog.ListComments(c.Request.Context(), post.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("list comments failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list comments", nil)
		return
	}
	views, err := h.Blog.RenderCommentViews(c.Request.Context(), comments)
	if err != nil {
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("render comments failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to render comments", nil)
		return
	}
	response.Success(c, http.StatusOK, views, "comments", gin.H{"count": len(views)})
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	post, err := h.Blog.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "post not found", nil)
		} else {
			h.Logger.WithError(err).Error("load post failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to load post", nil)
		}
		return
	}

	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionCreate, &entity.Comment{}) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	comment, err := h.Blog.CreateComment(c.Request.Context(), actor, post, req.Body)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
			return
		}
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("create comment failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create comment", nil)
		return
	}

	v, rerr := h.Blog.RenderCommentView(c.Request.Context(), comment)
	if rerr != nil {
		h.Logger.WithError(rerr).WithField("comment_id", comment.ID).Error("render comment failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to render comment", nil)
		return
	}
	response.Success(c, http.StatusCreated, v, "comment created", nil)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, err := h.Blog.GetComment(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "comment not found", nil)
		} else {
			h.Logger.WithError(err).Error("load comment failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to load comment", nil)
		}
		return
	}

	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionDestroy, comment) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	if err := h.Blog.DeleteComment(c.Request.Context(), comment); err != nil {
		h.Logger.WithError(err).WithField("comment_id", comment.ID).Error("delete comment failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete comment", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
}
