package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogpress/internal/application"
	"blogpress/internal/domain/entity"
	"blogpress/internal/domain/policy"
	"blogpress/pkg/response"
	"blogpress/pkg/validation"
)

type PostHandler struct {
	Blog    *application.BlogService
	Publish *application.PublishService
	Logger  *logrus.Logger
}

func NewPostHandler(blog *application.BlogService, publish *application.PublishService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Blog: blog, Publish: publish, Logger: logger}
}

type postRequest struct {
	Title string `json:"title" binding:"required,min=5"`
	Body  string `json:"body" binding:"required"`
}

func (h *PostHandler) actor(c *gin.Context) policy.Actor {
	return h.Blog.Actor(c.Request.Context(), c.GetString("userID"))
}

func viewFrom(c *gin.Context) application.View {
	if c.Query("view") == string(application.ViewExtended) {
		return application.ViewExtended
	}
	return application.ViewDefault
}

// loadPost fetches the post from the path id, writing a 404 on miss.
func (h *PostHandler) loadPost(c *gin.Context) (*entity.Post, bool) {
	post, err := h.Blog.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "post not found", nil)
		} else {
			h.Logger.WithError(err).Error("load post failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to load post", nil)
		}
		return nil, false
	}
	return post, true
}

func (h *PostHandler) List(c *gin.Context) {
	actor := h.actor(c)
	posts, err := h.Blog.ListPosts(c.Request.Context(), actor)
	if err != nil {
		h.Logger.WithError(err).Error("list posts failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list posts", nil)
		return
	}

	views := make([]application.PostView, 0, len(posts))
	for _, p := range posts {
		v, err := h.Blog.RenderPostView(c.Request.Context(), p, application.ViewDefault)
		if err != nil {
			h.Logger.WithError(err).WithField("post_id", p.ID).Error("render post failed")
			response.Error[any](c, http.StatusInternalServerError, "failed to render posts", nil)
			return
		}
		views = append(views, v)
	}
	response.Success(c, http.StatusOK, views, "posts", gin.H{"count": len(views)})
}

func (h *PostHandler) Get(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionRead, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	v, err := h.Blog.RenderPostView(c.Request.Context(), post, viewFrom(c))
	if err != nil {
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("render post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to render post", nil)
		return
	}
	response.Success(c, http.StatusOK, v, "post", nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionCreate, &entity.Post{}) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	post, err := h.Blog.CreatePost(c.Request.Context(), actor, req.Title, req.Body)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
			return
		}
		h.Logger.WithError(err).Error("create post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to create post", nil)
		return
	}

	v, rerr := h.Blog.RenderPostView(c.Request.Context(), post, application.ViewDefault)
	if rerr != nil {
		h.Logger.WithError(rerr).WithField("post_id", post.ID).Error("render post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to render post", nil)
		return
	}
	response.Success(c, http.StatusCreated, v, "post created", nil)
}

func (h *PostHandler) Update(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionUpdate, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	post, err := h.Blog.UpdatePost(c.Request.Context(), post, req.Title, req.Body)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
			return
		}
		h.Logger.WithError(err).WithField("post_id", c.Param("id")).Error("update post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to update post", nil)
		return
	}

	v, rerr := h.Blog.RenderPostView(c.Request.Context(), post, application.ViewDefault)
	if rerr != nil {
		h.Logger.WithError(rerr).WithField("post_id", post.ID).Error("render post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to render post", nil)
		return
	}
	response.Success(c, http.StatusOK, v, "post updated", nil)
}

func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionDestroy, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	if err := h.Blog.DeletePost(c.Request.Context(), post); err != nil {
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("delete post failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to delete post", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post deleted", nil)
}

// publishAction runs one of the publish service operations after the
// shared load + authorize steps.
func (h *PostHandler) publishAction(c *gin.Context, op func(*entity.Post) error, okMsg string) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionPublish, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	if err := op(post); err != nil {
		var perr *application.PublishError
		if errors.As(err, &perr) {
			response.Error[any](c, http.StatusConflict, perr.Error(), nil)
			return
		}
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("publish operation failed")
		response.Error[any](c, http.StatusInternalServerError, "publish operation failed", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": post.ID, "published": post.Published}, okMsg, nil)
}

func (h *PostHandler) PublishPost(c *gin.Context) {
	h.publishAction(c, func(p *entity.Post) error {
		return h.Publish.Publish(c.Request.Context(), p)
	}, "post published")
}

func (h *PostHandler) UnpublishPost(c *gin.Context) {
	h.publishAction(c, func(p *entity.Post) error {
		return h.Publish.Unpublish(c.Request.Context(), p)
	}, "post unpublished")
}

func (h *PostHandler) TogglePublish(c *gin.Context) {
	h.publishAction(c, func(p *entity.Post) error {
		return h.Publish.Toggle(c.Request.Context(), p)
	}, "publish state toggled")
}

func (h *PostHandler) UploadCover(c *gin.Context) {
	post, ok := h.loadPost(c)
	if !ok {
		return
	}
	actor := h.actor(c)
	if !policy.Allow(actor, policy.ActionUpdate, post) {
		response.Error[any](c, http.StatusForbidden, "not allowed", nil)
		return
	}

	file, header, err := c.Request.FormFile("cover")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing cover file", nil)
		return
	}
	defer func() { _ = file.Close() }()

	url, err := h.Blog.UploadCover(c.Request.Context(), post, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).WithField("post_id", post.ID).Error("cover upload failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to upload cover", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cover_url": url}, "cover uploaded", nil)
}

func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Blog.SearchPosts(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("search posts failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
