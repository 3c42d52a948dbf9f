package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"blogpress/internal/container"
	handlers "blogpress/internal/interface/http"
	"blogpress/internal/interface/middleware"
	"blogpress/pkg/helpers"
)

// BlogModule wires post and comment routes.
// Reads run with optional auth so guests can see published posts; writes
// require an authenticated session.
type BlogModule struct {
	Posts    *handlers.PostHandler
	Comments *handlers.CommentHandler
	JWT      *helpers.JWTManager
}

func NewBlogModule(posts *handlers.PostHandler, comments *handlers.CommentHandler, jwt *helpers.JWTManager) *BlogModule {
	return &BlogModule{Posts: posts, Comments: comments, JWT: jwt}
}

func (m *BlogModule) Register(rg *gin.RouterGroup) {
	read := rg.Group("/")
	read.Use(middleware.OptionalAuth(m.JWT))
	{
		read.GET("/posts", m.Posts.List)
		read.GET("/posts/search", m.Posts.Search)
		read.GET("/posts/:id", m.Posts.Get)
		read.GET("/posts/:id/comments", m.Comments.ListByPost)
	}

	write := rg.Group("/")
	write.Use(middleware.Auth(container.GetRedis(), m.JWT))
	write.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()),
	)
	{
		write.POST("/posts", m.Posts.Create)
		write.PUT("/posts/:id", m.Posts.Update)
		write.DELETE("/posts/:id", m.Posts.Delete)

		write.POST("/posts/:id/publish", m.Posts.PublishPost)
		write.POST("/posts/:id/unpublish", m.Posts.UnpublishPost)
		write.POST("/posts/:id/toggle", m.Posts.TogglePublish)
		write.POST("/posts/:id/cover", m.Posts.UploadCover)

		write.POST("/posts/:id/comments", m.Comments.Create)
		write.DELETE("/comments/:id", m.Comments.Delete)
	}
}
