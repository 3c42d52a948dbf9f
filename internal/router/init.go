package router

import (
	"blogpress/internal/application"
	"blogpress/internal/container"
	pginfra "blogpress/internal/infrastructure/postgres"
	handlers "blogpress/internal/interface/http"
	"blogpress/internal/router/modules"
)

// InitModules initializes all application modules and registers them
// with the router registry. Called once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	comments := pginfra.NewCommentRepository(pool)

	// Interface-typed nils keep the services' nil checks meaningful when
	// rabbit is not configured.
	var scheduler application.Scheduler
	if s := container.GetScheduler(); s != nil {
		scheduler = s
	}
	var mail application.MailQueue
	if q := container.GetMailQueue(); q != nil {
		mail = q
	}

	account := application.NewAccountService(users, container.GetJWT(), container.GetRedis(), logger)
	publish := application.NewPublishService(posts, users, mail, logger)
	blog := application.NewBlogService(
		users, posts, comments,
		scheduler, cfg.AutoPublishDelay,
		mail,
		container.GetGCS(), cfg.GCSBucket,
		container.GetES(), cfg.ESPostsIndex,
		logger,
	)

	accountHandler := handlers.NewAccountHandler(account, logger, cfg.CookieDomain, cfg.CookieSecure)
	postHandler := handlers.NewPostHandler(blog, publish, logger)
	commentHandler := handlers.NewCommentHandler(blog, logger)

	r.Add(modules.NewAccountModule(accountHandler, container.GetJWT()))
	r.Add(modules.NewBlogModule(postHandler, commentHandler, container.GetJWT()))
}
