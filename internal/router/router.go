package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/biofolio/backend/api/handler"
)

type Handlers struct {
	Auth      *apiHandler.AuthHandler
	Directory *apiHandler.DirectoryHandler
	Bio       *apiHandler.BioHandler
	Health    *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))

	// Bio generation is open to the registration flow, which runs pre-auth.
	r.POST("/api/v1/bio", handlers.Bio.Generate)

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Auth.Me))
	r.GET("/api/v1/users", authMiddleware(handlers.Directory.ListUsers))

	return r
}
