package router

import (
	"net/http"
	"time"

	"github.com/Baaaki/inkwell/internal/handler"
	"github.com/Baaaki/inkwell/internal/middleware"
	"github.com/Baaaki/inkwell/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps is everything the HTTP surface needs
type Deps struct {
	Sessions     *session.Manager
	CookieName   string
	CORSOrigins  []string
	IsProduction bool

	// AuthLimiter guards register and login; nil disables it
	AuthLimiter *middleware.RateLimiter

	Auth     *handler.AuthHandler
	Posts    *handler.PostHandler
	Comments *handler.CommentHandler
	Admin    *handler.AdminHandler

	// Bans manages the limiter's ban list; nil leaves the routes out
	Bans *handler.BanHandler
}

func New(d Deps) *gin.Engine {
	r := gin.New()

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.HSTSMiddleware(d.IsProduction))
	r.Use(middleware.LoadSession(d.Sessions, d.CookieName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			limited := auth.Group("")
			if d.AuthLimiter != nil {
				limited.Use(d.AuthLimiter.Middleware())
			}
			limited.POST("/register", d.Auth.Register)
			limited.POST("/login", d.Auth.Login)

			auth.POST("/logout", d.Auth.Logout)
			auth.GET("/me", middleware.RequireAuth(), d.Auth.Me)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", d.Posts.List)
			posts.GET("/:id", d.Posts.Get)
			posts.GET("/:id/comments", d.Comments.ListByPost)

			authed := posts.Group("", middleware.RequireAuth())
			authed.POST("", d.Posts.Create)
			authed.PUT("/:id", d.Posts.Update)
			authed.PATCH("/:id/status", d.Posts.ChangeStatus)
			authed.DELETE("/:id", d.Posts.Delete)
			authed.POST("/:id/comments", d.Comments.Create)
		}

		api.DELETE("/comments/:id", middleware.RequireAuth(), d.Comments.Delete)

		admin := api.Group("", middleware.RequireAdmin())
		{
			admin.GET("/users", d.Admin.ListUsers)
			admin.PATCH("/users/:id/role", d.Admin.ChangeRole)
			admin.DELETE("/users/:id", d.Admin.DeleteUser)
			admin.GET("/stats", d.Admin.Stats)
			admin.GET("/admin/audit", d.Admin.AuditLog)

			if d.Bans != nil {
				admin.POST("/admin/bans", d.Bans.Ban)
				admin.DELETE("/admin/bans/:ip", d.Bans.Unban)
			}
		}
	}

	return r
}
