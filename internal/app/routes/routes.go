package routes

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lusapp/backend/internal/app/controllers"
	"github.com/lusapp/backend/internal/middleware"
	"github.com/lusapp/backend/internal/pkg/websocket"
)

// Controllers bundles everything SetupRouter wires up
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Race         *controllers.RaceController
	Group        *controllers.GroupController
	Post         *controllers.PostController
	Message      *controllers.MessageController
	Notification *controllers.NotificationController
	Gear         *controllers.GearController
	Upload       *controllers.UploadController
	Health       *controllers.HealthController
	Websocket    *websocket.Handler
}

// AdminCredentials holds the basic auth pair for curation endpoints
type AdminCredentials struct {
	Username string
	Password string
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	c Controllers,
	authMiddleware *middleware.AuthMiddleware,
	admin AdminCredentials,
) {
	router.GET("/health", c.Health.Health)

	api := router.Group("/api")

	// Auth endpoints carry a tighter rate limit than the rest of the API
	authLimiter := middleware.NewRateLimiter(rate.Limit(5), 10)
	auth := api.Group("/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", c.Auth.Signup)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
	}

	// Public race catalog
	api.GET("/races", c.Race.List)
	api.GET("/races/:id", c.Race.Get)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.RequireAuth())
	{
		authenticated.GET("/auth/me", c.Auth.Me)

		users := authenticated.Group("/users")
		{
			users.PUT("/me", c.User.UpdateProfile)
			users.POST("/me/avatar", c.Upload.UploadAvatar)
			users.GET("/:id", c.User.GetProfile)
			users.POST("/:id/follow", c.User.Follow)
			users.DELETE("/:id/follow", c.User.Unfollow)
		}

		races := authenticated.Group("/races")
		{
			races.POST("", c.Race.Submit)
			races.POST("/:id/join", c.Race.Join)
			races.POST("/:id/leave", c.Race.Leave)
			races.POST("/:id/complete", c.Race.Complete)
			races.GET("/:id/group", c.Group.GetByRace)
		}

		groups := authenticated.Group("/groups")
		{
			groups.POST("", c.Group.Create)
			groups.GET("", c.Group.Search)
			groups.GET("/mine", c.Group.MyGroups)
			groups.GET("/unread", c.Group.TotalUnread)
			groups.GET("/:id", c.Group.Get)
			groups.DELETE("/:id", c.Group.Delete)
			groups.POST("/:id/join", c.Group.Join)
			groups.POST("/:id/leave", c.Group.Leave)
			groups.GET("/:id/members", c.Group.Members)
			groups.GET("/:id/messages", c.Message.GroupHistory)
			groups.POST("/:id/messages", c.Message.SendToGroup)
			groups.POST("/:id/gear", c.Gear.CreateList)
			groups.GET("/:id/gear", c.Gear.Lists)
		}

		gear := authenticated.Group("/gear")
		{
			gear.POST("/:listId/items", c.Gear.AddItem)
			gear.PUT("/items/:itemId", c.Gear.UpdateItem)
			gear.DELETE("/items/:itemId", c.Gear.DeleteItem)
		}

		authenticated.GET("/feed", c.Post.Feed)
		posts := authenticated.Group("/posts")
		{
			posts.POST("", c.Post.Create)
			posts.POST("/:id/like", c.Post.Like)
			posts.DELETE("/:id/like", c.Post.Unlike)
			posts.POST("/:id/comments", c.Post.Comment)
		}

		conversations := authenticated.Group("/conversations")
		{
			conversations.GET("", c.Message.Conversations)
			conversations.GET("/:userId", c.Message.Open)
			conversations.POST("/:userId/messages", c.Message.Send)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", c.Notification.List)
			notifications.POST("/read-all", c.Notification.MarkAllRead)
			notifications.POST("/:id/read", c.Notification.MarkRead)
			notifications.DELETE("/:id", c.Notification.Delete)
		}

		// Real-time group chat
		authenticated.GET("/ws/groups/:groupId", c.Websocket.HandleConnection)
	}

	// --- Admin curation routes ---
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuth(admin.Username, admin.Password))
	{
		adminGroup.GET("/races", c.Race.AdminList)
		adminGroup.POST("/races", c.Race.AdminCreate)
		adminGroup.PUT("/races/:id", c.Race.AdminUpdate)
		adminGroup.DELETE("/races/:id", c.Race.AdminDelete)
		adminGroup.POST("/races/:id/approve", c.Race.AdminApprove)
		adminGroup.POST("/races/:id/reject", c.Race.AdminReject)
		adminGroup.POST("/races/import", c.Race.AdminImportCSV)
	}
}
