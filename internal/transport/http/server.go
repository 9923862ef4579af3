package http

import (
	"fmt"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/monster-anshu/api-social-media/internal/auth"
	"github.com/monster-anshu/api-social-media/internal/chat"
	"github.com/monster-anshu/api-social-media/internal/config"
	"github.com/monster-anshu/api-social-media/internal/presence"
	"github.com/monster-anshu/api-social-media/internal/service/follows"
	"github.com/monster-anshu/api-social-media/internal/store"
)

// Deps bundles everything the HTTP layer serves.
type Deps struct {
	Store   store.Store
	Auth    *auth.Service
	Follows *follows.Service
	Chat    *chat.Service
	Hub     *presence.Hub
}

// NewServer builds the HTTP server with all API routes.
func NewServer(deps Deps, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(deps.Auth, logger)
	userHandlers := NewUserHandlers(deps.Store, deps.Follows, logger)
	postHandlers := NewPostHandlers(deps.Store, cfg.FeedLimit, logger)
	chatHandlers := NewChatHandlers(deps.Chat, logger)
	wsHandler := NewWSHandler(deps.Hub, deps.Auth, cfg.WSMessageLimit, logger)

	api := router.Group("/api")
	{
		api.POST("/auth/register", apiHandlers.Register)
		api.POST("/auth/login", apiHandlers.Login)
	}

	authorized := api.Group("")
	authorized.Use(AuthMiddleware(deps.Auth, logger))
	{
		authorized.GET("/users/me", userHandlers.Me)
		authorized.PUT("/users/me", userHandlers.UpdateMe)
		authorized.GET("/users/search", userHandlers.SearchUsers)
		authorized.GET("/users/id/:id", userHandlers.GetProfile)
		authorized.GET("/users/id/:id/followers", userHandlers.Followers)
		authorized.GET("/users/id/:id/following", userHandlers.Following)
		authorized.PUT("/users/follow/:id", userHandlers.Follow)
		authorized.PUT("/users/unfollow/:id", userHandlers.Unfollow)

		authorized.POST("/posts", postHandlers.Create)
		authorized.GET("/posts/feed", postHandlers.Feed)
		authorized.GET("/posts/:id", postHandlers.Get)
		authorized.PUT("/posts/:id", postHandlers.Update)
		authorized.DELETE("/posts/:id", postHandlers.Delete)
		authorized.PUT("/posts/:id/like", postHandlers.ToggleLike)
		authorized.POST("/posts/:id/comments", postHandlers.AddComment)
		authorized.GET("/posts/user/:id", postHandlers.ListByUser)

		authorized.POST("/chat/:id", chatHandlers.Send)
		authorized.GET("/chat/:id", chatHandlers.History)
		authorized.GET("/chat/partners", chatHandlers.Partners)
	}

	// The WebSocket upgrade hijacks the connection, which gin's response
	// writer refuses once headers are written. Mount /ws on a plain mux
	// in front of the gin router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	fmt.Fprint(c.Writer, "ok")
}
