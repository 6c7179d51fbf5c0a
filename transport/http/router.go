package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/faqbot"
	"github.com/flarexio/faqbot/auth"
	"github.com/flarexio/faqbot/history"

	mcpE "github.com/flarexio/faqbot/mcp"
)

// UseCORS allows credentialed requests from the given origins. An empty list
// leaves the engine untouched.
func UseCORS(r *gin.Engine, origins []string) {
	if len(origins) == 0 {
		return
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

func AddRouters(r *gin.Engine, endpoints faqbot.EndpointSet) {
	api := r.Group("/api")
	{
		api.POST("/query", QueryHandler(endpoints.Query))
		api.GET("/health", HealthHandler(endpoints.State))
	}
}

func AddAuthRouters(r *gin.Engine, endpoints auth.EndpointSet, cookie CookieConfig) {
	group := r.Group("/api/auth")
	{
		group.POST("/signup", SignupHandler(endpoints.Signup))
		group.POST("/login", LoginHandler(endpoints.Login, cookie))
		group.POST("/logout", LogoutHandler(cookie))
		group.GET("/verify", VerifyHandler(endpoints.Verify))
	}
}

func AddHistoryRouters(r *gin.Engine, endpoints history.EndpointSet, authEndpoints auth.EndpointSet) {
	api := r.Group("/api")
	{
		api.GET("/suggestions", SuggestionsHandler(endpoints.Suggestions))

		protected := api.Group("/history", Authenticated(authEndpoints.Verify))
		protected.GET("", ListHistoryHandler(endpoints.List))
		protected.POST("", CreateHistoryHandler(endpoints.Create))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
