package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scoutpro/scoutpro-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	if deps.MaxUploadSize > 0 {
		r.MaxMultipartMemory = deps.MaxUploadSize
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "scoutpro-api-service",
		})
	})

	authHandler := handler.NewAuthHandler(deps)
	playerHandler := handler.NewPlayerHandler(deps)

	protect := AuthMiddleware(deps.Tokens, deps.Coaches)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// POST /api/v1/signup - Register a coach account
		v1.POST("/signup", authHandler.Signup)

		// POST /api/v1/login - Exchange credentials for a token
		v1.POST("/login", authHandler.Login)

		// GET /api/v1/user - Authenticated coach with roster
		v1.GET("/user", protect, authHandler.GetUser)

		players := v1.Group("/players", protect)
		{
			// POST /api/v1/players - Register a single player
			players.POST("", playerHandler.CreatePlayer)

			// GET /api/v1/players - List the coach's players
			players.GET("", playerHandler.ListPlayers)

			// POST /api/v1/players/import - Bulk register from a workbook
			players.POST("/import", playerHandler.ImportPlayers)

			// GET /api/v1/players/:player_id - Get player details
			players.GET("/:player_id", playerHandler.GetPlayer)

			// PUT /api/v1/players/:player_id - Edit player info
			players.PUT("/:player_id", playerHandler.UpdatePlayer)

			// GET /api/v1/players/:player_id/card - Get the scouting card
			players.GET("/:player_id/card", playerHandler.GetCard)
		}
	}

	return r
}
