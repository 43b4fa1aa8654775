package main

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"stockaide_go_backend/cmd/api/config"
	"stockaide_go_backend/internal/api"
	"stockaide_go_backend/internal/auth"
	"stockaide_go_backend/internal/database"
	"stockaide_go_backend/internal/models"
	"stockaide_go_backend/internal/services"
	"stockaide_go_backend/internal/wsocket"

	"github.com/gorilla/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	analysisBaseURL := os.Getenv("ANALYSIS_API_URL")
	if analysisBaseURL == "" {
		log.Fatal("ANALYSIS_API_URL is not set in the environment")
	}

	cfg := config.NewConfig()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	database.InitDB()

	analysisClient, err := services.NewAnalysisClient(
		analysisBaseURL,
		services.WithHTTPClient(&http.Client{Timeout: cfg.AnalysisTimeout}),
	)
	if err != nil {
		log.Fatalf("Failed to create analysis client: %v", err)
	}

	chatHistoryDir := os.Getenv("CHAT_HISTORY_DIR")
	if chatHistoryDir == "" {
		chatHistoryDir = cfg.ChatHistoryDir
	}
	sessionStore, err := services.NewFileSessionStore(chatHistoryDir)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}

	// Initialize internal services
	userService := services.NewUserService(database.DB)
	chatSessionService := services.NewChatSessionService(analysisClient, sessionStore, logger)
	watchlistService := services.NewWatchlistService(services.NewWatchlistStore(database.DB))
	portfolioService := services.NewPortfolioService(services.NewPortfolioStore(database.DB), analysisClient, logger)

	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173" // Default to your local frontend
	}

	// CORS middleware configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// WebSocket upgrader
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // TODO: restrict to ALLOWED_ORIGINS before exposing publicly
		},
	}

	wsHandler := wsocket.NewHandler(chatSessionService, upgrader, logger)

	api.SetupRoutes(r, analysisClient, chatSessionService, watchlistService, portfolioService, userService, cfg.WatchlistConfirmation)
	auth.SetupRoutes(r, userService)

	r.GET("/ws", auth.AuthMiddleware(userService), func(c *gin.Context) {
		user, _ := c.Get("user")
		userModel, ok := user.(*models.User)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast user to *models.User"})
			return
		}
		wsHandler.HandleWebSocket(c.Writer, c.Request, userModel)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
