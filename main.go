// api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trackwise/api/database"
	"trackwise/api/geoip"
	"trackwise/api/handlers"
	"trackwise/api/middleware"
	"trackwise/api/store"
	"trackwise/api/tracker"
	"trackwise/api/uaparser"
)

func main() {
	// Load .env file at the very start
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// Migrations run before anything touches the schema; an unreachable or
	// broken database stops the process here.
	if err := dbClient.Migrate(context.Background()); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// --- Stores ---
	userStore := store.NewUserStore(dbClient.DB)
	trackingStore := store.NewTrackingStore(dbClient.DB)
	sourceStore := store.NewSourceStore(dbClient.DB)
	visitorStore := store.NewVisitorStore(dbClient.DB)
	sessionStore := store.NewSessionStore(dbClient.DB)
	statsStore := store.NewStatsStore(dbClient.DB)

	// --- Capabilities ---
	// Both are immutable after construction and shared across requests.
	classifier := uaparser.NewRegex()
	locator := geoip.NewNoop()

	// --- Attribution pipeline ---
	resolver := tracker.NewVisitorResolver(trackingStore, sourceStore, visitorStore, classifier)
	sessionManager := tracker.NewSessionManager(sessionStore, locator)

	// --- Handlers ---
	sessionHandlers := handlers.NewSessionHandlers(resolver, sessionManager, trackingStore)
	adminHandlers := handlers.NewAdminHandlers(userStore, trackingStore, sourceStore, visitorStore, sessionStore, statsStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		if err := dbClient.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Tracking endpoints: no auth gate, the tenant travels in x-tracking-id.
	session := r.Group("/session")
	{
		session.POST("/start", sessionHandlers.StartSession)
		session.POST("/end", sessionHandlers.EndSession)
		session.POST("/event", sessionHandlers.RecordEvent)
	}

	admin := r.Group("/admin")
	{
		// Signup is the only open admin endpoint.
		admin.POST("/users", adminHandlers.CreateUser)

		protected := admin.Group("/")
		protected.Use(middleware.AuthRequired(userStore))
		{
			protected.POST("/authenticate", adminHandlers.Authenticate)

			protected.POST("/trackings", adminHandlers.CreateTracking)
			protected.GET("/trackings", adminHandlers.ListTrackings)
			protected.GET("/trackings/:id", adminHandlers.GetTracking)
			protected.PATCH("/trackings/:id", adminHandlers.RenameTracking)
			protected.DELETE("/trackings/:id", adminHandlers.DeleteTracking)

			protected.GET("/trackings/:id/counts", adminHandlers.TrackingCounts)
			protected.GET("/trackings/:id/visitors", adminHandlers.ListVisitors)
			protected.GET("/trackings/:id/sessions", adminHandlers.ListSessions)

			protected.POST("/trackings/:id/sources", adminHandlers.CreateSource)
			protected.GET("/trackings/:id/sources", adminHandlers.ListSources)
			protected.DELETE("/trackings/:id/sources/:name", adminHandlers.DeleteSource)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Tracking API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Tracking API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
