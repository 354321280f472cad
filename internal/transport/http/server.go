package http

import (
	"github.com/gin-gonic/gin"

	"examforge/internal/bootstrap"
	"examforge/internal/transport/http/handler"
	"examforge/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	// Intake boundary. Deliberately thin: store, queue, acknowledge.
	ingestHandler := handler.NewIngestHandler(app.IngestService)
	internal := router.Group("/internal")
	internal.POST("/ingest", ingestHandler.Ingest)
	internal.POST("/ingest/pdf", ingestHandler.IngestPDF)
	internal.POST("/reprocess", ingestHandler.Reprocess)

	authHandler := handler.NewAuthHandler(app.AuthService)
	examHandler := handler.NewExamHandler(app.ExamService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	examGroup := v1.Group("/exam")
	examGroup.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))
	examGroup.POST("", examHandler.Generate)
	examGroup.POST("/attempts", examHandler.RecordAttempt)

	return router
}
