package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/workforce-ai/roster-import/internal/api/handlers"
	"github.com/workforce-ai/roster-import/internal/api/middleware"
	"github.com/workforce-ai/roster-import/internal/api/response"
	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/imports"
	"github.com/workforce-ai/roster-import/internal/repository"
	"github.com/workforce-ai/roster-import/internal/uploader"
	"github.com/workforce-ai/roster-import/pkg/auth"
)

// NewRouter creates and configures the Gin router with all routes and middleware.
func NewRouter(pool *pgxpool.Pool, cfg *config.Config) *gin.Engine {
	importRepo := repository.NewImportRepository(pool)
	idempotencyRepo := repository.NewIdempotencyRepository(pool)

	service := imports.NewService(importRepo, NewUploader(pool, cfg), importer.Options{
		Workers:           cfg.Import.ValidationWorkers,
		ParallelThreshold: cfg.Import.ParallelThreshold,
	})

	return newEngine(handlers.NewImportHandler(service, idempotencyRepo, cfg), cfg)
}

// NewUploader picks the batch destination: the backend endpoint when one is
// configured, otherwise the learners table.
func NewUploader(pool *pgxpool.Pool, cfg *config.Config) uploader.Uploader {
	if cfg.BatchUpload.Enabled() {
		return uploader.NewHTTPUploader(cfg.BatchUpload.URL, cfg.BatchUpload.Token, cfg.BatchUpload.Timeout)
	}
	return uploader.NewPostgresUploader(repository.NewLearnerRepository(pool))
}

func newEngine(importHandler *handlers.ImportHandler, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxFileSize

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.CorrelationMiddleware())
	r.Use(middleware.StructuredLogging())

	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "roster-import",
		})
	})

	// API v1 routes (authenticated)
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(&cfg.JWT))
	{
		importers := middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator)
		readers := middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator, auth.RoleViewer)

		v1.POST("/imports", importers, importHandler.HandleCreate)
		v1.GET("/imports", readers, importHandler.HandleList)
		v1.GET("/imports/:import_id", readers, importHandler.HandleGet)
		v1.PUT("/imports/:import_id/file", importers, importHandler.HandleSelectFile)
		v1.POST("/imports/:import_id/upload", importers, importHandler.HandleSubmit)
	}

	// Token generation endpoint (dev only, generates test JWTs)
	r.POST("/dev/token", devTokenHandler(cfg))

	return r
}

// devTokenHandler returns a handler that generates test JWTs for development.
func devTokenHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OperatorID string `json:"operator_id"`
			Role       string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "invalid request", nil)
			return
		}

		operatorID, err := uuid.Parse(req.OperatorID)
		if err != nil {
			response.BadRequest(c, "invalid operator_id", nil)
			return
		}
		switch req.Role {
		case "":
			req.Role = auth.RoleOperator
		case auth.RoleAdmin, auth.RoleOperator, auth.RoleViewer:
		default:
			response.BadRequest(c, "unknown role", nil)
			return
		}

		token, err := auth.GenerateToken(cfg.JWT.Secret, cfg.JWT.Issuer, operatorID, req.Role, cfg.JWT.ExpiryHours)
		if err != nil {
			response.InternalError(c, "failed to generate token")
			return
		}

		response.Success(c, http.StatusOK, gin.H{"token": token})
	}
}
