package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/participation-check/internal/repository"
	"github.com/example/participation-check/internal/usecase"
)

// Verifier is the pipeline surface the HTTP layer depends on.
type Verifier interface {
	Verify(ctx context.Context, req usecase.Request) (*usecase.Response, error)
	GetResult(ctx context.Context, requestID string) (*repository.ParticipationRecord, error)
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, v Verifier) {
	router.Use(CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.OPTIONS("/process-image", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "CORS preflight successful"})
	})

	router.POST("/process-image", func(c *gin.Context) {
		var req usecase.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusInternalServerError, usecase.ErrorEnvelope(req, err))
			return
		}

		resp, err := v.Verify(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, usecase.ErrorEnvelope(req, err))
			return
		}

		// Soft failures (persistence) ride along inside a 200 response.
		c.JSON(http.StatusOK, resp)
	})

	router.GET("/results/:id", func(c *gin.Context) {
		requestID := c.Param("id")
		rec, err := v.GetResult(c.Request.Context(), requestID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "result not found"})
			return
		}
		c.JSON(http.StatusOK, rec)
	})
}

// CORSMiddleware sets the permissive headers expected by browser callers on
// every response, including errors.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "OPTIONS,POST,GET")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Amz-Date, X-Api-Key, X-Amz-Security-Token")
		c.Next()
	}
}
