package main

import (
	"context"
	"net/http"
	"time"

	"webservices-backend/internal/auth"
	"webservices-backend/internal/shared/middleware"
	"webservices-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares. Authenticate only resolves the identity; routes
	// that demand one layer RequireAuth on top.
	router.Use(
		middleware.Recovery(c.Config.App.Environment),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.Authenticate(c.Sessions, c.JWTManager, c.Config.Session.CookieName),
	)

	router.GET("/", welcomeHandler(c))
	router.GET("/health", healthCheckHandler(c))

	// ========================================
	// AUTH ROUTES
	// ========================================
	c.AuthHandler.RegisterRoutes(router.Group("/auth"))

	// ========================================
	// RESOURCE ROUTES
	// ========================================
	// Same controller everywhere; each schema decides its write policy.
	requireAuth := middleware.RequireAuth()

	c.Contacts.RegisterRoutes(router.Group("/contacts"), requireAuth)
	c.Projects.RegisterRoutes(router.Group("/projects"), requireAuth)
	c.Tasks.RegisterRoutes(router.Group("/tasks"), requireAuth)
	c.Books.RegisterRoutes(router.Group("/api/books"), requireAuth)

	// Unmatched routes get a generic 404 body.
	router.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Route not found",
			},
		})
	})

	return router
}

// ========================================
// WELCOME HANDLER
// ========================================
func welcomeHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, authenticated := auth.FromContext(c)

		payload := gin.H{
			"message":       "Welcome to the Web Services API",
			"version":       appCtx.Config.App.Version,
			"authenticated": authenticated,
			"endpoints": gin.H{
				"auth": gin.H{
					"test_login": "/auth/test-login (development only)",
					"current":    "/auth/current",
					"logout":     "/auth/logout",
				},
				"contacts": "/contacts (writes require auth)",
				"projects": "/projects",
				"tasks":    "/tasks",
				"books":    "/api/books (writes require auth)",
				"health":   "/health",
			},
		}
		if authenticated {
			payload["user"] = identity
		}

		c.JSON(http.StatusOK, payload)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil {
			dbStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = "error"
			}
		}

		sessionStatus := "ok"
		if appCtx.Sessions == nil {
			sessionStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Sessions.Ping(ctx); err != nil {
				sessionStatus = "error"
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"sessions": sessionStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
