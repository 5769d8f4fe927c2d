package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns panics into a generic 500. In non-production mode the
// panic detail is echoed to the client to ease debugging; in production it
// only reaches the logs.
func Recovery(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Interface("error", err).
					Msg("Panic recovered")

				body := gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal server error",
					},
				}
				if environment != "production" {
					body["detail"] = err
				}

				c.JSON(http.StatusInternalServerError, body)
				c.Abort()
			}
		}()

		c.Next()
	}
}
