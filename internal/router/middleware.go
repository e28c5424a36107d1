package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/a2b-grocery/storefront/pkg/global"
	"github.com/a2b-grocery/storefront/pkg/storefront"
)

const (
	redirectHome       = "/"
	redirectLogin      = "/login"
	redirectAddAddress = "/add-address"
)

func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// RequireAuth admits signed-in, non-guest sessions.
func RequireAuth(app *storefront.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !app.Session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.RedirectResponse("Please login to continue", redirectLogin))
			return
		}
		c.Next()
	}
}

// RequireSession admits any session, guests included.
func RequireSession(app *storefront.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Session.Current() == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, global.RedirectResponse("Please login to continue", redirectLogin))
			return
		}
		c.Next()
	}
}

// RequireAddress blocks browsing until a delivery address is resolved.
// Prices and availability depend on it.
func RequireAddress(app *storefront.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !app.Addresses.HasAddress() {
			c.AbortWithStatusJSON(http.StatusPreconditionFailed, global.RedirectResponse("Please add a delivery address first", redirectAddAddress))
			return
		}
		c.Next()
	}
}
