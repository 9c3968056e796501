package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/raseed-labs/raseed-backend/config"
)

// CORSMiddleware allows the configured origins. Entries of the form
// "*.example.com" match any subdomain; a lone "*" or an empty list allows all.
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Length",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposeHeaders: []string{
			"Content-Length",
			RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
		return cors.New(corsConfig)
	}

	origins := slices.Clone(cfg.AllowedOrigins)
	corsConfig.AllowCredentials = true
	corsConfig.AllowOriginFunc = func(origin string) bool {
		return originAllowed(origins, origin)
	}
	return cors.New(corsConfig)
}

func originAllowed(allowed []string, origin string) bool {
	for _, candidate := range allowed {
		if candidate == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(candidate, "*"); ok && strings.HasPrefix(suffix, ".") {
			if strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}
