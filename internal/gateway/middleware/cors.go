package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// ParseOrigins splits a comma separated origin list. An empty list or a
// "*" entry means every origin.
func ParseOrigins(allowOrigin string) []string {
	var origins []string
	for _, origin := range strings.Split(allowOrigin, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			return nil
		}
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// CORS allows browser calls from allowOrigin, e.g. "*" or
// "https://shop.example,https://admin.shop.example".
func CORS(allowOrigin string) (gin.HandlerFunc, error) {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}

	if origins := ParseOrigins(allowOrigin); len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS origin %q: %w", allowOrigin, err)
	}
	return cors.New(cfg), nil
}
