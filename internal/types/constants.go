package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Poll status values. Transitions are one-way: active -> closed.
const (
	PollStatusActive = "active"
	PollStatusClosed = "closed"
)

// TemplateCategories are the valid workout archive categories.
var TemplateCategories = []string{"Team of 2", "Team of 3", "Solo", "Custom"}

func IsValidTemplateCategory(category string) bool {
	for _, c := range TemplateCategories {
		if c == category {
			return true
		}
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
