package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// AllowedOrigins gates both CORS and websocket upgrades. Local client dev
// servers are always allowed; CLIENT_URL and the comma-separated
// ALLOWED_ORIGINS env vars extend the list for deployments.
var AllowedOrigins = buildAllowedOrigins()

func buildAllowedOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}

	return origins
}
