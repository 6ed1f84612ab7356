package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tastewire/tastewire/internal/gateway/upstream"
	"github.com/tastewire/tastewire/internal/modules/service"
)

// mapServiceError translates orchestrator errors into an HTTP status and a
// caller-safe message. Upstream provider failures keep the provider name so
// operators can tell a Qloo outage from an OpenAI one.
func mapServiceError(err error) (int, string) {
	if errors.Is(err, service.ErrProjectNotFound) {
		return http.StatusNotFound, "Project not found"
	}

	var ue *upstream.Error
	if errors.As(err, &ue) {
		switch ue.Kind {
		case upstream.KindCredential:
			return http.StatusUnauthorized, fmt.Sprintf("%s API authentication failed", providerLabel(ue.Provider))
		case upstream.KindRateLimited:
			return http.StatusTooManyRequests, fmt.Sprintf("%s API rate limit exceeded", providerLabel(ue.Provider))
		}
		// every other upstream kind (forbidden, bad request, upstream 404,
		// exhausted transient) is an unclassified failure to the caller
		return http.StatusInternalServerError, "Failed to generate insights"
	}

	return http.StatusInternalServerError, "Failed to generate insights"
}

func providerLabel(provider string) string {
	switch provider {
	case upstream.ProviderQloo:
		return "Qloo"
	case upstream.ProviderOpenAI:
		return "OpenAI"
	default:
		return provider
	}
}
