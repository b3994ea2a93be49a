package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bambuco/boa/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	Repositories *int   `json:"repositories,omitempty"`
	LastReload   string `json:"last_reload,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	Error        string `json:"error,omitempty"`
}

type infraResponse struct {
	ServingMode string                     `json:"serving_mode"`
	Components  map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		repoCount := d.Catalogue.Count()
		lastReload := d.Catalogue.GetLastReload()
		lastReloadStr := "never"
		if !lastReload.IsZero() {
			lastReloadStr = lastReload.Format("2006-01-02 15:04:05")
		}

		redisStatus := checkRedis(d)

		components := map[string]componentStatus{
			"repositories": {
				OK:           repoCount > 0,
				Repositories: &repoCount,
				LastReload:   lastReloadStr,
			},
			"redis": redisStatus,
		}

		response := infraResponse{
			ServingMode: determineServingMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServingMode(components map[string]componentStatus) string {
	// No banks loaded means neither search nor playback can work.
	if repos, exists := components["repositories"]; exists && !repos.OK {
		return "critical"
	}

	// Redis down only breaks selection persistence.
	if redis, exists := components["redis"]; exists && !redis.OK {
		return "degraded"
	}

	return "operational"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "selection-persistence-disabled",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := d.RedisClient.Ping(ctx).Err()
	if err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "selection-persistence-disabled",
			Error:  "timeout",
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "optimal",
		Impact: "selection-persistence-enabled",
		Error:  "none",
	}
}
