package api_gateway

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// HealthCheck reports whether one backing dependency is usable
type HealthCheck func(ctx context.Context) error

const readinessTimeout = 2 * time.Second

func liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

// readiness runs every check concurrently and answers 503 if any fails
func readiness(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		results := make([]string, len(names))
		var g errgroup.Group
		for i, name := range names {
			i := i
			check := checks[name]
			g.Go(func() error {
				if err := check(ctx); err != nil {
					results[i] = err.Error()
					return err
				}
				results[i] = "ok"
				return nil
			})
		}
		err := g.Wait()

		deps := make(gin.H, len(names))
		for i, name := range names {
			deps[name] = results[i]
		}

		status, state := http.StatusOK, "ready"
		if err != nil {
			status, state = http.StatusServiceUnavailable, "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "dependencies": deps, "timestamp": time.Now().UTC()})
	}
}
