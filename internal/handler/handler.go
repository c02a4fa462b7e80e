package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxviazov/user-directory-service/internal/service"
)

// Register mounts all public routes on the given engine.
// The user service doubles as the readiness probe: it pings the upstream and the cache store.
func Register(r *gin.Engine, pinger Pinger, users service.UserService) {
	h := NewHealthHandler(pinger)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Docs endpoints (root-level)
	RegisterDocs(r)

	uh := NewUserHandler(users)
	uh.RegisterPages(r)

	api := r.Group(APIV1Prefix)
	{
		health := api.Group("/health")
		{
			health.GET("/live", h.Liveness)
			health.GET("/ready", h.Readiness)
		}
		uh.Register(api)
	}
}
