package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pkdx/pkdb-api/internal/middleware"
	"github.com/pkdx/pkdb-api/internal/models"
	"github.com/pkdx/pkdb-api/internal/service"
)

// RegisterRoutes mounts the API surface on the provided engine. Routes
// whose policy is purely role-based carry an RBAC guard here; rules that
// also depend on ownership or lock state are enforced inside the services.
func RegisterRoutes(r *gin.Engine, authSvc *service.AuthService, auth *AuthHandler, datasets *DatasetHandler, roles *RoleHandler, metrics *MetricsHandler) {
	r.GET("/health", metrics.Health)
	r.GET("/metrics", metrics.Prometheus)

	r.POST("/auth/register", auth.Register)
	r.POST("/auth/token", auth.Token)

	secured := r.Group("", middleware.JWT(authSvc))

	secured.POST("/datasets", datasets.Create)
	secured.GET("/datasets", datasets.List)
	secured.GET("/datasets/:id", datasets.Get)
	secured.PATCH("/datasets/:id", datasets.Update)
	secured.POST("/datasets/:id/lock", datasets.Lock)
	secured.POST("/datasets/:id/unlock", datasets.Unlock)
	secured.POST("/datasets/:id/requests", datasets.RequestAccess)
	secured.GET("/datasets/:id/requests", datasets.ListRequests)
	secured.GET("/datasets/:id/audit", datasets.AuditLog)

	secured.POST("/roles/requests", roles.Create)

	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	secured.GET("/roles/requests", adminOnly, roles.List)
	secured.POST("/roles/requests/:id/approve", adminOnly, roles.Approve)
	secured.POST("/roles/requests/:id/reject", adminOnly, roles.Reject)
}
