package employee

import (
	"staffsync/internal/middleware"
	"staffsync/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService) {
	employees := r.Group("/employees")
	{
		employees.GET("/options", middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionRead), handler.GetOptions)
		employees.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceEmployee, rbac.ActionRead), handler.GetByID)
	}
}
