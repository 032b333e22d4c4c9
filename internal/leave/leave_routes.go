package leave

import (
	"staffsync/internal/middleware"
	"staffsync/internal/rbac"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes expects r to be authenticated already. submitGuards run
// before Submit only (idempotency).
func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	submitGuards ...gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	{
		submit := append([]gin.HandlerFunc{middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate)}, submitGuards...)
		leaves.POST("", append(submit, handler.Submit)...)

		leaves.GET("/me", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.ListMine)
		leaves.GET("/balance", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetMyBalance)
		leaves.GET("/review", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.ListForReview)
		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead), handler.GetByID)
		leaves.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide), handler.Decide)
	}

	r.GET("/employees/:id/leave-balance", middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionReview), handler.GetEmployeeBalance)
}
