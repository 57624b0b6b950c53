package handler

import (
	"net/http"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"
	"projecthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService service.RoleService
}

func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/roles/:roleName", middleware.RequireRole(model.RoleAdmin), h.GetRole)
}

// GetRole handles GET /roles/:roleName
// @Summary      Get a role with its permission grid
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        roleName  path      string  true  "Role name (ADMIN, PROJECT_MANAGER, DEVELOPER)"
// @Success      200       {object}  response.Response{data=service.RoleResponse}
// @Failure      403       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /roles/{roleName} [get]
func (h *RoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("roleName"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}
