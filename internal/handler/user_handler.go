package handler

import (
	"net/http"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"
	"projecthub/pkg/pagination"
	"projecthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

// NewUserHandler sets up the routing dependencies for user endpoints
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/me", h.GetMe)
	router.GET("/users", middleware.RequireModulePermission(model.ModuleUser, middleware.ActionView), h.ListUsers)
	router.GET("/users/:userId", middleware.RequireModulePermission(model.ModuleUser, middleware.ActionView), h.GetUser)
}

// GetUser handles GET /users/:userId
// @Summary      Get a user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId  path      int  true  "User ID"
// @Success      200     {object}  response.Response{data=service.UserResponse}
// @Failure      404     {object}  response.Response
// @Router       /users/{userId} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), parseUintParam(c, "userId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// GetMe handles GET /me
// @Summary      Get current user
// @Description  Returns the authenticated user's profile with flattened role permissions
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.ProfileResponse}
// @Failure      404  {object}  response.Response
// @Router       /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// ListUsers handles GET /users
// @Summary      List users for team selection
// @Description  Paginated list of managers and developers, optionally filtered by name or email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Name or email substring"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10)"
// @Success      200     {object}  response.Response{data=response.Paged}
// @Failure      500     {object}  response.Response
// @Router       /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := pagination.Parse(c)

	users, total, err := h.userService.ListUsersForTeamSelection(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{
		Items: users,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}
