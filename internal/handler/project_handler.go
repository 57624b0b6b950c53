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

type ProjectHandler struct {
	projectService service.ProjectService
}

// NewProjectHandler sets up the routing dependencies for project endpoints
func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.POST("", middleware.RequireModulePermission(model.ModuleProject, middleware.ActionCreate), h.CreateProject)
		projects.GET("", middleware.RequireModulePermission(model.ModuleProject, middleware.ActionView), h.ListMyProjects)
		projects.GET("/dropdown", middleware.RequireModulePermission(model.ModuleProject, middleware.ActionView), h.ListDropdown)
		projects.GET("/:projectId", middleware.RequireModulePermission(model.ModuleProject, middleware.ActionView), h.GetProject)
		projects.PUT("/:projectId", middleware.RequireModulePermission(model.ModuleProject, middleware.ActionUpdate), h.UpdateProject)
	}
}

// CreateProject handles POST /projects
// @Summary      Create a project
// @Description  Creates an active project owned by the authenticated manager
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectRequest  true  "Create Project Payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Router       /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// ListMyProjects handles GET /projects
// @Summary      List own projects
// @Description  Paginated list of projects created by the authenticated user
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        name    query     string  false  "Name substring"
// @Param        status  query     string  false  "Project status"  Enums(ACTIVE, COMPLETED, ARCHIVED)
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 10)"
// @Success      200     {object}  response.Response{data=response.Paged}
// @Router       /projects [get]
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	params := pagination.Parse(c)

	projects, total, err := h.projectService.GetMyProjects(
		c.Request.Context(),
		middleware.ActorID(c),
		c.Query("name"),
		model.ProjectStatus(c.Query("status")),
		params.Page, params.Limit,
	)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{
		Items: projects,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// ListDropdown handles GET /projects/dropdown
// @Summary      List own active projects for selection
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ProjectDropdownItem}
// @Router       /projects/dropdown [get]
func (h *ProjectHandler) ListDropdown(c *gin.Context) {
	items, err := h.projectService.GetMyProjectsDropdown(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// GetProject handles GET /projects/:projectId
// @Summary      Get project detail
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project ID"
// @Success      200        {object}  response.Response{data=service.ProjectResponse}
// @Failure      404        {object}  response.Response
// @Router       /projects/{projectId} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), parseUintParam(c, "projectId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// UpdateProject handles PUT /projects/:projectId
// @Summary      Update a project
// @Description  Partially updates the authenticated manager's own project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int                           true  "Project ID"
// @Param        payload    body      service.UpdateProjectRequest  true  "Update Project Payload"
// @Success      200        {object}  response.Response{data=service.ProjectResponse}
// @Failure      400        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /projects/{projectId} [put]
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "projectId"), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}
