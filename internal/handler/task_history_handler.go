package handler

import (
	"net/http"
	"strconv"

	"projecthub/internal/middleware"
	"projecthub/internal/model"
	"projecthub/internal/service"
	"projecthub/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaskHistoryHandler struct {
	historyService service.TaskHistoryService
}

// NewTaskHistoryHandler sets up the routing dependencies for history endpoints
func NewTaskHistoryHandler(historyService service.TaskHistoryService) *TaskHistoryHandler {
	return &TaskHistoryHandler{historyService: historyService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *TaskHistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	view := middleware.RequireModulePermission(model.ModuleTaskHistory, middleware.ActionView)

	router.GET("/tasks/:taskId/history", view, h.GetTaskHistory)

	history := router.Group("/history", view)
	{
		history.GET("/recent", middleware.RequireRole(model.RoleAdmin), h.GetRecentHistory)
		history.GET("/my-projects", middleware.RequireRole(model.RoleProjectManager), h.GetMyProjectsHistory)
		history.GET("/mine", h.GetMyHistory)
	}
}

func historyLimit(c *gin.Context) int {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return limit
}

// GetTaskHistory handles GET /tasks/:taskId/history
// @Summary      Get a task's status history
// @Description  Rendered status-change messages, newest first. Developers may only view tasks assigned to them.
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        taskId  path      int  true  "Task ID"
// @Success      200     {object}  response.Response{data=[]service.TaskHistoryResponse}
// @Failure      403     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /tasks/{taskId}/history [get]
func (h *TaskHistoryHandler) GetTaskHistory(c *gin.Context) {
	entries, err := h.historyService.GetTaskHistory(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "taskId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetRecentHistory handles GET /history/recent
// @Summary      Recent activity across all projects
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max entries (default 20)"
// @Success      200    {object}  response.Response{data=[]service.TaskHistoryResponse}
// @Router       /history/recent [get]
func (h *TaskHistoryHandler) GetRecentHistory(c *gin.Context) {
	entries, err := h.historyService.GetRecentHistory(c.Request.Context(), historyLimit(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetMyProjectsHistory handles GET /history/my-projects
// @Summary      Recent activity in own projects
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max entries (default 20)"
// @Success      200    {object}  response.Response{data=[]service.TaskHistoryResponse}
// @Router       /history/my-projects [get]
func (h *TaskHistoryHandler) GetMyProjectsHistory(c *gin.Context) {
	entries, err := h.historyService.GetRecentHistoryForMyProjects(c.Request.Context(), middleware.ActorID(c), historyLimit(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}

// GetMyHistory handles GET /history/mine
// @Summary      Recent activity performed by the authenticated user
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max entries (default 20)"
// @Success      200    {object}  response.Response{data=[]service.TaskHistoryResponse}
// @Router       /history/mine [get]
func (h *TaskHistoryHandler) GetMyHistory(c *gin.Context) {
	entries, err := h.historyService.GetMyRecentHistory(c.Request.Context(), middleware.ActorID(c), historyLimit(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entries))
}
