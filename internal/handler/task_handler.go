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

type TaskHandler struct {
	taskService service.TaskService
}

// NewTaskHandler sets up the routing dependencies for task endpoints
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:projectId")
	{
		projects.POST("/tasks", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionCreate), h.CreateTask)
		projects.GET("/tasks", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionView), h.ListProjectTasks)
		projects.GET("/tasks/unassigned", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionView), h.ListUnassignedTasks)
		projects.GET("/my-tasks", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionView), h.ListMyTasks)
		projects.GET("/members/:userId/tasks", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionView), h.ListMemberTasks)
	}

	tasks := router.Group("/tasks")
	{
		tasks.PATCH("/:taskId/assign", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionUpdate), h.AssignTask)
		tasks.PATCH("/:taskId/status", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionUpdate), h.UpdateTaskStatus)
	}

	router.GET("/my-tasks/upcoming-due", middleware.RequireModulePermission(model.ModuleTask, middleware.ActionView), h.ListMyUpcomingDueTasks)
}

// CreateTask handles POST /projects/:projectId/tasks
// @Summary      Create a task
// @Description  Creates a task in the manager's own project. With an assignee the task starts as TODO, otherwise UNASSIGNED.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int                        true  "Project ID"
// @Param        payload    body      service.CreateTaskRequest  true  "Create Task Payload"
// @Success      201        {object}  response.Response{data=service.TaskResponse}
// @Failure      400        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Router       /projects/{projectId}/tasks [post]
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req service.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "projectId"), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, task))
}

// ListProjectTasks handles GET /projects/:projectId/tasks
// @Summary      List project tasks
// @Description  Paginated project task list with search, status/priority filters and sorting
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId       path      int     true   "Project ID"
// @Param        search          query     string  false  "Title substring"
// @Param        status          query     string  false  "Task status"
// @Param        priority        query     string  false  "Task priority"
// @Param        sort_by         query     string  false  "Sort column"  Enums(due_date, priority, status, title, created_at)
// @Param        sort_direction  query     string  false  "asc or desc"
// @Param        page            query     int     false  "Page number (default 1)"
// @Param        limit           query     int     false  "Items per page (default 10)"
// @Success      200             {object}  response.Response{data=response.Paged}
// @Failure      404             {object}  response.Response
// @Router       /projects/{projectId}/tasks [get]
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	var filter service.TaskFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	params := pagination.Parse(c)
	tasks, total, err := h.taskService.GetProjectTasks(c.Request.Context(), parseUintParam(c, "projectId"), filter, params.Page, params.Limit)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{
		Items: tasks,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// ListUnassignedTasks handles GET /projects/:projectId/tasks/unassigned
// @Summary      List unassigned tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int     true   "Project ID"
// @Param        search     query     string  false  "Title substring"
// @Param        priority   query     string  false  "Task priority"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 10)"
// @Success      200        {object}  response.Response{data=response.Paged}
// @Router       /projects/{projectId}/tasks/unassigned [get]
func (h *TaskHandler) ListUnassignedTasks(c *gin.Context) {
	params := pagination.Parse(c)

	tasks, total, err := h.taskService.GetUnassignedTasks(
		c.Request.Context(),
		parseUintParam(c, "projectId"),
		c.Query("search"),
		model.TaskPriority(c.Query("priority")),
		params.Page, params.Limit,
	)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{
		Items: tasks,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// ListMyTasks handles GET /projects/:projectId/my-tasks
// @Summary      List own assigned tasks in a project
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project ID"
// @Success      200        {object}  response.Response{data=[]service.TaskResponse}
// @Failure      403        {object}  response.Response
// @Router       /projects/{projectId}/my-tasks [get]
func (h *TaskHandler) ListMyTasks(c *gin.Context) {
	tasks, err := h.taskService.GetMyTasksInProject(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "projectId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// ListMemberTasks handles GET /projects/:projectId/members/:userId/tasks
// @Summary      List a member's tasks in a project
// @Description  Visible to the project's manager and to fellow members viewing other members. Viewing yourself here is rejected.
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project ID"
// @Param        userId     path      int  true  "Member's user ID"
// @Success      200        {object}  response.Response{data=[]service.TaskResponse}
// @Failure      403        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /projects/{projectId}/members/{userId}/tasks [get]
func (h *TaskHandler) ListMemberTasks(c *gin.Context) {
	tasks, err := h.taskService.GetMemberTasksInProject(
		c.Request.Context(),
		middleware.ActorID(c),
		parseUintParam(c, "projectId"),
		parseUintParam(c, "userId"),
	)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}

// AssignTask handles PATCH /tasks/:taskId/assign
// @Summary      Assign a task
// @Description  Assigns an unassigned task to a project member, moving it to TODO
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId   path      int                        true  "Task ID"
// @Param        payload  body      service.AssignTaskRequest  true  "Assignee"
// @Success      200      {object}  response.Response{data=service.TaskResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /tasks/{taskId}/assign [patch]
func (h *TaskHandler) AssignTask(c *gin.Context) {
	var req service.AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	task, err := h.taskService.AssignTask(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "taskId"), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// UpdateTaskStatus handles PATCH /tasks/:taskId/status
// @Summary      Update task status
// @Description  Applies one state transition. The project the task belongs to is passed as a query parameter and must match.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        taskId     path      int                              true  "Task ID"
// @Param        projectId  query     int                              true  "Project ID"
// @Param        payload    body      service.UpdateTaskStatusRequest  true  "New Status"
// @Success      200        {object}  response.Response{data=service.TaskResponse}
// @Failure      400        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Router       /tasks/{taskId}/status [patch]
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	var req service.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	projectID := parseUintQuery(c, "projectId")
	if projectID == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "projectId query parameter is required"))
		return
	}

	task, err := h.taskService.UpdateTaskStatus(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "taskId"), projectID, req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}

// ListMyUpcomingDueTasks handles GET /my-tasks/upcoming-due
// @Summary      List own tasks due soon
// @Description  Open tasks assigned to the authenticated user due within the next 3 days
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.TaskResponse}
// @Router       /my-tasks/upcoming-due [get]
func (h *TaskHandler) ListMyUpcomingDueTasks(c *gin.Context) {
	tasks, err := h.taskService.GetMyUpcomingDueTasks(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tasks))
}
