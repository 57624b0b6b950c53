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

type TeamMemberHandler struct {
	teamMemberService service.TeamMemberService
}

// NewTeamMemberHandler sets up the routing dependencies for membership endpoints
func NewTeamMemberHandler(teamMemberService service.TeamMemberService) *TeamMemberHandler {
	return &TeamMemberHandler{teamMemberService: teamMemberService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup.
// All routes here assume RequireAuth ran on the parent group.
func (h *TeamMemberHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:projectId")
	{
		projects.POST("/members", middleware.RequireModulePermission(model.ModuleTeamMember, middleware.ActionCreate), h.AddMembers)
		projects.GET("/members", middleware.RequireModulePermission(model.ModuleTeamMember, middleware.ActionView), h.ListMembers)
		projects.GET("/members/workload", middleware.RequireModulePermission(model.ModuleTeamMember, middleware.ActionView), h.ListMembersWithWorkload)
	}

	router.DELETE("/members/:memberId", middleware.RequireModulePermission(model.ModuleTeamMember, middleware.ActionDelete), h.RemoveMember)
}

// AddMembers handles POST /projects/:projectId/members
// @Summary      Add team members
// @Description  Adds one or more users to the manager's own project. The batch is atomic.
// @Tags         team-members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int                             true  "Project ID"
// @Param        payload    body      service.AddTeamMembersRequest   true  "Members"
// @Success      201        {object}  response.Response{data=[]service.TeamMemberResponse}
// @Failure      400        {object}  response.Response
// @Failure      403        {object}  response.Response
// @Failure      409        {object}  response.Response
// @Router       /projects/{projectId}/members [post]
func (h *TeamMemberHandler) AddMembers(c *gin.Context) {
	var req service.AddTeamMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	members, err := h.teamMemberService.AddMembers(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "projectId"), req)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, members))
}

// ListMembers handles GET /projects/:projectId/members
// @Summary      List team members
// @Tags         team-members
// @Produce      json
// @Security     BearerAuth
// @Param        projectId         path      int     true   "Project ID"
// @Param        search            query     string  false  "Name or email substring"
// @Param        specialization_id query     int     false  "Specialization filter"
// @Param        page              query     int     false  "Page number (default 1)"
// @Param        limit             query     int     false  "Items per page (default 10)"
// @Success      200               {object}  response.Response{data=response.Paged}
// @Failure      404               {object}  response.Response
// @Router       /projects/{projectId}/members [get]
func (h *TeamMemberHandler) ListMembers(c *gin.Context) {
	params := pagination.Parse(c)

	members, total, err := h.teamMemberService.GetProjectMembers(
		c.Request.Context(),
		parseUintParam(c, "projectId"),
		c.Query("search"),
		parseUintQuery(c, "specialization_id"),
		params.Page, params.Limit,
	)
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.Paged{
		Items: members,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}))
}

// ListMembersWithWorkload handles GET /projects/:projectId/members/workload
// @Summary      List team members with open task counts
// @Description  Roster of the manager's own project with each member's open task count
// @Tags         team-members
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      int  true  "Project ID"
// @Success      200        {object}  response.Response{data=[]service.TeamMemberWorkloadResponse}
// @Failure      403        {object}  response.Response
// @Router       /projects/{projectId}/members/workload [get]
func (h *TeamMemberHandler) ListMembersWithWorkload(c *gin.Context) {
	members, err := h.teamMemberService.GetProjectMembersWithWorkload(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "projectId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, members))
}

// RemoveMember handles DELETE /members/:memberId
// @Summary      Remove a team member
// @Description  Removes the member and unassigns every task they held in the project, recording history for each
// @Tags         team-members
// @Produce      json
// @Security     BearerAuth
// @Param        memberId  path      int  true  "Team member ID"
// @Success      200       {object}  response.Response{data=service.RemoveMemberResponse}
// @Failure      403       {object}  response.Response
// @Failure      404       {object}  response.Response
// @Router       /members/{memberId} [delete]
func (h *TeamMemberHandler) RemoveMember(c *gin.Context) {
	result, err := h.teamMemberService.RemoveMember(c.Request.Context(), middleware.ActorID(c), parseUintParam(c, "memberId"))
	if err != nil {
		status, resp := response.FromError(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
