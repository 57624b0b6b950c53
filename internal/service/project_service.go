package service

import (
	"context"
	"log"
	"time"

	"projecthub/internal/apperr"
	"projecthub/internal/model"
	"projecthub/internal/repository"
)

// --- DTOs ---

type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        *string             `json:"name"`
	Description *string             `json:"description"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	Status      model.ProjectStatus `json:"status"`
}

type ProjectResponse struct {
	ID          uint                `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	Status      model.ProjectStatus `json:"status"`
	CreatedBy   string              `json:"created_by"`
	CreatedByID uint                `json:"created_by_id"`
	CreatedAt   string              `json:"created_at"`
}

type ProjectDropdownItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ProjectService manages project lifecycle for project managers. A
// project is always scoped to its creator; there is no shared ownership.
type ProjectService interface {
	CreateProject(ctx context.Context, actorID uint, req CreateProjectRequest) (*ProjectResponse, error)
	GetProject(ctx context.Context, projectID uint) (*ProjectResponse, error)
	GetMyProjects(ctx context.Context, actorID uint, name string, status model.ProjectStatus, page, limit int) ([]ProjectResponse, int64, error)
	GetMyProjectsDropdown(ctx context.Context, actorID uint) ([]ProjectDropdownItem, error)
	UpdateProject(ctx context.Context, actorID, projectID uint, req UpdateProjectRequest) (*ProjectResponse, error)
}

type projectService struct {
	projectRepo repository.ProjectRepository
	txManager   repository.TransactionManager
}

func NewProjectService(projectRepo repository.ProjectRepository, txManager repository.TransactionManager) ProjectService {
	return &projectService{projectRepo: projectRepo, txManager: txManager}
}

func projectToResponse(project *model.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Status:      project.Status,
		CreatedBy:   project.CreatedBy.Name,
		CreatedByID: project.CreatedByID,
		CreatedAt:   project.CreatedAt.Format(time.RFC3339),
	}
}

// CreateProject creates an ACTIVE project owned by the actor
func (s *projectService) CreateProject(ctx context.Context, actorID uint, req CreateProjectRequest) (*ProjectResponse, error) {
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return nil, apperr.New(apperr.InvalidRequest, "Start date cannot be after end date")
	}

	project := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      model.ProjectStatusActive,
		CreatedByID: actorID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to create project")
	}

	log.Printf("Created project ID %d by user ID %d", project.ID, actorID)

	created, err := s.projectRepo.GetByID(ctx, project.ID)
	if err != nil {
		return projectToResponse(project), nil
	}
	return projectToResponse(created), nil
}

func (s *projectService) GetProject(ctx context.Context, projectID uint) (*ProjectResponse, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
	}
	return projectToResponse(project), nil
}

func (s *projectService) GetMyProjects(ctx context.Context, actorID uint, name string, status model.ProjectStatus, page, limit int) ([]ProjectResponse, int64, error) {
	projects, total, err := s.projectRepo.List(ctx, actorID, name, status, page, limit)
	if err != nil {
		return nil, 0, apperr.New(apperr.Internal, "Failed to retrieve projects")
	}

	responses := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		responses = append(responses, *projectToResponse(&projects[i]))
	}
	return responses, total, nil
}

func (s *projectService) GetMyProjectsDropdown(ctx context.Context, actorID uint) ([]ProjectDropdownItem, error) {
	projects, err := s.projectRepo.ListForDropdown(ctx, actorID)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve projects")
	}

	items := make([]ProjectDropdownItem, 0, len(projects))
	for _, project := range projects {
		items = append(items, ProjectDropdownItem{ID: project.ID, Name: project.Name})
	}
	return items, nil
}

// UpdateProject applies a partial update to the actor's own project
func (s *projectService) UpdateProject(ctx context.Context, actorID, projectID uint, req UpdateProjectRequest) (*ProjectResponse, error) {
	var project *model.Project

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		project, err = s.projectRepo.GetByID(txCtx, projectID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
		}
		if project.CreatedByID != actorID {
			return apperr.New(apperr.Unauthorized, "You are not authorized to update this project")
		}

		if req.Name != nil {
			project.Name = *req.Name
		}
		if req.Description != nil {
			project.Description = *req.Description
		}
		if req.StartDate != nil {
			project.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			project.EndDate = req.EndDate
		}
		if req.Status != "" {
			switch req.Status {
			case model.ProjectStatusActive, model.ProjectStatusCompleted, model.ProjectStatusArchived:
				project.Status = req.Status
			default:
				return apperr.Newf(apperr.InvalidRequest, "Unknown project status: %s", req.Status)
			}
		}

		if project.StartDate != nil && project.EndDate != nil && project.StartDate.After(*project.EndDate) {
			return apperr.New(apperr.InvalidRequest, "Start date cannot be after end date")
		}

		if err := s.projectRepo.Update(txCtx, project); err != nil {
			return apperr.New(apperr.Internal, "Failed to update project")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return projectToResponse(project), nil
}
