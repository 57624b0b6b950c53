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

type AddTeamMembersRequest struct {
	Members []AddTeamMemberEntry `json:"members" binding:"required,min=1,dive"`
}

type AddTeamMemberEntry struct {
	UserID           uint  `json:"user_id" binding:"required"`
	SpecializationID *uint `json:"specialization_id"`
}

type TeamMemberResponse struct {
	ID             uint   `json:"id"`
	UserID         uint   `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Specialization string `json:"specialization"`
	AddedAt        string `json:"added_at"`
}

type TeamMemberWorkloadResponse struct {
	TeamMemberResponse
	OpenTaskCount int64 `json:"open_task_count"`
}

type RemoveMemberResponse struct {
	RemovedMemberID uint `json:"removed_member_id"`
	UnassignedTasks int  `json:"unassigned_tasks"`
}

// TeamMemberService manages project rosters. Removal cascades over the
// member's tasks in a single transaction so no task ever keeps a
// reference to a removed member.
type TeamMemberService interface {
	AddMembers(ctx context.Context, actorID, projectID uint, req AddTeamMembersRequest) ([]TeamMemberResponse, error)
	GetProjectMembers(ctx context.Context, projectID uint, search string, specializationID uint, page, limit int) ([]TeamMemberResponse, int64, error)
	GetProjectMembersWithWorkload(ctx context.Context, actorID, projectID uint) ([]TeamMemberWorkloadResponse, error)
	RemoveMember(ctx context.Context, actorID, memberID uint) (*RemoveMemberResponse, error)
}

type teamMemberService struct {
	teamMemberRepo repository.TeamMemberRepository
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	taskRepo       repository.TaskRepository
	history        TaskHistoryService
	txManager      repository.TransactionManager
}

func NewTeamMemberService(
	teamMemberRepo repository.TeamMemberRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	history TaskHistoryService,
	txManager repository.TransactionManager,
) TeamMemberService {
	return &teamMemberService{
		teamMemberRepo: teamMemberRepo,
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		taskRepo:       taskRepo,
		history:        history,
		txManager:      txManager,
	}
}

func memberToResponse(member *model.TeamMember) TeamMemberResponse {
	resp := TeamMemberResponse{
		ID:      member.ID,
		UserID:  member.UserID,
		AddedAt: member.AddedAt.Format(time.RFC3339),
	}
	if member.User.ID != 0 {
		resp.Name = member.User.Name
		resp.Email = member.User.Email
	}
	if member.Specialization != nil {
		resp.Specialization = member.Specialization.Name
	}
	return resp
}

// AddMembers adds one or more users to the actor's own project. The whole
// batch succeeds or fails together; a single duplicate or unknown user
// rejects the request.
func (s *teamMemberService) AddMembers(ctx context.Context, actorID, projectID uint, req AddTeamMembersRequest) ([]TeamMemberResponse, error) {
	var created []model.TeamMember

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.GetByID(txCtx, projectID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
		}
		if project.CreatedByID != actorID {
			return apperr.New(apperr.Unauthorized, "You are not authorized to manage members of this project")
		}

		seen := make(map[uint]bool, len(req.Members))
		members := make([]model.TeamMember, 0, len(req.Members))
		for _, entry := range req.Members {
			if seen[entry.UserID] {
				return apperr.Newf(apperr.DuplicateEntity, "User ID %d appears more than once in the request", entry.UserID)
			}
			seen[entry.UserID] = true

			user, err := s.userRepo.GetByID(txCtx, entry.UserID)
			if err != nil {
				return apperr.Newf(apperr.UserNotFound, "User not found with ID: %d", entry.UserID)
			}
			if user.Role.Name == model.RoleAdmin {
				return apperr.New(apperr.InvalidRequest, "Admin accounts cannot be added to project teams")
			}

			if entry.SpecializationID != nil {
				found, err := s.teamMemberRepo.SpecializationExists(txCtx, *entry.SpecializationID)
				if err != nil {
					return apperr.New(apperr.Internal, "")
				}
				if !found {
					return apperr.Newf(apperr.NotFound, "Specialization not found with ID: %d", *entry.SpecializationID)
				}
			}

			exists, err := s.teamMemberRepo.ExistsByUserAndProject(txCtx, entry.UserID, projectID)
			if err != nil {
				return apperr.New(apperr.Internal, "")
			}
			if exists {
				return apperr.Newf(apperr.DuplicateEntity, "User ID %d is already a member of this project", entry.UserID)
			}

			members = append(members, model.TeamMember{
				UserID:           entry.UserID,
				ProjectID:        projectID,
				SpecializationID: entry.SpecializationID,
			})
		}

		if err := s.teamMemberRepo.CreateBatch(txCtx, members); err != nil {
			return apperr.New(apperr.Internal, "Failed to add team members")
		}
		created = members

		log.Printf("Added %d member(s) to project ID %d by user ID %d", len(members), projectID, actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	responses := make([]TeamMemberResponse, 0, len(created))
	for i := range created {
		member, err := s.teamMemberRepo.GetByID(ctx, created[i].ID)
		if err != nil {
			responses = append(responses, memberToResponse(&created[i]))
			continue
		}
		responses = append(responses, memberToResponse(member))
	}
	return responses, nil
}

func (s *teamMemberService) GetProjectMembers(ctx context.Context, projectID uint, search string, specializationID uint, page, limit int) ([]TeamMemberResponse, int64, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, 0, apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
	}

	members, total, err := s.teamMemberRepo.ListByProject(ctx, projectID, search, specializationID, page, limit)
	if err != nil {
		return nil, 0, apperr.New(apperr.Internal, "Failed to retrieve team members")
	}

	responses := make([]TeamMemberResponse, 0, len(members))
	for i := range members {
		responses = append(responses, memberToResponse(&members[i]))
	}
	return responses, total, nil
}

// GetProjectMembersWithWorkload returns the roster of the actor's own
// project with each member's open task count, for assignment decisions.
func (s *teamMemberService) GetProjectMembersWithWorkload(ctx context.Context, actorID, projectID uint) ([]TeamMemberWorkloadResponse, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, apperr.Newf(apperr.NotFound, "Project not found with ID: %d", projectID)
	}
	if project.CreatedByID != actorID {
		return nil, apperr.New(apperr.Unauthorized, "You are not authorized to view this project's workload")
	}

	members, _, err := s.teamMemberRepo.ListByProject(ctx, projectID, "", 0, 1, 1000)
	if err != nil {
		return nil, apperr.New(apperr.Internal, "Failed to retrieve team members")
	}

	responses := make([]TeamMemberWorkloadResponse, 0, len(members))
	for i := range members {
		count, err := s.taskRepo.CountOpenByAssigneeAndProject(ctx, members[i].UserID, projectID)
		if err != nil {
			return nil, apperr.New(apperr.Internal, "Failed to compute member workload")
		}
		responses = append(responses, TeamMemberWorkloadResponse{
			TeamMemberResponse: memberToResponse(&members[i]),
			OpenTaskCount:      count,
		})
	}
	return responses, nil
}

// RemoveMember deletes a membership and force-unassigns every task the
// member held in that project, in one transaction. History rows are
// written from the pre-update snapshot so each row keeps the task's real
// previous status, and the change is attributed to the acting manager.
func (s *teamMemberService) RemoveMember(ctx context.Context, actorID, memberID uint) (*RemoveMemberResponse, error) {
	var resp *RemoveMemberResponse

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		member, err := s.teamMemberRepo.GetByID(txCtx, memberID)
		if err != nil {
			return apperr.Newf(apperr.NotFound, "Team member not found with ID: %d", memberID)
		}

		if member.Project.CreatedByID != actorID {
			return apperr.New(apperr.Unauthorized, "You are not authorized to manage members of this project")
		}

		assigned, err := s.taskRepo.ListByProjectAndAssignee(txCtx, member.ProjectID, member.UserID)
		if err != nil {
			return apperr.New(apperr.Internal, "")
		}

		recorded, err := s.history.RecordBulkUnassign(txCtx, assigned, model.TaskStatusUnassigned, actorID)
		if err != nil {
			return err
		}

		unassigned, err := s.taskRepo.UnassignAllForMember(txCtx, member.UserID, member.ProjectID)
		if err != nil {
			return apperr.New(apperr.Internal, "Failed to unassign tasks for removed member")
		}

		if err := s.teamMemberRepo.Delete(txCtx, member); err != nil {
			return apperr.New(apperr.Internal, "Failed to remove team member")
		}

		log.Printf("Removed member ID %d (user ID %d) from project ID %d, unassigned %d task(s), recorded %d history row(s)",
			memberID, member.UserID, member.ProjectID, unassigned, recorded)

		resp = &RemoveMemberResponse{
			RemovedMemberID: memberID,
			UnassignedTasks: int(unassigned),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
