package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
	pkgerrors "field-ops/backend/pkg/errors"
)

// TeamService 班组业务接口
type TeamService interface {
	Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*model.Team, error)
	GetByID(ctx context.Context, id string) (*model.Team, error)
	List(ctx context.Context, teamType string, active *bool) ([]model.Team, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerID string) (*model.Team, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, teamID string, req *dto.AddTeamMemberRequest) (*model.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, workerID string) error
	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
}

type teamService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeamService 创建 TeamService 实例
func NewTeamService(repo *repository.Repository, logger *zap.Logger) TeamService {
	return &teamService{repo: repo, logger: logger}
}

func (s *teamService) Create(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*model.Team, error) {
	if _, err := s.repo.Team.GetByCode(ctx, req.TeamCode); err == nil {
		return nil, pkgerrors.Conflict(13002, "班组编码已存在: "+req.TeamCode)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	team := &model.Team{
		TeamCode:     req.TeamCode,
		TeamName:     req.TeamName,
		TeamType:     req.TeamType,
		StationID:    req.StationID,
		SupervisorID: req.SupervisorID,
		IsActive:     true,
	}
	team.CreatedBy = &callerID
	team.UpdatedBy = &callerID

	if err := s.repo.Team.Create(ctx, team); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.Conflict(13002, "班组编码已存在: "+req.TeamCode)
		}
		s.logger.Error("创建班组失败", zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(13001, "班组不存在")
		}
		s.logger.Error("查询班组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (s *teamService) List(ctx context.Context, teamType string, active *bool) ([]model.Team, error) {
	return s.repo.Team.List(ctx, teamType, active)
}

func (s *teamService) Update(ctx context.Context, id string, req *dto.UpdateTeamRequest, callerID string) (*model.Team, error) {
	team, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TeamName != nil {
		team.TeamName = *req.TeamName
	}
	if req.TeamType != nil {
		team.TeamType = *req.TeamType
	}
	if req.StationID != nil {
		team.StationID = req.StationID
	}
	if req.SupervisorID != nil {
		team.SupervisorID = req.SupervisorID
	}
	if req.IsActive != nil {
		team.IsActive = *req.IsActive
	}
	team.UpdatedBy = &callerID

	if err := s.repo.Team.Update(ctx, team); err != nil {
		s.logger.Error("更新班组失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return team, nil
}

// Delete 存在进行中作业（已指派/施工中）的班组不允许删除
func (s *teamService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	active, err := s.repo.Operation.CountActiveByTeam(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return pkgerrors.Conflict(13003, "班组存在进行中的作业，不允许删除")
	}
	if err := s.repo.Team.Delete(ctx, id); err != nil {
		s.logger.Error("删除班组失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// AddMember 添加成员。曾退出的成员重新加入时复用原记录（唯一约束按 (team, worker)）。
func (s *teamService) AddMember(ctx context.Context, teamID string, req *dto.AddTeamMemberRequest) (*model.TeamMember, error) {
	if _, err := s.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	if _, err := s.repo.Worker.GetByID(ctx, req.WorkerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(14001, "工人不存在")
		}
		return nil, err
	}

	existing, err := s.repo.Team.GetMember(ctx, teamID, req.WorkerID)
	switch {
	case err == nil && existing.IsActive:
		return nil, pkgerrors.Conflict(13004, "该工人已是班组成员")
	case err == nil:
		if err := s.repo.Team.ReactivateMember(ctx, existing.MemberID, req.Role); err != nil {
			return nil, err
		}
		existing.IsActive = true
		existing.LeftAt = nil
		existing.Role = req.Role
		return existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	member := &model.TeamMember{
		TeamID:   teamID,
		WorkerID: req.WorkerID,
		Role:     req.Role,
		JoinedAt: time.Now(),
		IsActive: true,
	}
	if err := s.repo.Team.AddMember(ctx, member); err != nil {
		s.logger.Error("添加班组成员失败",
			zap.String("team_id", teamID),
			zap.String("worker_id", req.WorkerID),
			zap.Error(err))
		return nil, err
	}
	return member, nil
}

// RemoveMember 软移除：保留记录，置 is_active=false 并写入退出时间
func (s *teamService) RemoveMember(ctx context.Context, teamID, workerID string) error {
	member, err := s.repo.Team.GetMember(ctx, teamID, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound(13005, "班组成员不存在")
		}
		return err
	}
	if !member.IsActive {
		return pkgerrors.NotFound(13005, "班组成员不存在")
	}
	return s.repo.Team.RemoveMember(ctx, member.MemberID, time.Now())
}

func (s *teamService) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	if _, err := s.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.repo.Team.ListActiveMembers(ctx, teamID)
}
