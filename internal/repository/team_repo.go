package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
)

// TeamRepository 班组数据访问接口
type TeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	GetByCode(ctx context.Context, code string) (*model.Team, error)
	List(ctx context.Context, teamType string, active *bool) ([]model.Team, error)
	Update(ctx context.Context, team *model.Team) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, member *model.TeamMember) error
	GetMember(ctx context.Context, teamID, workerID string) (*model.TeamMember, error)
	ListActiveMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
	RemoveMember(ctx context.Context, memberID string, leftAt time.Time) error
	ReactivateMember(ctx context.Context, memberID, role string) error
}

type teamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Preload("Members", "is_active = ?", true).
		Preload("Members.Worker").
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) GetByCode(ctx context.Context, code string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("team_code = ?", code).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, teamType string, active *bool) ([]model.Team, error) {
	query := r.db.WithContext(ctx).Model(&model.Team{})
	if teamType != "" {
		query = query.Where("team_type = ?", teamType)
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}
	var teams []model.Team
	err := query.Order("team_code ASC").Find(&teams).Error
	return teams, err
}

func (r *teamRepo) Update(ctx context.Context, team *model.Team) error {
	return r.db.WithContext(ctx).
		Model(&model.Team{}).
		Where("team_id = ?", team.TeamID).
		Updates(map[string]interface{}{
			"team_name":     team.TeamName,
			"team_type":     team.TeamType,
			"station_id":    team.StationID,
			"supervisor_id": team.SupervisorID,
			"is_active":     team.IsActive,
			"updated_by":    team.UpdatedBy,
		}).Error
}

func (r *teamRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&model.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Where("team_id = ?", id).Delete(&model.Team{}).Error
	})
}

func (r *teamRepo) AddMember(ctx context.Context, member *model.TeamMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *teamRepo) GetMember(ctx context.Context, teamID, workerID string) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND worker_id = ?", teamID, workerID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamRepo) ListActiveMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	var members []model.TeamMember
	err := r.db.WithContext(ctx).
		Preload("Worker").
		Where("team_id = ? AND is_active = ?", teamID, true).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

func (r *teamRepo) RemoveMember(ctx context.Context, memberID string, leftAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{
			"is_active": false,
			"left_at":   leftAt,
		}).Error
}

func (r *teamRepo) ReactivateMember(ctx context.Context, memberID, role string) error {
	return r.db.WithContext(ctx).
		Model(&model.TeamMember{}).
		Where("member_id = ?", memberID).
		Updates(map[string]interface{}{
			"is_active": true,
			"left_at":   nil,
			"role":      role,
			"joined_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
