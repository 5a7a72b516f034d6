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

// ReadingService 抄表业务接口
type ReadingService interface {
	CreateTemplate(ctx context.Context, req *dto.CreateReadingTemplateRequest, callerID string) (*model.ReadingTemplate, error)
	GetTemplate(ctx context.Context, id string) (*model.ReadingTemplate, error)
	ListTemplates(ctx context.Context, frequency string, active *bool) ([]model.ReadingTemplate, error)
	UpdateTemplate(ctx context.Context, id string, req *dto.UpdateReadingTemplateRequest, callerID string) (*model.ReadingTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error
	CreateRound(ctx context.Context, req *dto.CreateReadingRoundRequest, callerID string) (*model.ReadingRound, error)
	GetRound(ctx context.Context, id string) (*model.ReadingRound, error)
	ListRounds(ctx context.Context, status, assignedTo string, page, pageSize int) ([]model.ReadingRound, int64, error)
	StartRound(ctx context.Context, id, callerID string) (*model.ReadingRound, error)
	CompleteRound(ctx context.Context, id, callerID string) (*model.ReadingRound, error)
	RecordReading(ctx context.Context, roundID string, req *dto.RecordReadingRequest, callerID string) (*model.MeterReading, error)
	ListReadings(ctx context.Context, roundID string) ([]model.MeterReading, error)
}

type readingService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReadingService 创建 ReadingService 实例
func NewReadingService(repo *repository.Repository, logger *zap.Logger) ReadingService {
	return &readingService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── 模板 ──────────────────────

func (s *readingService) CreateTemplate(ctx context.Context, req *dto.CreateReadingTemplateRequest, callerID string) (*model.ReadingTemplate, error) {
	if _, err := s.repo.ReadingTemplate.GetByCode(ctx, req.TemplateCode); err == nil {
		return nil, pkgerrors.Conflict(16005, "模板编码已存在: "+req.TemplateCode)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	tpl := &model.ReadingTemplate{
		TemplateCode:  req.TemplateCode,
		TemplateName:  req.TemplateName,
		Frequency:     req.Frequency,
		StationID:     req.StationID,
		AreaID:        req.AreaID,
		EstimatedTime: req.EstimatedTime,
		IsActive:      true,
	}
	tpl.CreatedBy = &callerID
	tpl.UpdatedBy = &callerID

	items := make([]model.ReadingTemplateItem, 0, len(req.MeterIDs))
	for i, meterID := range req.MeterIDs {
		items = append(items, model.ReadingTemplateItem{
			MeterID:       meterID,
			SequenceOrder: i + 1,
		})
	}

	if err := s.repo.ReadingTemplate.Create(ctx, tpl, items); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.Conflict(16005, "模板编码已存在: "+req.TemplateCode)
		}
		s.logger.Error("创建抄表模板失败", zap.Error(err))
		return nil, err
	}
	tpl.Items = items
	return tpl, nil
}

func (s *readingService) GetTemplate(ctx context.Context, id string) (*model.ReadingTemplate, error) {
	tpl, err := s.repo.ReadingTemplate.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(16001, "抄表模板不存在")
		}
		s.logger.Error("查询抄表模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return tpl, nil
}

func (s *readingService) ListTemplates(ctx context.Context, frequency string, active *bool) ([]model.ReadingTemplate, error) {
	return s.repo.ReadingTemplate.List(ctx, frequency, active)
}

func (s *readingService) UpdateTemplate(ctx context.Context, id string, req *dto.UpdateReadingTemplateRequest, callerID string) (*model.ReadingTemplate, error) {
	tpl, err := s.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TemplateName != nil {
		tpl.TemplateName = *req.TemplateName
	}
	if req.Frequency != nil {
		tpl.Frequency = *req.Frequency
	}
	if req.StationID != nil {
		tpl.StationID = req.StationID
	}
	if req.AreaID != nil {
		tpl.AreaID = req.AreaID
	}
	if req.EstimatedTime != nil {
		tpl.EstimatedTime = req.EstimatedTime
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}
	tpl.UpdatedBy = &callerID

	if err := s.repo.ReadingTemplate.Update(ctx, tpl); err != nil {
		s.logger.Error("更新抄表模板失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return tpl, nil
}

// DeleteTemplate 已有轮次引用的模板不允许删除
func (s *readingService) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := s.GetTemplate(ctx, id); err != nil {
		return err
	}
	rounds, err := s.repo.ReadingTemplate.CountRounds(ctx, id)
	if err != nil {
		return err
	}
	if rounds > 0 {
		return pkgerrors.Conflict(16005, "模板已被抄表轮次引用，不允许删除")
	}
	if err := s.repo.ReadingTemplate.Delete(ctx, id); err != nil {
		s.logger.Error("删除抄表模板失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 轮次 ──────────────────────

// CreateRound 创建轮次。total_meters 为此刻模板条目数的快照，
// 之后模板变更不影响已创建的轮次。
func (s *readingService) CreateRound(ctx context.Context, req *dto.CreateReadingRoundRequest, callerID string) (*model.ReadingRound, error) {
	tpl, err := s.GetTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, pkgerrors.InvalidState(16003, "模板已停用，不能创建轮次")
	}

	scheduledDate, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, pkgerrors.Validation(16004, "计划日期格式无效")
	}

	itemCount, err := s.repo.ReadingTemplate.CountItems(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < numberMaxRetries; attempt++ {
		prefix := roundNumberPrefix(s.now())
		count, err := s.repo.ReadingRound.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			s.logger.Error("统计轮次编号失败", zap.Error(err))
			return nil, err
		}

		round := &model.ReadingRound{
			RoundNumber:   formatNumber(prefix, count+1, 3),
			TemplateID:    req.TemplateID,
			ScheduledDate: scheduledDate,
			Status:        model.RoundStatusScheduled,
			AssignedTo:    req.AssignedTo,
			TotalMeters:   int(itemCount),
			ReadMeters:    0,
		}
		round.CreatedBy = &callerID
		round.UpdatedBy = &callerID

		err = s.repo.ReadingRound.Create(ctx, round)
		if err == nil {
			s.logger.Info("创建抄表轮次成功",
				zap.String("round_id", round.RoundID),
				zap.String("round_number", round.RoundNumber))
			return round, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		s.logger.Error("创建抄表轮次失败", zap.Error(err))
		return nil, err
	}

	return nil, pkgerrors.Conflict(16006, "轮次编号生成冲突，请重试")
}

func (s *readingService) GetRound(ctx context.Context, id string) (*model.ReadingRound, error) {
	round, err := s.repo.ReadingRound.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(16002, "抄表轮次不存在")
		}
		s.logger.Error("查询抄表轮次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return round, nil
}

func (s *readingService) ListRounds(ctx context.Context, status, assignedTo string, page, pageSize int) ([]model.ReadingRound, int64, error) {
	return s.repo.ReadingRound.List(ctx, status, assignedTo, page, pageSize)
}

func (s *readingService) StartRound(ctx context.Context, id, callerID string) (*model.ReadingRound, error) {
	round, err := s.GetRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusScheduled {
		return nil, pkgerrors.InvalidState(16003, "仅计划中状态的轮次可以开始")
	}

	now := s.now()
	err = s.repo.ReadingRound.UpdateStatus(ctx, round, model.RoundStatusScheduled, map[string]interface{}{
		"status":     model.RoundStatusInProgress,
		"started_at": now,
		"updated_by": callerID,
	})
	if err != nil {
		return nil, err
	}
	round.Status = model.RoundStatusInProgress
	round.StartedAt = &now
	return round, nil
}

// CompleteRound 完成轮次。read_meters 少于 total_meters 也允许完成，
// 快照只用于进度展示，不构成完成门槛。
func (s *readingService) CompleteRound(ctx context.Context, id, callerID string) (*model.ReadingRound, error) {
	round, err := s.GetRound(ctx, id)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusInProgress {
		return nil, pkgerrors.InvalidState(16003, "仅进行中状态的轮次可以完成")
	}

	now := s.now()
	err = s.repo.ReadingRound.UpdateStatus(ctx, round, model.RoundStatusInProgress, map[string]interface{}{
		"status":       model.RoundStatusCompleted,
		"completed_at": now,
		"updated_by":   callerID,
	})
	if err != nil {
		return nil, err
	}
	round.Status = model.RoundStatusCompleted
	round.CompletedAt = &now
	return round, nil
}

// ────────────────────── 抄表记录 ──────────────────────

// RecordReading 记录一次抄表。同一轮次对同一电表重复抄表返回重复错误，
// 此时计数器不自增（插入与自增在同一事务内）。
func (s *readingService) RecordReading(ctx context.Context, roundID string, req *dto.RecordReadingRequest, callerID string) (*model.MeterReading, error) {
	round, err := s.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != model.RoundStatusInProgress {
		return nil, pkgerrors.InvalidState(16003, "仅进行中状态的轮次可以录入抄表")
	}

	reading := &model.MeterReading{
		RoundID:       roundID,
		MeterID:       req.MeterID,
		ReadingValue:  req.ReadingValue,
		PhotoPath:     req.PhotoPath,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		IsAnomaly:     req.IsAnomaly,
		AnomalyReason: req.AnomalyReason,
		ReadBy:        &callerID,
		ReadingDate:   s.now(),
	}

	if err := s.repo.ReadingRound.CreateReading(ctx, reading); err != nil {
		if errors.Is(err, repository.ErrDuplicateReading) {
			return nil, pkgerrors.DuplicateReading(16007, "该电表在本轮次已有抄表记录")
		}
		s.logger.Error("录入抄表失败",
			zap.String("round_id", roundID),
			zap.String("meter_id", req.MeterID),
			zap.Error(err))
		return nil, err
	}
	return reading, nil
}

func (s *readingService) ListReadings(ctx context.Context, roundID string) ([]model.MeterReading, error) {
	if _, err := s.GetRound(ctx, roundID); err != nil {
		return nil, err
	}
	return s.repo.ReadingRound.ListReadings(ctx, roundID)
}
