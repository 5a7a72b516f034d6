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

// 状态日志变更原因
const (
	reasonOperationCreated = "创建作业"
	reasonAssignCascade    = "已完成指派"
)

// OperationService 现场作业业务接口
type OperationService interface {
	Create(ctx context.Context, req *dto.CreateOperationRequest, callerID string) (*model.Operation, error)
	GetByID(ctx context.Context, id string) (*model.Operation, error)
	List(ctx context.Context, q *dto.OperationListQuery) ([]model.Operation, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateOperationRequest, callerID string) (*model.Operation, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateOperationStatusRequest, callerID string) (*model.Operation, error)
	Assign(ctx context.Context, id string, req *dto.AssignOperationRequest, callerID string) (*model.Operation, error)
	Delete(ctx context.Context, id, callerID string) error
	Statistics(ctx context.Context) (*dto.OperationStatistics, error)
}

type operationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewOperationService 创建 OperationService 实例
func NewOperationService(repo *repository.Repository, logger *zap.Logger) OperationService {
	return &operationService{repo: repo, logger: logger, now: time.Now}
}

// parseDate 解析 "2006-01-02" 或 RFC3339 两种日期输入
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// ────────────────────── Create ──────────────────────

func (s *operationService) Create(ctx context.Context, req *dto.CreateOperationRequest, callerID string) (*model.Operation, error) {
	var scheduledDate *time.Time
	if req.ScheduledDate != nil && *req.ScheduledDate != "" {
		t, err := parseDate(*req.ScheduledDate)
		if err != nil {
			return nil, pkgerrors.Validation(12004, "计划日期格式无效")
		}
		scheduledDate = &t
	}

	priority := 2
	if req.Priority != nil {
		priority = *req.Priority
	}

	// 编号依赖"计数 + 唯一约束兜底"，冲突后重新计数重试
	for attempt := 0; attempt < numberMaxRetries; attempt++ {
		prefix := operationNumberPrefix(req.OperationType, s.now())
		count, err := s.repo.Operation.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			s.logger.Error("统计作业编号失败", zap.Error(err))
			return nil, err
		}

		op := &model.Operation{
			OperationNumber:  formatNumber(prefix, count+1, 4),
			OperationType:    model.OperationType(req.OperationType),
			Title:            req.Title,
			Description:      req.Description,
			Priority:         priority,
			Status:           model.OpStatusDraft,
			CustomerID:       req.CustomerID,
			MeterID:          req.MeterID,
			AssetID:          req.AssetID,
			StationID:        req.StationID,
			Address:          req.Address,
			Latitude:         req.Latitude,
			Longitude:        req.Longitude,
			AssignedTeamID:   req.AssignedTeamID,
			AssignedWorkerID: req.AssignedWorkerID,
			ScheduledDate:    scheduledDate,
			EstimatedCost:    req.EstimatedCost,
			Notes:            req.Notes,
		}
		op.CreatedBy = &callerID
		op.UpdatedBy = &callerID

		initialLog := &model.OperationStatusLog{
			OldStatus:    nil,
			NewStatus:    model.OpStatusDraft,
			ChangedBy:    &callerID,
			ChangeReason: reasonOperationCreated,
		}

		err = s.repo.Operation.Create(ctx, op, initialLog)
		if err == nil {
			s.logger.Info("创建作业成功",
				zap.String("operation_id", op.OperationID),
				zap.String("operation_number", op.OperationNumber))
			return op, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		s.logger.Error("创建作业失败", zap.Error(err))
		return nil, err
	}

	return nil, pkgerrors.Conflict(12005, "作业编号生成冲突，请重试")
}

// ────────────────────── GetByID ──────────────────────

func (s *operationService) GetByID(ctx context.Context, id string) (*model.Operation, error) {
	op, err := s.repo.Operation.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(12001, "作业不存在")
		}
		s.logger.Error("查询作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return op, nil
}

// ────────────────────── List ──────────────────────

func (s *operationService) List(ctx context.Context, q *dto.OperationListQuery) ([]model.Operation, int64, error) {
	f := repository.OperationFilter{
		OperationType: q.OperationType,
		Status:        q.Status,
		TeamID:        q.TeamID,
		WorkerID:      q.WorkerID,
		CustomerID:    q.CustomerID,
		Search:        q.Search,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
	if q.StartDate != "" {
		t, err := parseDate(q.StartDate)
		if err != nil {
			return nil, 0, pkgerrors.Validation(12004, "开始日期格式无效")
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := parseDate(q.EndDate)
		if err != nil {
			return nil, 0, pkgerrors.Validation(12004, "结束日期格式无效")
		}
		f.EndDate = &t
	}

	ops, total, err := s.repo.Operation.List(ctx, f)
	if err != nil {
		s.logger.Error("查询作业列表失败", zap.Error(err))
		return nil, 0, err
	}
	return ops, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *operationService) Update(ctx context.Context, id string, req *dto.UpdateOperationRequest, callerID string) (*model.Operation, error) {
	op, err := s.repo.Operation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(12001, "作业不存在")
		}
		return nil, err
	}

	// 开工之后不允许再通过通用更新改动指派字段
	if req.AssignedTeamID != nil || req.AssignedWorkerID != nil {
		switch op.Status {
		case model.OpStatusDraft, model.OpStatusScheduled, model.OpStatusAssigned:
		default:
			return nil, pkgerrors.InvalidState(12003, "作业开始后不允许修改指派")
		}
	}

	if req.Title != nil {
		op.Title = *req.Title
	}
	if req.Description != nil {
		op.Description = *req.Description
	}
	if req.Priority != nil {
		op.Priority = *req.Priority
	}
	if req.CustomerID != nil {
		op.CustomerID = req.CustomerID
	}
	if req.MeterID != nil {
		op.MeterID = req.MeterID
	}
	if req.AssetID != nil {
		op.AssetID = req.AssetID
	}
	if req.StationID != nil {
		op.StationID = req.StationID
	}
	if req.Address != nil {
		op.Address = *req.Address
	}
	if req.Latitude != nil {
		op.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		op.Longitude = req.Longitude
	}
	if req.AssignedTeamID != nil {
		op.AssignedTeamID = req.AssignedTeamID
	}
	if req.AssignedWorkerID != nil {
		op.AssignedWorkerID = req.AssignedWorkerID
	}
	if req.ScheduledDate != nil {
		if *req.ScheduledDate == "" {
			op.ScheduledDate = nil
		} else {
			t, err := parseDate(*req.ScheduledDate)
			if err != nil {
				return nil, pkgerrors.Validation(12004, "计划日期格式无效")
			}
			op.ScheduledDate = &t
		}
	}
	if req.EstimatedCost != nil {
		op.EstimatedCost = req.EstimatedCost
	}
	if req.Notes != nil {
		op.Notes = *req.Notes
	}
	op.UpdatedBy = &callerID

	if err := s.repo.Operation.Update(ctx, op); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新作业失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return op, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus 执行一次状态机转换。
// started_at 仅在首次进入 in_progress 时写入（rejected 返工不重置）；
// completed_at 每次进入 completed/approved 都刷新，返工后重新完工取最新时间。
func (s *operationService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateOperationStatusRequest, callerID string) (*model.Operation, error) {
	target := model.OperationStatus(req.Status)
	if !isKnownOperationStatus(target) {
		return nil, pkgerrors.Validation(12004, "未知的作业状态: "+req.Status)
	}

	op, err := s.repo.Operation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(12001, "作业不存在")
		}
		return nil, err
	}

	from := op.Status
	if !model.CanTransitionOperation(from, target) {
		return nil, pkgerrors.InvalidTransition(12002, string(from), string(target))
	}

	now := s.now()
	op.Status = target
	if target == model.OpStatusInProgress && op.StartedAt == nil {
		op.StartedAt = &now
	}
	if target == model.OpStatusCompleted || target == model.OpStatusApproved {
		op.CompletedAt = &now
	}
	op.UpdatedBy = &callerID

	log := &model.OperationStatusLog{
		OldStatus:    &from,
		NewStatus:    target,
		ChangedBy:    &callerID,
		ChangeReason: req.Reason,
	}

	if err := s.repo.Operation.Transition(ctx, op, from, log); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("作业状态转换失败",
				zap.String("id", id),
				zap.String("from", string(from)),
				zap.String("to", string(target)),
				zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("作业状态转换",
		zap.String("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(target)))
	return op, nil
}

func isKnownOperationStatus(status model.OperationStatus) bool {
	for _, s := range model.OperationStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ────────────────────── Assign ──────────────────────

// Assign 指派班组/工人。作业处于 scheduled 时级联进入 assigned 并记录状态日志；
// 其他状态下仅更新指派字段，不触发状态转换。
// 两个 id 均未提供时照常执行写入（空指派），不报错。
func (s *operationService) Assign(ctx context.Context, id string, req *dto.AssignOperationRequest, callerID string) (*model.Operation, error) {
	op, err := s.repo.Operation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(12001, "作业不存在")
		}
		return nil, err
	}

	if req.TeamID != nil {
		if _, err := s.repo.Team.GetByID(ctx, *req.TeamID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.NotFound(13001, "班组不存在")
			}
			return nil, err
		}
		op.AssignedTeamID = req.TeamID
	}
	if req.WorkerID != nil {
		if _, err := s.repo.Worker.GetByID(ctx, *req.WorkerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.NotFound(14001, "工人不存在")
			}
			return nil, err
		}
		op.AssignedWorkerID = req.WorkerID
	}
	op.UpdatedBy = &callerID

	var log *model.OperationStatusLog
	if op.Status == model.OpStatusScheduled {
		from := op.Status
		op.Status = model.OpStatusAssigned
		log = &model.OperationStatusLog{
			OldStatus:    &from,
			NewStatus:    model.OpStatusAssigned,
			ChangedBy:    &callerID,
			ChangeReason: reasonAssignCascade,
		}
	}

	if err := s.repo.Operation.Assign(ctx, op, log); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("作业指派失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return op, nil
}

// ────────────────────── Delete ──────────────────────

func (s *operationService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.repo.Operation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.NotFound(12001, "作业不存在")
		}
		return err
	}
	if err := s.repo.Operation.SoftDelete(ctx, id, callerID); err != nil {
		s.logger.Error("删除作业失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Statistics ──────────────────────

func (s *operationService) Statistics(ctx context.Context) (*dto.OperationStatistics, error) {
	total, err := s.repo.Operation.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.repo.Operation.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byType, err := s.repo.Operation.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.OperationStatistics{
		Total:    total,
		ByStatus: byStatus,
		ByType:   byType,
	}, nil
}
