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

// WorkerService 现场工人业务接口
type WorkerService interface {
	Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*model.Worker, error)
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	List(ctx context.Context, workerType string, available, active *bool) ([]model.Worker, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*model.Worker, error)
	Delete(ctx context.Context, id string) error
	UpdateLocation(ctx context.Context, id string, req *dto.UpdateLocationRequest) (*model.WorkerLocationLog, error)
	ListLocationLogs(ctx context.Context, id string, start, end *time.Time) ([]model.WorkerLocationLog, error)
	ListWithLocation(ctx context.Context) ([]dto.WorkerLocation, error)
	CalculatePerformance(ctx context.Context, id string, req *dto.CalculatePerformanceRequest) (*model.WorkerPerformance, error)
	ListPerformance(ctx context.Context, id string) ([]model.WorkerPerformance, error)
}

const locationLogDefaultLimit = 100

type workerService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewWorkerService 创建 WorkerService 实例
func NewWorkerService(repo *repository.Repository, logger *zap.Logger) WorkerService {
	return &workerService{repo: repo, logger: logger, now: time.Now}
}

func (s *workerService) Create(ctx context.Context, req *dto.CreateWorkerRequest, callerID string) (*model.Worker, error) {
	if _, err := s.repo.Worker.GetByCode(ctx, req.WorkerCode); err == nil {
		return nil, pkgerrors.Conflict(14002, "工号已存在: "+req.WorkerCode)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	worker := &model.Worker{
		WorkerCode:     req.WorkerCode,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		WorkerType:     req.WorkerType,
		Specialization: req.Specialization,
		EmployeeID:     req.EmployeeID,
		UserID:         req.UserID,
		IsAvailable:    true,
		IsActive:       true,
	}
	worker.CreatedBy = &callerID
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Create(ctx, worker); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, pkgerrors.Conflict(14002, "工号已存在: "+req.WorkerCode)
		}
		s.logger.Error("创建工人失败", zap.Error(err))
		return nil, err
	}
	return worker, nil
}

func (s *workerService) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	worker, err := s.repo.Worker.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(14001, "工人不存在")
		}
		s.logger.Error("查询工人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return worker, nil
}

func (s *workerService) List(ctx context.Context, workerType string, available, active *bool) ([]model.Worker, error) {
	return s.repo.Worker.List(ctx, workerType, available, active)
}

func (s *workerService) Update(ctx context.Context, id string, req *dto.UpdateWorkerRequest, callerID string) (*model.Worker, error) {
	worker, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		worker.FullName = *req.FullName
	}
	if req.Phone != nil {
		worker.Phone = *req.Phone
	}
	if req.Email != nil {
		worker.Email = *req.Email
	}
	if req.WorkerType != nil {
		worker.WorkerType = *req.WorkerType
	}
	if req.Specialization != nil {
		worker.Specialization = *req.Specialization
	}
	if req.IsAvailable != nil {
		worker.IsAvailable = *req.IsAvailable
	}
	if req.IsActive != nil {
		worker.IsActive = *req.IsActive
	}
	worker.UpdatedBy = &callerID

	if err := s.repo.Worker.Update(ctx, worker); err != nil {
		s.logger.Error("更新工人失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return worker, nil
}

// Delete 存在进行中作业（已指派/施工中）的工人不允许删除
func (s *workerService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	active, err := s.repo.Operation.CountActiveByWorker(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return pkgerrors.Conflict(14003, "工人存在进行中的作业，不允许删除")
	}
	if err := s.repo.Worker.Delete(ctx, id); err != nil {
		s.logger.Error("删除工人失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// UpdateLocation 位置上报：冗余坐标与追加日志在同一事务内写入
func (s *workerService) UpdateLocation(ctx context.Context, id string, req *dto.UpdateLocationRequest) (*model.WorkerLocationLog, error) {
	log := &model.WorkerLocationLog{
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Accuracy:     req.Accuracy,
		Speed:        req.Speed,
		BatteryLevel: req.BatteryLevel,
		RecordedAt:   s.now(),
	}
	if err := s.repo.Worker.RecordLocation(ctx, id, log); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(14001, "工人不存在")
		}
		s.logger.Error("工人位置上报失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return log, nil
}

func (s *workerService) ListLocationLogs(ctx context.Context, id string, start, end *time.Time) ([]model.WorkerLocationLog, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Worker.ListLocationLogs(ctx, id, start, end, locationLogDefaultLimit)
}

// ListWithLocation 返回有位置记录的在岗工人，供地图展示
func (s *workerService) ListWithLocation(ctx context.Context) ([]dto.WorkerLocation, error) {
	workers, err := s.repo.Worker.ListWithLocation(ctx)
	if err != nil {
		return nil, err
	}
	locations := make([]dto.WorkerLocation, 0, len(workers))
	for _, w := range workers {
		loc := dto.WorkerLocation{
			WorkerID:      w.WorkerID,
			WorkerCode:    w.WorkerCode,
			FullName:      w.FullName,
			WorkerType:    w.WorkerType,
			LastLatitude:  w.LastLatitude,
			LastLongitude: w.LastLongitude,
			IsAvailable:   w.IsAvailable,
		}
		if w.LastLocationAt != nil {
			at := w.LastLocationAt.Format(time.RFC3339)
			loc.LastLocationAt = &at
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// CalculatePerformance 按期间核算绩效：
// 按时完成 = 存在计划日期且在计划日期当天 24 点前完成
func (s *workerService) CalculatePerformance(ctx context.Context, id string, req *dto.CalculatePerformanceRequest) (*model.WorkerPerformance, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		return nil, pkgerrors.Validation(14004, "核算开始日期格式无效")
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		return nil, pkgerrors.Validation(14004, "核算结束日期格式无效")
	}
	if !periodEnd.After(periodStart) {
		return nil, pkgerrors.Validation(14004, "核算结束日期必须晚于开始日期")
	}

	// 覆盖到结束日当天末尾
	ops, err := s.repo.Operation.ListCompletedByWorker(ctx, id, periodStart, periodEnd.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	onTime := 0
	for _, op := range ops {
		if op.ScheduledDate != nil && op.CompletedAt != nil &&
			!op.CompletedAt.After(op.ScheduledDate.Add(24*time.Hour)) {
			onTime++
		}
	}

	perf := &model.WorkerPerformance{
		WorkerID:        id,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		TotalOperations: len(ops),
		CompletedOnTime: onTime,
	}
	if len(ops) > 0 {
		score := float64(onTime) / float64(len(ops)) * 100
		perf.QualityScore = &score
	}

	if err := s.repo.Worker.CreatePerformance(ctx, perf); err != nil {
		s.logger.Error("写入工人绩效失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return perf, nil
}

func (s *workerService) ListPerformance(ctx context.Context, id string) ([]model.WorkerPerformance, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Worker.ListPerformance(ctx, id, 12)
}
