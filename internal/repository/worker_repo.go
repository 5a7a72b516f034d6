package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
)

// WorkerRepository 现场工人数据访问接口
type WorkerRepository interface {
	Create(ctx context.Context, worker *model.Worker) error
	GetByID(ctx context.Context, id string) (*model.Worker, error)
	GetByCode(ctx context.Context, code string) (*model.Worker, error)
	List(ctx context.Context, workerType string, available, active *bool) ([]model.Worker, error)
	Update(ctx context.Context, worker *model.Worker) error
	Delete(ctx context.Context, id string) error
	// RecordLocation 在同一事务内更新冗余坐标并追加位置日志
	RecordLocation(ctx context.Context, workerID string, log *model.WorkerLocationLog) error
	ListLocationLogs(ctx context.Context, workerID string, start, end *time.Time, limit int) ([]model.WorkerLocationLog, error)
	ListWithLocation(ctx context.Context) ([]model.Worker, error)
	CreatePerformance(ctx context.Context, perf *model.WorkerPerformance) error
	ListPerformance(ctx context.Context, workerID string, limit int) ([]model.WorkerPerformance, error)
}

type workerRepo struct {
	db *gorm.DB
}

func NewWorkerRepo(db *gorm.DB) WorkerRepository {
	return &workerRepo{db: db}
}

func (r *workerRepo) Create(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).Create(worker).Error
}

func (r *workerRepo) GetByID(ctx context.Context, id string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).
		Preload("TeamMemberships", "is_active = ?", true).
		Where("worker_id = ?", id).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) GetByCode(ctx context.Context, code string) (*model.Worker, error) {
	var worker model.Worker
	err := r.db.WithContext(ctx).
		Where("worker_code = ?", code).
		First(&worker).Error
	if err != nil {
		return nil, err
	}
	return &worker, nil
}

func (r *workerRepo) List(ctx context.Context, workerType string, available, active *bool) ([]model.Worker, error) {
	query := r.db.WithContext(ctx).Model(&model.Worker{})
	if workerType != "" {
		query = query.Where("worker_type = ?", workerType)
	}
	if available != nil {
		query = query.Where("is_available = ?", *available)
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}
	var workers []model.Worker
	err := query.Order("worker_code ASC").Find(&workers).Error
	return workers, err
}

func (r *workerRepo) Update(ctx context.Context, worker *model.Worker) error {
	return r.db.WithContext(ctx).
		Model(&model.Worker{}).
		Where("worker_id = ?", worker.WorkerID).
		Updates(map[string]interface{}{
			"full_name":      worker.FullName,
			"phone":          worker.Phone,
			"email":          worker.Email,
			"worker_type":    worker.WorkerType,
			"specialization": worker.Specialization,
			"is_available":   worker.IsAvailable,
			"is_active":      worker.IsActive,
			"updated_by":     worker.UpdatedBy,
		}).Error
}

func (r *workerRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("worker_id = ?", id).
		Delete(&model.Worker{}).Error
}

func (r *workerRepo) RecordLocation(ctx context.Context, workerID string, log *model.WorkerLocationLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Worker{}).
			Where("worker_id = ?", workerID).
			Updates(map[string]interface{}{
				"last_latitude":    log.Latitude,
				"last_longitude":   log.Longitude,
				"last_location_at": log.RecordedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		log.WorkerID = workerID
		return tx.Create(log).Error
	})
}

func (r *workerRepo) ListLocationLogs(ctx context.Context, workerID string, start, end *time.Time, limit int) ([]model.WorkerLocationLog, error) {
	query := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID)
	if start != nil {
		query = query.Where("recorded_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("recorded_at <= ?", *end)
	}
	var logs []model.WorkerLocationLog
	err := query.Order("recorded_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *workerRepo) ListWithLocation(ctx context.Context) ([]model.Worker, error) {
	var workers []model.Worker
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND last_location_at IS NOT NULL", true).
		Order("last_location_at DESC").
		Find(&workers).Error
	return workers, err
}

func (r *workerRepo) CreatePerformance(ctx context.Context, perf *model.WorkerPerformance) error {
	return r.db.WithContext(ctx).Create(perf).Error
}

func (r *workerRepo) ListPerformance(ctx context.Context, workerID string, limit int) ([]model.WorkerPerformance, error) {
	var perfs []model.WorkerPerformance
	err := r.db.WithContext(ctx).
		Where("worker_id = ?", workerID).
		Order("period_start DESC").
		Limit(limit).
		Find(&perfs).Error
	return perfs, err
}
