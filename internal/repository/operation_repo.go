package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
	pkgerrors "field-ops/backend/pkg/errors"
)

// OperationFilter 工单列表查询条件
type OperationFilter struct {
	OperationType string
	Status        string
	TeamID        string
	WorkerID      string
	CustomerID    string
	StartDate     *time.Time
	EndDate       *time.Time
	Search        string
	Page          int
	PageSize      int
}

// OperationRepository 现场工单数据访问接口
type OperationRepository interface {
	// Create 在同一事务内写入工单与首条状态日志
	Create(ctx context.Context, op *model.Operation, initialLog *model.OperationStatusLog) error
	GetByID(ctx context.Context, id string) (*model.Operation, error)
	GetDetail(ctx context.Context, id string) (*model.Operation, error)
	List(ctx context.Context, f OperationFilter) ([]model.Operation, int64, error)
	Update(ctx context.Context, op *model.Operation) error
	// Transition 条件更新状态并追加日志，当前状态或版本不匹配时返回 ErrOptimisticLock
	Transition(ctx context.Context, op *model.Operation, from model.OperationStatus, log *model.OperationStatusLog) error
	// Assign 更新指派字段，log 非 nil 时同时写入级联状态日志
	Assign(ctx context.Context, op *model.Operation, log *model.OperationStatusLog) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
	ListStatusLogs(ctx context.Context, operationID string) ([]model.OperationStatusLog, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	CountActiveByTeam(ctx context.Context, teamID string) (int64, error)
	CountActiveByWorker(ctx context.Context, workerID string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByType(ctx context.Context) (map[string]int64, error)
	CountAll(ctx context.Context) (int64, error)
	ListCompletedByWorker(ctx context.Context, workerID string, start, end time.Time) ([]model.Operation, error)
	ListScheduledBetween(ctx context.Context, start, end time.Time) ([]model.Operation, error)
}

// 处于活跃状态的工单会阻止班组/人员删除
var activeOperationStatuses = []model.OperationStatus{
	model.OpStatusAssigned,
	model.OpStatusInProgress,
}

type operationRepo struct {
	db *gorm.DB
}

func NewOperationRepo(db *gorm.DB) OperationRepository {
	return &operationRepo{db: db}
}

func (r *operationRepo) Create(ctx context.Context, op *model.Operation, initialLog *model.OperationStatusLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(op).Error; err != nil {
			return err
		}
		initialLog.OperationID = op.OperationID
		return tx.Create(initialLog).Error
	})
}

func (r *operationRepo) GetByID(ctx context.Context, id string) (*model.Operation, error) {
	var op model.Operation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Worker").
		Where("operation_id = ?", id).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operationRepo) GetDetail(ctx context.Context, id string) (*model.Operation, error) {
	var op model.Operation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Worker").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where("operation_id = ?", id).
		First(&op).Error
	if err != nil {
		return nil, err
	}
	return &op, nil
}

func (r *operationRepo) List(ctx context.Context, f OperationFilter) ([]model.Operation, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Operation{})

	if f.OperationType != "" {
		query = query.Where("operation_type = ?", f.OperationType)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.TeamID != "" {
		query = query.Where("assigned_team_id = ?", f.TeamID)
	}
	if f.WorkerID != "" {
		query = query.Where("assigned_worker_id = ?", f.WorkerID)
	}
	if f.CustomerID != "" {
		query = query.Where("customer_id = ?", f.CustomerID)
	}
	if f.StartDate != nil {
		query = query.Where("scheduled_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		query = query.Where("scheduled_date <= ?", *f.EndDate)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("operation_number ILIKE ? OR title ILIKE ? OR address ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ops []model.Operation
	err := query.
		Preload("Team").
		Preload("Worker").
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&ops).Error
	if err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}

func (r *operationRepo) Update(ctx context.Context, op *model.Operation) error {
	oldVersion := op.Version
	result := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Where("operation_id = ? AND version = ?", op.OperationID, oldVersion).
		Updates(map[string]interface{}{
			"title":              op.Title,
			"description":        op.Description,
			"priority":           op.Priority,
			"customer_id":        op.CustomerID,
			"meter_id":           op.MeterID,
			"asset_id":           op.AssetID,
			"station_id":         op.StationID,
			"address":            op.Address,
			"latitude":           op.Latitude,
			"longitude":          op.Longitude,
			"scheduled_date":     op.ScheduledDate,
			"assigned_team_id":   op.AssignedTeamID,
			"assigned_worker_id": op.AssignedWorkerID,
			"estimated_cost":     op.EstimatedCost,
			"notes":              op.Notes,
			"updated_by":         op.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	op.Version = oldVersion + 1
	return nil
}

func (r *operationRepo) Transition(ctx context.Context, op *model.Operation, from model.OperationStatus, log *model.OperationStatusLog) error {
	oldVersion := op.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Operation{}).
			Where("operation_id = ? AND status = ? AND version = ?", op.OperationID, from, oldVersion).
			Updates(map[string]interface{}{
				"status":       op.Status,
				"started_at":   op.StartedAt,
				"completed_at": op.CompletedAt,
				"updated_by":   op.UpdatedBy,
				"version":      oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		op.Version = oldVersion + 1
		log.OperationID = op.OperationID
		return tx.Create(log).Error
	})
}

func (r *operationRepo) Assign(ctx context.Context, op *model.Operation, log *model.OperationStatusLog) error {
	oldVersion := op.Version
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Operation{}).
			Where("operation_id = ? AND version = ?", op.OperationID, oldVersion).
			Updates(map[string]interface{}{
				"assigned_team_id":   op.AssignedTeamID,
				"assigned_worker_id": op.AssignedWorkerID,
				"status":             op.Status,
				"updated_by":         op.UpdatedBy,
				"version":            oldVersion + 1,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return pkgerrors.ErrOptimisticLock
		}
		op.Version = oldVersion + 1
		if log != nil {
			log.OperationID = op.OperationID
			if err := tx.Create(log).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *operationRepo) SoftDelete(ctx context.Context, id, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Operation{}).
			Where("operation_id = ?", id).
			Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		return tx.Where("operation_id = ?", id).Delete(&model.Operation{}).Error
	})
}

func (r *operationRepo) ListStatusLogs(ctx context.Context, operationID string) ([]model.OperationStatusLog, error) {
	var logs []model.OperationStatusLog
	err := r.db.WithContext(ctx).
		Where("operation_id = ?", operationID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *operationRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Unscoped().
		Where("operation_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *operationRepo) CountActiveByTeam(ctx context.Context, teamID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Where("assigned_team_id = ? AND status IN ?", teamID, activeOperationStatuses).
		Count(&count).Error
	return count, err
}

func (r *operationRepo) CountActiveByWorker(ctx context.Context, workerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Where("assigned_worker_id = ? AND status IN ?", workerID, activeOperationStatuses).
		Count(&count).Error
	return count, err
}

type statusCount struct {
	Key   string
	Count int64
}

func (r *operationRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Select("status AS key, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result, nil
}

func (r *operationRepo) CountByType(ctx context.Context) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&model.Operation{}).
		Select("operation_type AS key, COUNT(*) AS count").
		Group("operation_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Key] = row.Count
	}
	return result, nil
}

func (r *operationRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Operation{}).Count(&count).Error
	return count, err
}

func (r *operationRepo) ListCompletedByWorker(ctx context.Context, workerID string, start, end time.Time) ([]model.Operation, error) {
	var ops []model.Operation
	err := r.db.WithContext(ctx).
		Where("assigned_worker_id = ? AND status IN ? AND completed_at >= ? AND completed_at <= ?",
			workerID, []model.OperationStatus{model.OpStatusCompleted, model.OpStatusApproved}, start, end).
		Order("completed_at ASC").
		Find(&ops).Error
	return ops, err
}

func (r *operationRepo) ListScheduledBetween(ctx context.Context, start, end time.Time) ([]model.Operation, error) {
	var ops []model.Operation
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Worker").
		Where("scheduled_date >= ? AND scheduled_date <= ? AND status NOT IN ?",
			start, end, []model.OperationStatus{model.OpStatusCancelled, model.OpStatusRejected}).
		Order("scheduled_date ASC").
		Find(&ops).Error
	return ops, err
}
