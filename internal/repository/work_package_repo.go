package repository

import (
	"context"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
	pkgerrors "field-ops/backend/pkg/errors"
)

// WorkPackageRepository 工作包数据访问接口
type WorkPackageRepository interface {
	Create(ctx context.Context, pkg *model.WorkPackage) error
	GetByID(ctx context.Context, id string) (*model.WorkPackage, error)
	List(ctx context.Context, status, teamID string, page, pageSize int) ([]model.WorkPackage, int64, error)
	Update(ctx context.Context, pkg *model.WorkPackage) error
	// UpdateStatus 条件更新：当前状态与版本均须匹配，否则返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, pkg *model.WorkPackage, from model.PackageStatus, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, item *model.WorkPackageItem) error
	RemoveItem(ctx context.Context, packageID, itemID string) (int64, error)
	ListItems(ctx context.Context, packageID string) ([]model.WorkPackageItem, error)
	MaxSequenceOrder(ctx context.Context, packageID string) (int, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}

type workPackageRepo struct {
	db *gorm.DB
}

func NewWorkPackageRepo(db *gorm.DB) WorkPackageRepository {
	return &workPackageRepo{db: db}
}

func (r *workPackageRepo) Create(ctx context.Context, pkg *model.WorkPackage) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *workPackageRepo) GetByID(ctx context.Context, id string) (*model.WorkPackage, error) {
	var pkg model.WorkPackage
	err := r.db.WithContext(ctx).
		Preload("Team").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Preload("Items.Operation").
		Where("package_id = ?", id).
		First(&pkg).Error
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *workPackageRepo) List(ctx context.Context, status, teamID string, page, pageSize int) ([]model.WorkPackage, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.WorkPackage{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if teamID != "" {
		query = query.Where("assigned_team_id = ?", teamID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pkgs []model.WorkPackage
	err := query.
		Preload("Team").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&pkgs).Error
	if err != nil {
		return nil, 0, err
	}
	return pkgs, total, nil
}

func (r *workPackageRepo) Update(ctx context.Context, pkg *model.WorkPackage) error {
	oldVersion := pkg.Version
	result := r.db.WithContext(ctx).
		Model(&model.WorkPackage{}).
		Where("package_id = ? AND version = ?", pkg.PackageID, oldVersion).
		Updates(map[string]interface{}{
			"package_name":      pkg.PackageName,
			"description":       pkg.Description,
			"station_id":        pkg.StationID,
			"contractor_name":   pkg.ContractorName,
			"supervisor_id":     pkg.SupervisorID,
			"expected_duration": pkg.ExpectedDuration,
			"agreed_amount":     pkg.AgreedAmount,
			"updated_by":        pkg.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	pkg.Version = oldVersion + 1
	return nil
}

func (r *workPackageRepo) UpdateStatus(ctx context.Context, pkg *model.WorkPackage, from model.PackageStatus, updates map[string]interface{}) error {
	oldVersion := pkg.Version
	updates["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.WorkPackage{}).
		Where("package_id = ? AND status = ? AND version = ?", pkg.PackageID, from, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	pkg.Version = oldVersion + 1
	return nil
}

func (r *workPackageRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", id).Delete(&model.WorkPackageItem{}).Error; err != nil {
			return err
		}
		return tx.Where("package_id = ?", id).Delete(&model.WorkPackage{}).Error
	})
}

func (r *workPackageRepo) AddItem(ctx context.Context, item *model.WorkPackageItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *workPackageRepo) RemoveItem(ctx context.Context, packageID, itemID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("package_id = ? AND item_id = ?", packageID, itemID).
		Delete(&model.WorkPackageItem{})
	return result.RowsAffected, result.Error
}

func (r *workPackageRepo) ListItems(ctx context.Context, packageID string) ([]model.WorkPackageItem, error) {
	var items []model.WorkPackageItem
	err := r.db.WithContext(ctx).
		Preload("Operation").
		Where("package_id = ?", packageID).
		Order("sequence_order ASC").
		Find(&items).Error
	return items, err
}

func (r *workPackageRepo) MaxSequenceOrder(ctx context.Context, packageID string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&model.WorkPackageItem{}).
		Where("package_id = ?", packageID).
		Select("MAX(sequence_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *workPackageRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkPackage{}).
		Where("package_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}
