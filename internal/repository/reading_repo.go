package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
	pkgerrors "field-ops/backend/pkg/errors"
)

// ReadingTemplateRepository 抄表模板数据访问接口
type ReadingTemplateRepository interface {
	// Create 在同一事务内写入模板与全部条目
	Create(ctx context.Context, tpl *model.ReadingTemplate, items []model.ReadingTemplateItem) error
	GetByID(ctx context.Context, id string) (*model.ReadingTemplate, error)
	GetByCode(ctx context.Context, code string) (*model.ReadingTemplate, error)
	List(ctx context.Context, frequency string, active *bool) ([]model.ReadingTemplate, error)
	Update(ctx context.Context, tpl *model.ReadingTemplate) error
	Delete(ctx context.Context, id string) error
	CountItems(ctx context.Context, templateID string) (int64, error)
	CountRounds(ctx context.Context, templateID string) (int64, error)
}

// ReadingRoundRepository 抄表轮次数据访问接口
type ReadingRoundRepository interface {
	Create(ctx context.Context, round *model.ReadingRound) error
	GetByID(ctx context.Context, id string) (*model.ReadingRound, error)
	List(ctx context.Context, status, assignedTo string, page, pageSize int) ([]model.ReadingRound, int64, error)
	// UpdateStatus 条件更新：当前状态与版本均须匹配，否则返回 ErrOptimisticLock
	UpdateStatus(ctx context.Context, round *model.ReadingRound, from model.RoundStatus, updates map[string]interface{}) error
	// CreateReading 在同一事务内写入抄表记录并原子自增 read_meters；
	// 命中 (round_id, meter_id) 唯一约束时返回 ErrDuplicateReading
	CreateReading(ctx context.Context, reading *model.MeterReading) error
	ListReadings(ctx context.Context, roundID string) ([]model.MeterReading, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}

// ErrDuplicateReading 同一轮次对同一电表重复抄表
var ErrDuplicateReading = errors.New("repository: duplicate meter reading in round")

type readingTemplateRepo struct {
	db *gorm.DB
}

func NewReadingTemplateRepo(db *gorm.DB) ReadingTemplateRepository {
	return &readingTemplateRepo{db: db}
}

func (r *readingTemplateRepo) Create(ctx context.Context, tpl *model.ReadingTemplate, items []model.ReadingTemplateItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tpl).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].TemplateID = tpl.TemplateID
		}
		return tx.Create(&items).Error
	})
}

func (r *readingTemplateRepo) GetByID(ctx context.Context, id string) (*model.ReadingTemplate, error) {
	var tpl model.ReadingTemplate
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC")
		}).
		Where("template_id = ?", id).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *readingTemplateRepo) GetByCode(ctx context.Context, code string) (*model.ReadingTemplate, error) {
	var tpl model.ReadingTemplate
	err := r.db.WithContext(ctx).
		Where("template_code = ?", code).
		First(&tpl).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *readingTemplateRepo) List(ctx context.Context, frequency string, active *bool) ([]model.ReadingTemplate, error) {
	query := r.db.WithContext(ctx).Model(&model.ReadingTemplate{})
	if frequency != "" {
		query = query.Where("frequency = ?", frequency)
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}
	var tpls []model.ReadingTemplate
	err := query.Order("template_code ASC").Find(&tpls).Error
	return tpls, err
}

func (r *readingTemplateRepo) Update(ctx context.Context, tpl *model.ReadingTemplate) error {
	return r.db.WithContext(ctx).
		Model(&model.ReadingTemplate{}).
		Where("template_id = ?", tpl.TemplateID).
		Updates(map[string]interface{}{
			"template_name":  tpl.TemplateName,
			"frequency":      tpl.Frequency,
			"station_id":     tpl.StationID,
			"area_id":        tpl.AreaID,
			"estimated_time": tpl.EstimatedTime,
			"is_active":      tpl.IsActive,
			"updated_by":     tpl.UpdatedBy,
		}).Error
}

func (r *readingTemplateRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.ReadingTemplateItem{}).Error; err != nil {
			return err
		}
		return tx.Where("template_id = ?", id).Delete(&model.ReadingTemplate{}).Error
	})
}

func (r *readingTemplateRepo) CountItems(ctx context.Context, templateID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ReadingTemplateItem{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

func (r *readingTemplateRepo) CountRounds(ctx context.Context, templateID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ReadingRound{}).
		Where("template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

type readingRoundRepo struct {
	db *gorm.DB
}

func NewReadingRoundRepo(db *gorm.DB) ReadingRoundRepository {
	return &readingRoundRepo{db: db}
}

func (r *readingRoundRepo) Create(ctx context.Context, round *model.ReadingRound) error {
	return r.db.WithContext(ctx).Create(round).Error
}

func (r *readingRoundRepo) GetByID(ctx context.Context, id string) (*model.ReadingRound, error) {
	var round model.ReadingRound
	err := r.db.WithContext(ctx).
		Preload("Template").
		Where("round_id = ?", id).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *readingRoundRepo) List(ctx context.Context, status, assignedTo string, page, pageSize int) ([]model.ReadingRound, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ReadingRound{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rounds []model.ReadingRound
	err := query.
		Preload("Template").
		Order("scheduled_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rounds).Error
	if err != nil {
		return nil, 0, err
	}
	return rounds, total, nil
}

func (r *readingRoundRepo) UpdateStatus(ctx context.Context, round *model.ReadingRound, from model.RoundStatus, updates map[string]interface{}) error {
	oldVersion := round.Version
	updates["version"] = oldVersion + 1
	result := r.db.WithContext(ctx).
		Model(&model.ReadingRound{}).
		Where("round_id = ? AND status = ? AND version = ?", round.RoundID, from, oldVersion).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	round.Version = oldVersion + 1
	return nil
}

func (r *readingRoundRepo) CreateReading(ctx context.Context, reading *model.MeterReading) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reading).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateReading
			}
			return err
		}
		// 计数器在 SQL 侧自增，避免读改写竞争
		return tx.Model(&model.ReadingRound{}).
			Where("round_id = ?", reading.RoundID).
			Update("read_meters", gorm.Expr("read_meters + 1")).Error
	})
}

func (r *readingRoundRepo) ListReadings(ctx context.Context, roundID string) ([]model.MeterReading, error) {
	var readings []model.MeterReading
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("reading_date ASC").
		Find(&readings).Error
	return readings, err
}

func (r *readingRoundRepo) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ReadingRound{}).
		Where("round_number LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}
