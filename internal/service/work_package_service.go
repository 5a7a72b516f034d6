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

// WorkPackageService 工作包业务接口
// 状态机按动作划分：每个动作要求固定的前置状态，而非通用转换表
type WorkPackageService interface {
	Create(ctx context.Context, req *dto.CreateWorkPackageRequest, callerID string) (*model.WorkPackage, error)
	GetByID(ctx context.Context, id string) (*model.WorkPackage, error)
	List(ctx context.Context, status, teamID string, page, pageSize int) ([]model.WorkPackage, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateWorkPackageRequest, callerID string) (*model.WorkPackage, error)
	Assign(ctx context.Context, id string, req *dto.AssignPackageRequest, callerID string) (*model.WorkPackage, error)
	Start(ctx context.Context, id, callerID string) (*model.WorkPackage, error)
	Complete(ctx context.Context, id, callerID string) (*model.WorkPackage, error)
	SubmitForInspection(ctx context.Context, id, callerID string) (*model.WorkPackage, error)
	Inspect(ctx context.Context, id string, req *dto.InspectPackageRequest, callerID string) (*model.WorkPackage, error)
	Delete(ctx context.Context, id string) error
	AddItem(ctx context.Context, id string, req *dto.AddPackageItemRequest) (*model.WorkPackageItem, error)
	RemoveItem(ctx context.Context, id, itemID string) error
}

type workPackageService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewWorkPackageService 创建 WorkPackageService 实例
func NewWorkPackageService(repo *repository.Repository, logger *zap.Logger) WorkPackageService {
	return &workPackageService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *workPackageService) Create(ctx context.Context, req *dto.CreateWorkPackageRequest, callerID string) (*model.WorkPackage, error) {
	for attempt := 0; attempt < numberMaxRetries; attempt++ {
		prefix := packageNumberPrefix(s.now())
		count, err := s.repo.WorkPackage.CountByNumberPrefix(ctx, prefix)
		if err != nil {
			s.logger.Error("统计工作包编号失败", zap.Error(err))
			return nil, err
		}

		pkg := &model.WorkPackage{
			PackageNumber:    formatNumber(prefix, count+1, 4),
			PackageName:      req.PackageName,
			Description:      req.Description,
			Status:           model.PkgStatusNew,
			StationID:        req.StationID,
			AssignedTeamID:   req.AssignedTeamID,
			ContractorName:   req.ContractorName,
			SupervisorID:     req.SupervisorID,
			InspectorID:      req.InspectorID,
			ExpectedDuration: req.ExpectedDuration,
			AgreedAmount:     req.AgreedAmount,
		}
		pkg.CreatedBy = &callerID
		pkg.UpdatedBy = &callerID
		for i, opID := range req.OperationIDs {
			pkg.Items = append(pkg.Items, model.WorkPackageItem{
				OperationID:   opID,
				SequenceOrder: i + 1,
			})
		}

		err = s.repo.WorkPackage.Create(ctx, pkg)
		if err == nil {
			s.logger.Info("创建工作包成功",
				zap.String("package_id", pkg.PackageID),
				zap.String("package_number", pkg.PackageNumber))
			return pkg, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		s.logger.Error("创建工作包失败", zap.Error(err))
		return nil, err
	}

	return nil, pkgerrors.Conflict(15003, "工作包编号生成冲突，请重试")
}

// ────────────────────── 查询 ──────────────────────

func (s *workPackageService) GetByID(ctx context.Context, id string) (*model.WorkPackage, error) {
	pkg, err := s.repo.WorkPackage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(15001, "工作包不存在")
		}
		s.logger.Error("查询工作包失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return pkg, nil
}

func (s *workPackageService) List(ctx context.Context, status, teamID string, page, pageSize int) ([]model.WorkPackage, int64, error) {
	pkgs, total, err := s.repo.WorkPackage.List(ctx, status, teamID, page, pageSize)
	if err != nil {
		s.logger.Error("查询工作包列表失败", zap.Error(err))
		return nil, 0, err
	}
	return pkgs, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *workPackageService) Update(ctx context.Context, id string, req *dto.UpdateWorkPackageRequest, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PackageName != nil {
		pkg.PackageName = *req.PackageName
	}
	if req.Description != nil {
		pkg.Description = *req.Description
	}
	if req.ContractorName != nil {
		pkg.ContractorName = *req.ContractorName
	}
	if req.SupervisorID != nil {
		pkg.SupervisorID = req.SupervisorID
	}
	if req.InspectorID != nil {
		pkg.InspectorID = req.InspectorID
	}
	if req.ExpectedDuration != nil {
		pkg.ExpectedDuration = req.ExpectedDuration
	}
	if req.AgreedAmount != nil {
		pkg.AgreedAmount = req.AgreedAmount
	}
	pkg.UpdatedBy = &callerID

	if err := s.repo.WorkPackage.Update(ctx, pkg); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新工作包失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return pkg, nil
}

// ────────────────────── 生命周期动作 ──────────────────────

func (s *workPackageService) Assign(ctx context.Context, id string, req *dto.AssignPackageRequest, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusNew {
		return nil, pkgerrors.InvalidState(15002, "仅新建状态的工作包可以指派")
	}
	if _, err := s.repo.Team.GetByID(ctx, req.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(13001, "班组不存在")
		}
		return nil, err
	}

	now := s.now()
	err = s.repo.WorkPackage.UpdateStatus(ctx, pkg, model.PkgStatusNew, map[string]interface{}{
		"status":           model.PkgStatusAssigned,
		"assigned_team_id": req.TeamID,
		"assigned_at":      now,
		"updated_by":       callerID,
	})
	if err != nil {
		return nil, err
	}
	pkg.Status = model.PkgStatusAssigned
	pkg.AssignedTeamID = &req.TeamID
	pkg.AssignedAt = &now
	return pkg, nil
}

func (s *workPackageService) Start(ctx context.Context, id, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusAssigned {
		return nil, pkgerrors.InvalidState(15002, "仅已指派状态的工作包可以开工")
	}

	now := s.now()
	err = s.repo.WorkPackage.UpdateStatus(ctx, pkg, model.PkgStatusAssigned, map[string]interface{}{
		"status":     model.PkgStatusInProgress,
		"started_at": now,
		"updated_by": callerID,
	})
	if err != nil {
		return nil, err
	}
	pkg.Status = model.PkgStatusInProgress
	pkg.StartedAt = &now
	return pkg, nil
}

func (s *workPackageService) Complete(ctx context.Context, id, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusInProgress {
		return nil, pkgerrors.InvalidState(15002, "仅施工中状态的工作包可以报完工")
	}

	now := s.now()
	err = s.repo.WorkPackage.UpdateStatus(ctx, pkg, model.PkgStatusInProgress, map[string]interface{}{
		"status":       model.PkgStatusCompletedByTeam,
		"completed_at": now,
		"updated_by":   callerID,
	})
	if err != nil {
		return nil, err
	}
	pkg.Status = model.PkgStatusCompletedByTeam
	pkg.CompletedAt = &now
	return pkg, nil
}

func (s *workPackageService) SubmitForInspection(ctx context.Context, id, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusCompletedByTeam {
		return nil, pkgerrors.InvalidState(15002, "仅班组完工状态的工作包可以提交验收")
	}

	err = s.repo.WorkPackage.UpdateStatus(ctx, pkg, model.PkgStatusCompletedByTeam, map[string]interface{}{
		"status":     model.PkgStatusUnderInspection,
		"updated_by": callerID,
	})
	if err != nil {
		return nil, err
	}
	pkg.Status = model.PkgStatusUnderInspection
	return pkg, nil
}

// Inspect 验收。rejected 在工作包状态机中是终态，不提供返工路径。
func (s *workPackageService) Inspect(ctx context.Context, id string, req *dto.InspectPackageRequest, callerID string) (*model.WorkPackage, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusUnderInspection {
		return nil, pkgerrors.InvalidState(15002, "仅验收中状态的工作包可以出具验收结果")
	}

	now := s.now()
	updates := map[string]interface{}{
		"inspected_at":     now,
		"inspection_notes": req.Notes,
		"updated_by":       callerID,
	}
	var target model.PackageStatus
	switch model.InspectResult(req.Result) {
	case model.InspectApproved:
		target = model.PkgStatusApproved
		updates["status"] = target
		updates["approved_at"] = now
	case model.InspectRejected:
		if req.RejectionReason == "" {
			return nil, pkgerrors.Validation(15004, "验收不通过必须填写原因")
		}
		target = model.PkgStatusRejected
		updates["status"] = target
		updates["rejection_reason"] = req.RejectionReason
	default:
		return nil, pkgerrors.Validation(15004, "未知的验收结果: "+req.Result)
	}

	err = s.repo.WorkPackage.UpdateStatus(ctx, pkg, model.PkgStatusUnderInspection, updates)
	if err != nil {
		return nil, err
	}
	pkg.Status = target
	pkg.InspectedAt = &now
	pkg.InspectionNotes = req.Notes
	if target == model.PkgStatusApproved {
		pkg.ApprovedAt = &now
	} else {
		pkg.RejectionReason = req.RejectionReason
	}
	s.logger.Info("工作包验收",
		zap.String("id", id),
		zap.String("result", req.Result))
	return pkg, nil
}

// ────────────────────── Delete ──────────────────────

func (s *workPackageService) Delete(ctx context.Context, id string) error {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pkg.Status != model.PkgStatusNew {
		return pkgerrors.Conflict(15002, "仅新建状态的工作包可以删除")
	}
	if err := s.repo.WorkPackage.Delete(ctx, id); err != nil {
		s.logger.Error("删除工作包失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 条目管理 ──────────────────────

// AddItem 追加条目，顺序号取当前最大值 + 1（移除留下的空洞不回填）
func (s *workPackageService) AddItem(ctx context.Context, id string, req *dto.AddPackageItemRequest) (*model.WorkPackageItem, error) {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg.Status != model.PkgStatusNew {
		return nil, pkgerrors.InvalidState(15002, "仅新建状态的工作包可以调整条目")
	}
	if _, err := s.repo.Operation.GetByID(ctx, req.OperationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound(12001, "作业不存在")
		}
		return nil, err
	}

	maxSeq, err := s.repo.WorkPackage.MaxSequenceOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	item := &model.WorkPackageItem{
		PackageID:     id,
		OperationID:   req.OperationID,
		SequenceOrder: maxSeq + 1,
	}
	if err := s.repo.WorkPackage.AddItem(ctx, item); err != nil {
		s.logger.Error("追加工作包条目失败", zap.String("package_id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *workPackageService) RemoveItem(ctx context.Context, id, itemID string) error {
	pkg, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pkg.Status != model.PkgStatusNew {
		return pkgerrors.InvalidState(15002, "仅新建状态的工作包可以调整条目")
	}

	affected, err := s.repo.WorkPackage.RemoveItem(ctx, id, itemID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgerrors.NotFound(15005, "工作包条目不存在")
	}
	return nil
}
