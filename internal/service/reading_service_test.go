package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
	pkgerrors "field-ops/backend/pkg/errors"
)

func setupTestReadingService() (*readingService, *repository.Repository) {
	repo := newMockRepository()
	svc := NewReadingService(repo, zap.NewNop()).(*readingService)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func createTestTemplate(t *testing.T, svc *readingService, meterIDs ...string) *model.ReadingTemplate {
	t.Helper()
	tpl, err := svc.CreateTemplate(context.Background(), &dto.CreateReadingTemplateRequest{
		TemplateCode: "TPL-" + time.Now().Format("150405.000"),
		TemplateName: "城东片区月抄",
		Frequency:    "monthly",
		MeterIDs:     meterIDs,
	}, "dispatcher-001")
	if err != nil {
		t.Fatalf("CreateTemplate 应成功: %v", err)
	}
	return tpl
}

func createInProgressRound(t *testing.T, svc *readingService, meterIDs ...string) *model.ReadingRound {
	t.Helper()
	ctx := context.Background()
	tpl := createTestTemplate(t, svc, meterIDs...)
	round, err := svc.CreateRound(ctx, &dto.CreateReadingRoundRequest{
		TemplateID:    tpl.TemplateID,
		ScheduledDate: "2026-03-15",
	}, "dispatcher-001")
	if err != nil {
		t.Fatalf("CreateRound 应成功: %v", err)
	}
	if _, err := svc.StartRound(ctx, round.RoundID, "reader-001"); err != nil {
		t.Fatalf("StartRound 应成功: %v", err)
	}
	return round
}

// ── 模板 ──

func TestReadingService_CreateTemplate_DuplicateCode(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	req := &dto.CreateReadingTemplateRequest{
		TemplateCode: "TPL-EAST-01",
		TemplateName: "城东片区月抄",
		Frequency:    "monthly",
	}
	if _, err := svc.CreateTemplate(ctx, req, "u1"); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}
	_, err := svc.CreateTemplate(ctx, req, "u1")
	if !pkgerrors.IsKind(err, pkgerrors.KindConflict) {
		t.Errorf("重复编码应返回冲突，实际: %v", err)
	}
}

func TestReadingService_DeleteTemplate_BlockedByRounds(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	tpl := createTestTemplate(t, svc, "meter-001")
	if _, err := svc.CreateRound(ctx, &dto.CreateReadingRoundRequest{
		TemplateID:    tpl.TemplateID,
		ScheduledDate: "2026-03-15",
	}, "u1"); err != nil {
		t.Fatalf("CreateRound 应成功: %v", err)
	}

	err := svc.DeleteTemplate(ctx, tpl.TemplateID)
	if !pkgerrors.IsKind(err, pkgerrors.KindConflict) {
		t.Errorf("被轮次引用的模板删除应返回冲突，实际: %v", err)
	}
}

// ── 轮次 ──

func TestReadingService_CreateRound_SnapshotsTotalMeters(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	tpl := createTestTemplate(t, svc, "meter-001", "meter-002", "meter-003")
	round, err := svc.CreateRound(ctx, &dto.CreateReadingRoundRequest{
		TemplateID:    tpl.TemplateID,
		ScheduledDate: "2026-03-15",
	}, "dispatcher-001")
	if err != nil {
		t.Fatalf("CreateRound 应成功: %v", err)
	}
	if round.Status != model.RoundStatusScheduled {
		t.Errorf("新轮次应为 scheduled，实际=%s", round.Status)
	}
	if round.TotalMeters != 3 {
		t.Errorf("total_meters 应为模板条目快照 3，实际=%d", round.TotalMeters)
	}
	if round.RoundNumber != "RND-260310-001" {
		t.Errorf("期望编号 RND-260310-001，实际=%s", round.RoundNumber)
	}
}

func TestReadingService_CreateRound_InactiveTemplate(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	tpl := createTestTemplate(t, svc)
	inactive := false
	svc.UpdateTemplate(ctx, tpl.TemplateID, &dto.UpdateReadingTemplateRequest{IsActive: &inactive}, "u1")

	_, err := svc.CreateRound(ctx, &dto.CreateReadingRoundRequest{
		TemplateID:    tpl.TemplateID,
		ScheduledDate: "2026-03-15",
	}, "u1")
	if !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Errorf("停用模板创建轮次应被拒绝，实际: %v", err)
	}
}

func TestReadingService_RoundLifecyclePreconditions(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	tpl := createTestTemplate(t, svc, "meter-001")
	round, _ := svc.CreateRound(ctx, &dto.CreateReadingRoundRequest{
		TemplateID:    tpl.TemplateID,
		ScheduledDate: "2026-03-15",
	}, "u1")

	// scheduled 状态不能直接完成，也不能录入抄表
	if _, err := svc.CompleteRound(ctx, round.RoundID, "u1"); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Errorf("scheduled 直接完成应被拒绝，实际: %v", err)
	}
	if _, err := svc.RecordReading(ctx, round.RoundID, &dto.RecordReadingRequest{MeterID: "meter-001", ReadingValue: 100}, "u1"); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Errorf("scheduled 录入抄表应被拒绝，实际: %v", err)
	}

	started, err := svc.StartRound(ctx, round.RoundID, "u1")
	if err != nil {
		t.Fatalf("StartRound 应成功: %v", err)
	}
	if started.StartedAt == nil {
		t.Error("开始轮次应写入 started_at")
	}
	// 重复开始被拒绝
	if _, err := svc.StartRound(ctx, round.RoundID, "u1"); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Errorf("重复开始应被拒绝，实际: %v", err)
	}

	completed, err := svc.CompleteRound(ctx, round.RoundID, "u1")
	if err != nil {
		t.Fatalf("CompleteRound 应成功: %v", err)
	}
	if completed.CompletedAt == nil {
		t.Error("完成轮次应写入 completed_at")
	}
	// completed 为终态
	if _, err := svc.RecordReading(ctx, round.RoundID, &dto.RecordReadingRequest{MeterID: "meter-001", ReadingValue: 100}, "u1"); !pkgerrors.IsKind(err, pkgerrors.KindInvalidState) {
		t.Errorf("完成后录入抄表应被拒绝，实际: %v", err)
	}
}

// ── 抄表记录 ──

func TestReadingService_RecordReading_IncrementsCounter(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	round := createInProgressRound(t, svc, "meter-001", "meter-002", "meter-003")

	reading, err := svc.RecordReading(ctx, round.RoundID, &dto.RecordReadingRequest{
		MeterID:      "meter-001",
		ReadingValue: 1234.5,
	}, "reader-001")
	if err != nil {
		t.Fatalf("RecordReading 应成功: %v", err)
	}
	if reading.ReadBy == nil || *reading.ReadBy != "reader-001" {
		t.Error("抄表记录应写入抄表人")
	}

	loaded, _ := svc.GetRound(ctx, round.RoundID)
	if loaded.ReadMeters != 1 {
		t.Errorf("read_meters 应自增到 1，实际=%d", loaded.ReadMeters)
	}
}

func TestReadingService_RecordReading_Duplicate(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	round := createInProgressRound(t, svc, "meter-001", "meter-002")

	req := &dto.RecordReadingRequest{MeterID: "meter-001", ReadingValue: 100}
	if _, err := svc.RecordReading(ctx, round.RoundID, req, "u1"); err != nil {
		t.Fatalf("首次抄表应成功: %v", err)
	}

	_, err := svc.RecordReading(ctx, round.RoundID, req, "u1")
	if !pkgerrors.IsKind(err, pkgerrors.KindDuplicateReading) {
		t.Fatalf("重复抄表应返回专属错误，实际: %v", err)
	}

	// 重复抄表不自增计数器
	loaded, _ := svc.GetRound(ctx, round.RoundID)
	if loaded.ReadMeters != 1 {
		t.Errorf("重复抄表后 read_meters 仍应为 1，实际=%d", loaded.ReadMeters)
	}
}

// total_meters 只是快照，超出亦可录入，计数器不设上限
func TestReadingService_RecordReading_BeyondSnapshot(t *testing.T) {
	svc, _ := setupTestReadingService()
	ctx := context.Background()

	round := createInProgressRound(t, svc, "meter-001", "meter-002", "meter-003")

	for _, meterID := range []string{"meter-001", "meter-002", "meter-003", "meter-extra"} {
		if _, err := svc.RecordReading(ctx, round.RoundID, &dto.RecordReadingRequest{
			MeterID:      meterID,
			ReadingValue: 100,
		}, "u1"); err != nil {
			t.Fatalf("录入 %s 应成功: %v", meterID, err)
		}
	}

	loaded, _ := svc.GetRound(ctx, round.RoundID)
	if loaded.ReadMeters != 4 {
		t.Errorf("read_meters 应为 4（超出快照不截断），实际=%d", loaded.ReadMeters)
	}
	if loaded.TotalMeters != 3 {
		t.Errorf("total_meters 快照应保持 3，实际=%d", loaded.TotalMeters)
	}
}
