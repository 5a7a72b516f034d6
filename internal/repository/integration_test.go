//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "field-ops/backend/pkg/errors"

	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=field_ops password=field_ops_password dbname=field_ops_test sslmode=disable TimeZone=Asia/Riyadh"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Team{},
		&model.TeamMember{},
		&model.Worker{},
		&model.Operation{},
		&model.OperationStatusLog{},
		&model.ReadingTemplate{},
		&model.ReadingTemplateItem{},
		&model.ReadingRound{},
		&model.MeterReading{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestOperation 创建一条作业并返回清理函数
func setupTestOperation(t *testing.T, repo *repository.Repository) (*model.Operation, func()) {
	t.Helper()
	ctx := context.Background()

	op := &model.Operation{
		OperationNumber: fmt.Sprintf("INS-TEST-%d", time.Now().UnixNano()),
		OperationType:   model.OpTypeInstallation,
		Title:           "集成测试作业",
		Priority:        2,
		Status:          model.OpStatusDraft,
	}
	initialLog := &model.OperationStatusLog{
		NewStatus:    model.OpStatusDraft,
		ChangeReason: "创建作业",
	}
	if err := repo.Operation.Create(ctx, op, initialLog); err != nil {
		t.Fatalf("创建作业失败: %v", err)
	}

	cleanup := func() {
		testDB.Unscoped().Where("operation_id = ?", op.OperationID).Delete(&model.OperationStatusLog{})
		testDB.Unscoped().Where("operation_id = ?", op.OperationID).Delete(&model.Operation{})
	}
	return op, cleanup
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_OperationTransition_ConflictDetected(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	op, cleanup := setupTestOperation(t, repo)
	defer cleanup()

	// 模拟并发：获取两份副本
	copy1, err := repo.Operation.GetByID(ctx, op.OperationID)
	if err != nil {
		t.Fatalf("查询作业失败: %v", err)
	}
	copy2, err := repo.Operation.GetByID(ctx, op.OperationID)
	if err != nil {
		t.Fatalf("查询作业失败: %v", err)
	}

	// 第一次转换成功 draft → scheduled
	from := copy1.Status
	copy1.Status = model.OpStatusScheduled
	log1 := &model.OperationStatusLog{
		OperationID: copy1.OperationID,
		OldStatus:   &from,
		NewStatus:   model.OpStatusScheduled,
	}
	if err := repo.Operation.Transition(ctx, copy1, from, log1); err != nil {
		t.Fatalf("第一次状态转换应成功: %v", err)
	}

	// 第二次转换应失败（version 已过期）
	from2 := copy2.Status
	copy2.Status = model.OpStatusCancelled
	log2 := &model.OperationStatusLog{
		OperationID: copy2.OperationID,
		OldStatus:   &from2,
		NewStatus:   model.OpStatusCancelled,
	}
	err = repo.Operation.Transition(ctx, copy2, from2, log2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但转换成功了")
	}
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_OperationUpdate_ConflictDetected(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	op, cleanup := setupTestOperation(t, repo)
	defer cleanup()

	copy1, _ := repo.Operation.GetByID(ctx, op.OperationID)
	copy2, _ := repo.Operation.GetByID(ctx, op.OperationID)

	copy1.Title = "第一次修改"
	if err := repo.Operation.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	copy2.Title = "第二次修改"
	err := repo.Operation.Update(ctx, copy2)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 唯一约束
// ═══════════════════════════════════════════════════════════

func TestOperationNumber_UniqueConstraint(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	op, cleanup := setupTestOperation(t, repo)
	defer cleanup()

	dup := &model.Operation{
		OperationNumber: op.OperationNumber,
		OperationType:   model.OpTypeInstallation,
		Title:           "编号冲突作业",
		Priority:        2,
		Status:          model.OpStatusDraft,
	}
	err := repo.Operation.Create(ctx, dup, &model.OperationStatusLog{NewStatus: model.OpStatusDraft})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("期望 gorm.ErrDuplicatedKey，得到: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 抄表记录与计数器
// ═══════════════════════════════════════════════════════════

func setupTestRound(t *testing.T, repo *repository.Repository) (*model.ReadingRound, func()) {
	t.Helper()
	ctx := context.Background()

	tpl := &model.ReadingTemplate{
		TemplateCode: fmt.Sprintf("TPL-%d", time.Now().UnixNano()),
		TemplateName: "集成测试模板",
		Frequency:    "monthly",
		IsActive:     true,
	}
	if err := repo.ReadingTemplate.Create(ctx, tpl, nil); err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}

	round := &model.ReadingRound{
		RoundNumber:   fmt.Sprintf("RND-TEST-%d", time.Now().UnixNano()),
		TemplateID:    tpl.TemplateID,
		ScheduledDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Status:        model.RoundStatusInProgress,
		TotalMeters:   2,
	}
	if err := repo.ReadingRound.Create(ctx, round); err != nil {
		t.Fatalf("创建轮次失败: %v", err)
	}

	cleanup := func() {
		testDB.Unscoped().Where("round_id = ?", round.RoundID).Delete(&model.MeterReading{})
		testDB.Unscoped().Where("round_id = ?", round.RoundID).Delete(&model.ReadingRound{})
		testDB.Unscoped().Where("template_id = ?", tpl.TemplateID).Delete(&model.ReadingTemplate{})
	}
	return round, cleanup
}

func TestCreateReading_IncrementsCounterAtomically(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	round, cleanup := setupTestRound(t, repo)
	defer cleanup()

	for i := 0; i < 2; i++ {
		reading := &model.MeterReading{
			RoundID:      round.RoundID,
			MeterID:      uuid.New().String(),
			ReadingValue: float64(1000 + i),
			ReadingDate:  time.Now(),
		}
		if err := repo.ReadingRound.CreateReading(ctx, reading); err != nil {
			t.Fatalf("抄表记录写入失败: %v", err)
		}
	}

	found, err := repo.ReadingRound.GetByID(ctx, round.RoundID)
	if err != nil {
		t.Fatalf("查询轮次失败: %v", err)
	}
	if found.ReadMeters != 2 {
		t.Errorf("期望 read_meters = 2，得到 %d", found.ReadMeters)
	}
}

func TestCreateReading_DuplicateMeterRejected(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	round, cleanup := setupTestRound(t, repo)
	defer cleanup()

	meterID := uuid.New().String()
	first := &model.MeterReading{
		RoundID:      round.RoundID,
		MeterID:      meterID,
		ReadingValue: 1234.5,
		ReadingDate:  time.Now(),
	}
	if err := repo.ReadingRound.CreateReading(ctx, first); err != nil {
		t.Fatalf("首条抄表记录写入失败: %v", err)
	}

	dup := &model.MeterReading{
		RoundID:      round.RoundID,
		MeterID:      meterID,
		ReadingValue: 1250.0,
		ReadingDate:  time.Now(),
	}
	err := repo.ReadingRound.CreateReading(ctx, dup)
	if !errors.Is(err, repository.ErrDuplicateReading) {
		t.Errorf("期望 ErrDuplicateReading，得到: %v", err)
	}

	// 重复写入失败时计数器不应增加
	found, _ := repo.ReadingRound.GetByID(ctx, round.RoundID)
	if found.ReadMeters != 1 {
		t.Errorf("期望 read_meters = 1，得到 %d", found.ReadMeters)
	}
}
