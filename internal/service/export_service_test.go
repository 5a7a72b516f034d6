package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
)

func setupTestExportService() (ExportService, *repository.Repository) {
	repo := newMockRepository()
	return NewExportService(nil, repo, zap.NewNop()), repo
}

func seedExportOperation(t *testing.T, repo *repository.Repository, number, title string, scheduled time.Time) *model.Operation {
	t.Helper()
	op := &model.Operation{
		OperationNumber: number,
		OperationType:   model.OpTypeInstallation,
		Title:           title,
		Priority:        2,
		Status:          model.OpStatusScheduled,
		Address:         "城东变电站 3 号线",
		ScheduledDate:   &scheduled,
	}
	if err := repo.Operation.Create(context.Background(), op, &model.OperationStatusLog{NewStatus: model.OpStatusDraft}); err != nil {
		t.Fatalf("写入导出测试数据失败: %v", err)
	}
	return op
}

func TestExportService_ExportOperations(t *testing.T) {
	svc, repo := setupTestExportService()
	scheduled := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	seedExportOperation(t, repo, "INS-2603-0001", "新装单相表", scheduled)
	seedExportOperation(t, repo, "INS-2603-0002", "新装三相表", scheduled)

	buf, filename, err := svc.ExportOperations(context.Background(), &dto.OperationListQuery{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ExportOperations 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾，实际=%s", filename)
	}

	// 回读校验内容
	file, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer file.Close()

	rows, err := file.GetRows("作业台账")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望表头 + 2 行数据，实际=%d 行", len(rows))
	}
	if rows[0][0] != "作业编号" {
		t.Errorf("表头不符，实际=%s", rows[0][0])
	}
	numbers := []string{rows[1][0], rows[2][0]}
	for _, want := range []string{"INS-2603-0001", "INS-2603-0002"} {
		if numbers[0] != want && numbers[1] != want {
			t.Errorf("导出应包含编号 %s，实际=%v", want, numbers)
		}
	}
}

func TestExportService_ExportOperations_Empty(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportOperations(context.Background(), &dto.OperationListQuery{Page: 1, PageSize: 10})
	if !errors.Is(err, ErrExportNoOperations) {
		t.Errorf("无数据应返回 ErrExportNoOperations，实际: %v", err)
	}
}

func TestExportService_OperationsCalendar(t *testing.T) {
	svc, repo := setupTestExportService()
	scheduled := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	op := seedExportOperation(t, repo, "INS-2603-0001", "新装单相表", scheduled)

	// 已取消的作业不进入日历
	cancelled := seedExportOperation(t, repo, "INS-2603-0002", "已取消作业", scheduled)
	repo.Operation.(*mockOperationRepo).ops[cancelled.OperationID].Status = model.OpStatusCancelled

	content, err := svc.OperationsCalendar(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), "", "")
	if err != nil {
		t.Fatalf("OperationsCalendar 应成功: %v", err)
	}

	if !strings.Contains(content, "BEGIN:VCALENDAR") || !strings.Contains(content, "BEGIN:VEVENT") {
		t.Error("输出应为 iCalendar 格式")
	}
	if !strings.Contains(content, op.OperationID) {
		t.Error("事件 UID 应为作业 ID")
	}
	if !strings.Contains(content, "INS-2603-0001") {
		t.Error("事件摘要应包含作业编号")
	}
	if strings.Contains(content, "INS-2603-0002") {
		t.Error("已取消作业不应进入日历")
	}
}
