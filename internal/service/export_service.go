package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"field-ops/backend/config"
	"field-ops/backend/internal/dto"
	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
	pkgerrors "field-ops/backend/pkg/errors"
)

// ── 导出模块业务错误 ──

var ErrExportNoOperations = errors.New("筛选条件下没有可导出的作业")

// ExportService 导出业务接口
//
// 设计说明：
//   - 作业台账导出为 Excel (.xlsx)，筛选条件与列表查询一致
//   - 计划作业以 iCalendar (RFC 5545) 输出，供调度员订阅到日历客户端
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportOperations 导出作业台账为 Excel
	ExportOperations(ctx context.Context, q *dto.OperationListQuery) (*bytes.Buffer, string, error)
	// OperationsCalendar 生成计划作业的 iCalendar 订阅内容
	// teamID / workerID 非空时仅包含对应班组/工人的作业
	OperationsCalendar(ctx context.Context, start, end time.Time, teamID, workerID string) (string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger}
}

// 状态/类型的台账展示名
var operationStatusNames = map[model.OperationStatus]string{
	model.OpStatusDraft:                "草稿",
	model.OpStatusScheduled:            "已排期",
	model.OpStatusAssigned:             "已指派",
	model.OpStatusInProgress:           "施工中",
	model.OpStatusCompleted:            "已完工",
	model.OpStatusCancelled:            "已取消",
	model.OpStatusOnHold:               "已挂起",
	model.OpStatusRejected:             "验收退回",
	model.OpStatusWaitingCustomerCable: "待客户电缆",
	model.OpStatusPendingInspection:    "待验收",
	model.OpStatusApproved:             "已验收",
}

var operationTypeNames = map[model.OperationType]string{
	model.OpTypeInstallation:  "装表",
	model.OpTypeMaintenance:   "检修",
	model.OpTypeInspection:    "稽查",
	model.OpTypeDisconnection: "停电",
	model.OpTypeReconnection:  "复电",
	model.OpTypeMeterReading:  "抄表",
	model.OpTypeCollection:    "催收",
	model.OpTypeMigration:     "迁移",
	model.OpTypeReplacement:   "换表",
}

// ═══════════════════════════════════════════════════════════
// ExportOperations — 导出作业台账为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：单 Sheet "作业台账"，一行一条作业，
// 列：编号 / 类型 / 标题 / 状态 / 优先级 / 班组 / 工人 / 计划日期 / 开工 / 完工 / 地址

func (s *exportService) ExportOperations(ctx context.Context, q *dto.OperationListQuery) (*bytes.Buffer, string, error) {
	f := repository.OperationFilter{
		OperationType: q.OperationType,
		Status:        q.Status,
		TeamID:        q.TeamID,
		WorkerID:      q.WorkerID,
		CustomerID:    q.CustomerID,
		Search:        q.Search,
		Page:          1,
		PageSize:      10000,
	}
	if q.StartDate != "" {
		t, err := parseDate(q.StartDate)
		if err != nil {
			return nil, "", pkgerrors.Validation(12004, "开始日期格式无效")
		}
		f.StartDate = &t
	}
	if q.EndDate != "" {
		t, err := parseDate(q.EndDate)
		if err != nil {
			return nil, "", pkgerrors.Validation(12004, "结束日期格式无效")
		}
		f.EndDate = &t
	}

	ops, _, err := s.repo.Operation.List(ctx, f)
	if err != nil {
		s.logger.Error("查询导出作业失败", zap.Error(err))
		return nil, "", err
	}
	if len(ops) == 0 {
		return nil, "", ErrExportNoOperations
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "作业台账"
	file.SetSheetName("Sheet1", sheet)

	headerStyle, _ := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := []string{"作业编号", "类型", "标题", "状态", "优先级", "班组", "工人", "计划日期", "开工时间", "完工时间", "地址"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		file.SetCellValue(sheet, cell, h)
		file.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	file.SetColWidth(sheet, "A", "A", 16)
	file.SetColWidth(sheet, "C", "C", 30)
	file.SetColWidth(sheet, "H", "J", 18)
	file.SetColWidth(sheet, "K", "K", 40)

	priorityNames := map[int]string{1: "紧急", 2: "普通", 3: "低"}
	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	}

	for i, op := range ops {
		row := i + 2
		teamName := ""
		if op.Team != nil {
			teamName = op.Team.TeamName
		}
		workerName := ""
		if op.Worker != nil {
			workerName = op.Worker.FullName
		}
		scheduled := ""
		if op.ScheduledDate != nil {
			scheduled = op.ScheduledDate.Format("2006-01-02")
		}

		values := []interface{}{
			op.OperationNumber,
			operationTypeNames[op.OperationType],
			op.Title,
			operationStatusNames[op.Status],
			priorityNames[op.Priority],
			teamName,
			workerName,
			scheduled,
			formatTime(op.StartedAt),
			formatTime(op.CompletedAt),
			op.Address,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			file.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	filename := fmt.Sprintf("作业台账_%s.xlsx", time.Now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// OperationsCalendar — 计划作业 iCalendar 订阅
// ═══════════════════════════════════════════════════════════
//
// 每条有计划日期且未取消/未退回的作业生成一个全天事件，
// UID 取作业 ID，保证客户端重复拉取时按 UID 更新而非重复。

func (s *exportService) OperationsCalendar(ctx context.Context, start, end time.Time, teamID, workerID string) (string, error) {
	ops, err := s.repo.Operation.ListScheduledBetween(ctx, start, end)
	if err != nil {
		s.logger.Error("查询计划作业失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//field-ops//operations//CN")
	cal.SetName("现场作业计划")

	for _, op := range ops {
		if op.ScheduledDate == nil {
			continue
		}
		if teamID != "" && (op.AssignedTeamID == nil || *op.AssignedTeamID != teamID) {
			continue
		}
		if workerID != "" && (op.AssignedWorkerID == nil || *op.AssignedWorkerID != workerID) {
			continue
		}
		event := cal.AddEvent(op.OperationID)
		event.SetSummary(fmt.Sprintf("[%s] %s", op.OperationNumber, op.Title))
		event.SetAllDayStartAt(*op.ScheduledDate)
		event.SetAllDayEndAt(op.ScheduledDate.Add(24 * time.Hour))
		event.SetDtStampTime(time.Now())
		if op.Address != "" {
			event.SetLocation(op.Address)
		}

		desc := operationTypeNames[op.OperationType] + " / " + operationStatusNames[op.Status]
		if op.Team != nil {
			desc += " / " + op.Team.TeamName
		}
		if op.Worker != nil {
			desc += " / " + op.Worker.FullName
		}
		event.SetDescription(desc)
	}

	return cal.Serialize(), nil
}
