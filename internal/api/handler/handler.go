package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"field-ops/backend/internal/service"
	pkgerrors "field-ops/backend/pkg/errors"
	"field-ops/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Operation   *OperationHandler
	Team        *TeamHandler
	Worker      *WorkerHandler
	WorkPackage *WorkPackageHandler
	Reading     *ReadingHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Operation:   NewOperationHandler(svc.Operation),
		Team:        NewTeamHandler(svc.Team),
		Worker:      NewWorkerHandler(svc.Worker),
		WorkPackage: NewWorkPackageHandler(svc.WorkPackage),
		Reading:     NewReadingHandler(svc.Reading),
		Export:      NewExportHandler(svc.Export),
	}
}

// handleDomainError 领域错误到 HTTP 状态码的统一映射
func handleDomainError(c *gin.Context, err error) {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		response.Conflict(c, 10006, err.Error())
		return
	}
	if de := pkgerrors.AsDomain(err); de != nil {
		switch de.Kind {
		case pkgerrors.KindNotFound:
			response.NotFound(c, de.Code, de.Message)
		case pkgerrors.KindInvalidTransition, pkgerrors.KindInvalidState, pkgerrors.KindValidation:
			response.BadRequest(c, de.Code, de.Message)
		case pkgerrors.KindConflict, pkgerrors.KindDuplicateReading:
			response.Conflict(c, de.Code, de.Message)
		default:
			response.InternalError(c)
		}
		return
	}
	response.InternalError(c)
}
