package service

import (
	"go.uber.org/zap"

	"field-ops/backend/config"
	"field-ops/backend/internal/repository"
	"field-ops/backend/pkg/jwt"
	"field-ops/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Operation   OperationService
	Team        TeamService
	Worker      WorkerService
	WorkPackage WorkPackageService
	Reading     ReadingService
	Export      ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Operation:   NewOperationService(repo, logger),
		Team:        NewTeamService(repo, logger),
		Worker:      NewWorkerService(repo, logger),
		WorkPackage: NewWorkPackageService(repo, logger),
		Reading:     NewReadingService(repo, logger),
		Export:      NewExportService(cfg, repo, logger),
	}
}
