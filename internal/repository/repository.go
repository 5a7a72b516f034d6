package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User            UserRepository
	Team            TeamRepository
	Worker          WorkerRepository
	Operation       OperationRepository
	WorkPackage     WorkPackageRepository
	ReadingTemplate ReadingTemplateRepository
	ReadingRound    ReadingRoundRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:            NewUserRepo(db),
		Team:            NewTeamRepo(db),
		Worker:          NewWorkerRepo(db),
		Operation:       NewOperationRepo(db),
		WorkPackage:     NewWorkPackageRepo(db),
		ReadingTemplate: NewReadingTemplateRepo(db),
		ReadingRound:    NewReadingRoundRepo(db),
	}
}
