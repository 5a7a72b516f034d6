package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"field-ops/backend/internal/model"
	"field-ops/backend/internal/repository"
	pkgerrors "field-ops/backend/pkg/errors"
)

// ── Mock OperationRepository ──

type mockOperationRepo struct {
	ops     map[string]*model.Operation
	logs    []model.OperationStatusLog
	deleted map[string]bool
	seq     int
}

func newMockOperationRepo() *mockOperationRepo {
	return &mockOperationRepo{
		ops:     make(map[string]*model.Operation),
		deleted: make(map[string]bool),
	}
}

func (m *mockOperationRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("op-%03d", m.seq)
}

func (m *mockOperationRepo) Create(_ context.Context, op *model.Operation, initialLog *model.OperationStatusLog) error {
	for _, existing := range m.ops {
		if existing.OperationNumber == op.OperationNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if op.OperationID == "" {
		op.OperationID = m.nextID()
	}
	if op.Version == 0 {
		op.Version = 1
	}
	stored := *op
	m.ops[op.OperationID] = &stored
	initialLog.OperationID = op.OperationID
	m.logs = append(m.logs, *initialLog)
	return nil
}

func (m *mockOperationRepo) GetByID(_ context.Context, id string) (*model.Operation, error) {
	op, ok := m.ops[id]
	if !ok || m.deleted[id] {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *op
	return &copied, nil
}

func (m *mockOperationRepo) GetDetail(ctx context.Context, id string) (*model.Operation, error) {
	op, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, log := range m.logs {
		if log.OperationID == id {
			op.StatusLogs = append(op.StatusLogs, log)
		}
	}
	return op, nil
}

func (m *mockOperationRepo) List(_ context.Context, f repository.OperationFilter) ([]model.Operation, int64, error) {
	var result []model.Operation
	for id, op := range m.ops {
		if m.deleted[id] {
			continue
		}
		if f.OperationType != "" && string(op.OperationType) != f.OperationType {
			continue
		}
		if f.Status != "" && string(op.Status) != f.Status {
			continue
		}
		if f.TeamID != "" && (op.AssignedTeamID == nil || *op.AssignedTeamID != f.TeamID) {
			continue
		}
		if f.WorkerID != "" && (op.AssignedWorkerID == nil || *op.AssignedWorkerID != f.WorkerID) {
			continue
		}
		result = append(result, *op)
	}
	return result, int64(len(result)), nil
}

func (m *mockOperationRepo) Update(_ context.Context, op *model.Operation) error {
	stored, ok := m.ops[op.OperationID]
	if !ok || m.deleted[op.OperationID] {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != op.Version {
		return pkgerrors.ErrOptimisticLock
	}
	op.Version++
	copied := *op
	m.ops[op.OperationID] = &copied
	return nil
}

func (m *mockOperationRepo) Transition(_ context.Context, op *model.Operation, from model.OperationStatus, log *model.OperationStatusLog) error {
	stored, ok := m.ops[op.OperationID]
	if !ok || m.deleted[op.OperationID] {
		return pkgerrors.ErrOptimisticLock
	}
	if stored.Status != from || stored.Version != op.Version {
		return pkgerrors.ErrOptimisticLock
	}
	op.Version++
	copied := *op
	m.ops[op.OperationID] = &copied
	log.OperationID = op.OperationID
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockOperationRepo) Assign(_ context.Context, op *model.Operation, log *model.OperationStatusLog) error {
	stored, ok := m.ops[op.OperationID]
	if !ok || m.deleted[op.OperationID] {
		return pkgerrors.ErrOptimisticLock
	}
	if stored.Version != op.Version {
		return pkgerrors.ErrOptimisticLock
	}
	op.Version++
	copied := *op
	m.ops[op.OperationID] = &copied
	if log != nil {
		log.OperationID = op.OperationID
		m.logs = append(m.logs, *log)
	}
	return nil
}

func (m *mockOperationRepo) SoftDelete(_ context.Context, id, _ string) error {
	if _, ok := m.ops[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.deleted[id] = true
	return nil
}

func (m *mockOperationRepo) ListStatusLogs(_ context.Context, operationID string) ([]model.OperationStatusLog, error) {
	var result []model.OperationStatusLog
	for _, log := range m.logs {
		if log.OperationID == operationID {
			result = append(result, log)
		}
	}
	return result, nil
}

func (m *mockOperationRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, op := range m.ops {
		if strings.HasPrefix(op.OperationNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (m *mockOperationRepo) CountActiveByTeam(_ context.Context, teamID string) (int64, error) {
	var count int64
	for id, op := range m.ops {
		if m.deleted[id] || op.AssignedTeamID == nil || *op.AssignedTeamID != teamID {
			continue
		}
		if op.Status == model.OpStatusAssigned || op.Status == model.OpStatusInProgress {
			count++
		}
	}
	return count, nil
}

func (m *mockOperationRepo) CountActiveByWorker(_ context.Context, workerID string) (int64, error) {
	var count int64
	for id, op := range m.ops {
		if m.deleted[id] || op.AssignedWorkerID == nil || *op.AssignedWorkerID != workerID {
			continue
		}
		if op.Status == model.OpStatusAssigned || op.Status == model.OpStatusInProgress {
			count++
		}
	}
	return count, nil
}

func (m *mockOperationRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for id, op := range m.ops {
		if !m.deleted[id] {
			result[string(op.Status)]++
		}
	}
	return result, nil
}

func (m *mockOperationRepo) CountByType(_ context.Context) (map[string]int64, error) {
	result := make(map[string]int64)
	for id, op := range m.ops {
		if !m.deleted[id] {
			result[string(op.OperationType)]++
		}
	}
	return result, nil
}

func (m *mockOperationRepo) CountAll(_ context.Context) (int64, error) {
	var count int64
	for id := range m.ops {
		if !m.deleted[id] {
			count++
		}
	}
	return count, nil
}

func (m *mockOperationRepo) ListCompletedByWorker(_ context.Context, workerID string, start, end time.Time) ([]model.Operation, error) {
	var result []model.Operation
	for id, op := range m.ops {
		if m.deleted[id] || op.AssignedWorkerID == nil || *op.AssignedWorkerID != workerID {
			continue
		}
		if op.Status != model.OpStatusCompleted && op.Status != model.OpStatusApproved {
			continue
		}
		if op.CompletedAt == nil || op.CompletedAt.Before(start) || op.CompletedAt.After(end) {
			continue
		}
		result = append(result, *op)
	}
	return result, nil
}

func (m *mockOperationRepo) ListScheduledBetween(_ context.Context, start, end time.Time) ([]model.Operation, error) {
	var result []model.Operation
	for id, op := range m.ops {
		if m.deleted[id] || op.ScheduledDate == nil {
			continue
		}
		if op.Status == model.OpStatusCancelled || op.Status == model.OpStatusRejected {
			continue
		}
		if op.ScheduledDate.Before(start) || op.ScheduledDate.After(end) {
			continue
		}
		result = append(result, *op)
	}
	return result, nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams   map[string]*model.Team
	members map[string]*model.TeamMember
	seq     int
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{
		teams:   make(map[string]*model.Team),
		members: make(map[string]*model.TeamMember),
	}
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	for _, t := range m.teams {
		if t.TeamCode == team.TeamCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if team.TeamID == "" {
		m.seq++
		team.TeamID = fmt.Sprintf("team-%03d", m.seq)
	}
	copied := *team
	m.teams[team.TeamID] = &copied
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	team, ok := m.teams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *team
	return &copied, nil
}

func (m *mockTeamRepo) GetByCode(_ context.Context, code string) (*model.Team, error) {
	for _, t := range m.teams {
		if t.TeamCode == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context, teamType string, active *bool) ([]model.Team, error) {
	var result []model.Team
	for _, t := range m.teams {
		if teamType != "" && t.TeamType != teamType {
			continue
		}
		if active != nil && t.IsActive != *active {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	if _, ok := m.teams[team.TeamID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *team
	m.teams[team.TeamID] = &copied
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string) error {
	delete(m.teams, id)
	for mid, member := range m.members {
		if member.TeamID == id {
			delete(m.members, mid)
		}
	}
	return nil
}

func (m *mockTeamRepo) AddMember(_ context.Context, member *model.TeamMember) error {
	if member.MemberID == "" {
		m.seq++
		member.MemberID = fmt.Sprintf("member-%03d", m.seq)
	}
	copied := *member
	m.members[member.MemberID] = &copied
	return nil
}

func (m *mockTeamRepo) GetMember(_ context.Context, teamID, workerID string) (*model.TeamMember, error) {
	for _, member := range m.members {
		if member.TeamID == teamID && member.WorkerID == workerID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) ListActiveMembers(_ context.Context, teamID string) ([]model.TeamMember, error) {
	var result []model.TeamMember
	for _, member := range m.members {
		if member.TeamID == teamID && member.IsActive {
			result = append(result, *member)
		}
	}
	return result, nil
}

func (m *mockTeamRepo) RemoveMember(_ context.Context, memberID string, leftAt time.Time) error {
	member, ok := m.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	member.IsActive = false
	member.LeftAt = &leftAt
	return nil
}

func (m *mockTeamRepo) ReactivateMember(_ context.Context, memberID, role string) error {
	member, ok := m.members[memberID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	member.IsActive = true
	member.LeftAt = nil
	member.Role = role
	member.JoinedAt = time.Now()
	return nil
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers      map[string]*model.Worker
	locationLogs []model.WorkerLocationLog
	performances []model.WorkerPerformance
	seq          int
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{workers: make(map[string]*model.Worker)}
}

func (m *mockWorkerRepo) Create(_ context.Context, worker *model.Worker) error {
	for _, w := range m.workers {
		if w.WorkerCode == worker.WorkerCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if worker.WorkerID == "" {
		m.seq++
		worker.WorkerID = fmt.Sprintf("worker-%03d", m.seq)
	}
	copied := *worker
	m.workers[worker.WorkerID] = &copied
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	worker, ok := m.workers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *worker
	return &copied, nil
}

func (m *mockWorkerRepo) GetByCode(_ context.Context, code string) (*model.Worker, error) {
	for _, w := range m.workers {
		if w.WorkerCode == code {
			copied := *w
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) List(_ context.Context, workerType string, available, active *bool) ([]model.Worker, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if workerType != "" && w.WorkerType != workerType {
			continue
		}
		if available != nil && w.IsAvailable != *available {
			continue
		}
		if active != nil && w.IsActive != *active {
			continue
		}
		result = append(result, *w)
	}
	return result, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, worker *model.Worker) error {
	if _, ok := m.workers[worker.WorkerID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *worker
	m.workers[worker.WorkerID] = &copied
	return nil
}

func (m *mockWorkerRepo) Delete(_ context.Context, id string) error {
	delete(m.workers, id)
	return nil
}

func (m *mockWorkerRepo) RecordLocation(_ context.Context, workerID string, log *model.WorkerLocationLog) error {
	worker, ok := m.workers[workerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	worker.LastLatitude = &log.Latitude
	worker.LastLongitude = &log.Longitude
	worker.LastLocationAt = &log.RecordedAt
	log.WorkerID = workerID
	m.locationLogs = append(m.locationLogs, *log)
	return nil
}

func (m *mockWorkerRepo) ListLocationLogs(_ context.Context, workerID string, start, end *time.Time, limit int) ([]model.WorkerLocationLog, error) {
	var result []model.WorkerLocationLog
	for _, log := range m.locationLogs {
		if log.WorkerID != workerID {
			continue
		}
		if start != nil && log.RecordedAt.Before(*start) {
			continue
		}
		if end != nil && log.RecordedAt.After(*end) {
			continue
		}
		result = append(result, log)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockWorkerRepo) ListWithLocation(_ context.Context) ([]model.Worker, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if w.IsActive && w.LastLocationAt != nil {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWorkerRepo) CreatePerformance(_ context.Context, perf *model.WorkerPerformance) error {
	if perf.PerformanceID == "" {
		m.seq++
		perf.PerformanceID = fmt.Sprintf("perf-%03d", m.seq)
	}
	m.performances = append(m.performances, *perf)
	return nil
}

func (m *mockWorkerRepo) ListPerformance(_ context.Context, workerID string, limit int) ([]model.WorkerPerformance, error) {
	var result []model.WorkerPerformance
	for _, p := range m.performances {
		if p.WorkerID == workerID {
			result = append(result, p)
		}
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ── Mock WorkPackageRepository ──

type mockWorkPackageRepo struct {
	pkgs  map[string]*model.WorkPackage
	items map[string]*model.WorkPackageItem
	seq   int
}

func newMockWorkPackageRepo() *mockWorkPackageRepo {
	return &mockWorkPackageRepo{
		pkgs:  make(map[string]*model.WorkPackage),
		items: make(map[string]*model.WorkPackageItem),
	}
}

func (m *mockWorkPackageRepo) Create(_ context.Context, pkg *model.WorkPackage) error {
	for _, p := range m.pkgs {
		if p.PackageNumber == pkg.PackageNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if pkg.PackageID == "" {
		m.seq++
		pkg.PackageID = fmt.Sprintf("pkg-%03d", m.seq)
	}
	if pkg.Version == 0 {
		pkg.Version = 1
	}
	for i := range pkg.Items {
		m.seq++
		pkg.Items[i].ItemID = fmt.Sprintf("item-%03d", m.seq)
		pkg.Items[i].PackageID = pkg.PackageID
		copied := pkg.Items[i]
		m.items[copied.ItemID] = &copied
	}
	copied := *pkg
	m.pkgs[pkg.PackageID] = &copied
	return nil
}

func (m *mockWorkPackageRepo) GetByID(_ context.Context, id string) (*model.WorkPackage, error) {
	pkg, ok := m.pkgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *pkg
	copied.Items = nil
	for _, item := range m.items {
		if item.PackageID == id {
			copied.Items = append(copied.Items, *item)
		}
	}
	return &copied, nil
}

func (m *mockWorkPackageRepo) List(_ context.Context, status, teamID string, _, _ int) ([]model.WorkPackage, int64, error) {
	var result []model.WorkPackage
	for _, p := range m.pkgs {
		if status != "" && string(p.Status) != status {
			continue
		}
		if teamID != "" && (p.AssignedTeamID == nil || *p.AssignedTeamID != teamID) {
			continue
		}
		result = append(result, *p)
	}
	return result, int64(len(result)), nil
}

func (m *mockWorkPackageRepo) Update(_ context.Context, pkg *model.WorkPackage) error {
	stored, ok := m.pkgs[pkg.PackageID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != pkg.Version {
		return pkgerrors.ErrOptimisticLock
	}
	pkg.Version++
	copied := *pkg
	copied.Items = nil
	m.pkgs[pkg.PackageID] = &copied
	return nil
}

func (m *mockWorkPackageRepo) UpdateStatus(_ context.Context, pkg *model.WorkPackage, from model.PackageStatus, updates map[string]interface{}) error {
	stored, ok := m.pkgs[pkg.PackageID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	if stored.Status != from || stored.Version != pkg.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if status, ok := updates["status"].(model.PackageStatus); ok {
		stored.Status = status
	}
	if teamID, ok := updates["assigned_team_id"].(string); ok {
		stored.AssignedTeamID = &teamID
	}
	applyTime := func(key string, dst **time.Time) {
		if t, ok := updates[key].(time.Time); ok {
			*dst = &t
		}
	}
	applyTime("assigned_at", &stored.AssignedAt)
	applyTime("started_at", &stored.StartedAt)
	applyTime("completed_at", &stored.CompletedAt)
	applyTime("inspected_at", &stored.InspectedAt)
	applyTime("approved_at", &stored.ApprovedAt)
	if notes, ok := updates["inspection_notes"].(string); ok {
		stored.InspectionNotes = notes
	}
	if reason, ok := updates["rejection_reason"].(string); ok {
		stored.RejectionReason = reason
	}
	stored.Version++
	pkg.Version = stored.Version
	return nil
}

func (m *mockWorkPackageRepo) Delete(_ context.Context, id string) error {
	delete(m.pkgs, id)
	for itemID, item := range m.items {
		if item.PackageID == id {
			delete(m.items, itemID)
		}
	}
	return nil
}

func (m *mockWorkPackageRepo) AddItem(_ context.Context, item *model.WorkPackageItem) error {
	if item.ItemID == "" {
		m.seq++
		item.ItemID = fmt.Sprintf("item-%03d", m.seq)
	}
	copied := *item
	m.items[item.ItemID] = &copied
	return nil
}

func (m *mockWorkPackageRepo) RemoveItem(_ context.Context, packageID, itemID string) (int64, error) {
	item, ok := m.items[itemID]
	if !ok || item.PackageID != packageID {
		return 0, nil
	}
	delete(m.items, itemID)
	return 1, nil
}

func (m *mockWorkPackageRepo) ListItems(_ context.Context, packageID string) ([]model.WorkPackageItem, error) {
	var result []model.WorkPackageItem
	for _, item := range m.items {
		if item.PackageID == packageID {
			result = append(result, *item)
		}
	}
	return result, nil
}

func (m *mockWorkPackageRepo) MaxSequenceOrder(_ context.Context, packageID string) (int, error) {
	max := 0
	for _, item := range m.items {
		if item.PackageID == packageID && item.SequenceOrder > max {
			max = item.SequenceOrder
		}
	}
	return max, nil
}

func (m *mockWorkPackageRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, p := range m.pkgs {
		if strings.HasPrefix(p.PackageNumber, prefix) {
			count++
		}
	}
	return count, nil
}

// ── Mock ReadingTemplateRepository ──

type mockReadingTemplateRepo struct {
	templates map[string]*model.ReadingTemplate
	items     []model.ReadingTemplateItem
	rounds    *mockReadingRoundRepo
	seq       int
}

func newMockReadingTemplateRepo(rounds *mockReadingRoundRepo) *mockReadingTemplateRepo {
	return &mockReadingTemplateRepo{
		templates: make(map[string]*model.ReadingTemplate),
		rounds:    rounds,
	}
}

func (m *mockReadingTemplateRepo) Create(_ context.Context, tpl *model.ReadingTemplate, items []model.ReadingTemplateItem) error {
	for _, t := range m.templates {
		if t.TemplateCode == tpl.TemplateCode {
			return gorm.ErrDuplicatedKey
		}
	}
	if tpl.TemplateID == "" {
		m.seq++
		tpl.TemplateID = fmt.Sprintf("tpl-%03d", m.seq)
	}
	copied := *tpl
	m.templates[tpl.TemplateID] = &copied
	for i := range items {
		items[i].TemplateID = tpl.TemplateID
		m.items = append(m.items, items[i])
	}
	return nil
}

func (m *mockReadingTemplateRepo) GetByID(_ context.Context, id string) (*model.ReadingTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *tpl
	for _, item := range m.items {
		if item.TemplateID == id {
			copied.Items = append(copied.Items, item)
		}
	}
	return &copied, nil
}

func (m *mockReadingTemplateRepo) GetByCode(_ context.Context, code string) (*model.ReadingTemplate, error) {
	for _, t := range m.templates {
		if t.TemplateCode == code {
			copied := *t
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReadingTemplateRepo) List(_ context.Context, frequency string, active *bool) ([]model.ReadingTemplate, error) {
	var result []model.ReadingTemplate
	for _, t := range m.templates {
		if frequency != "" && t.Frequency != frequency {
			continue
		}
		if active != nil && t.IsActive != *active {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockReadingTemplateRepo) Update(_ context.Context, tpl *model.ReadingTemplate) error {
	if _, ok := m.templates[tpl.TemplateID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *tpl
	copied.Items = nil
	m.templates[tpl.TemplateID] = &copied
	return nil
}

func (m *mockReadingTemplateRepo) Delete(_ context.Context, id string) error {
	delete(m.templates, id)
	var kept []model.ReadingTemplateItem
	for _, item := range m.items {
		if item.TemplateID != id {
			kept = append(kept, item)
		}
	}
	m.items = kept
	return nil
}

func (m *mockReadingTemplateRepo) CountItems(_ context.Context, templateID string) (int64, error) {
	var count int64
	for _, item := range m.items {
		if item.TemplateID == templateID {
			count++
		}
	}
	return count, nil
}

func (m *mockReadingTemplateRepo) CountRounds(_ context.Context, templateID string) (int64, error) {
	var count int64
	for _, round := range m.rounds.rounds {
		if round.TemplateID == templateID {
			count++
		}
	}
	return count, nil
}

// ── Mock ReadingRoundRepository ──

type mockReadingRoundRepo struct {
	rounds   map[string]*model.ReadingRound
	readings []model.MeterReading
	seq      int
}

func newMockReadingRoundRepo() *mockReadingRoundRepo {
	return &mockReadingRoundRepo{rounds: make(map[string]*model.ReadingRound)}
}

func (m *mockReadingRoundRepo) Create(_ context.Context, round *model.ReadingRound) error {
	for _, r := range m.rounds {
		if r.RoundNumber == round.RoundNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if round.RoundID == "" {
		m.seq++
		round.RoundID = fmt.Sprintf("round-%03d", m.seq)
	}
	if round.Version == 0 {
		round.Version = 1
	}
	copied := *round
	m.rounds[round.RoundID] = &copied
	return nil
}

func (m *mockReadingRoundRepo) GetByID(_ context.Context, id string) (*model.ReadingRound, error) {
	round, ok := m.rounds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *round
	return &copied, nil
}

func (m *mockReadingRoundRepo) List(_ context.Context, status, assignedTo string, _, _ int) ([]model.ReadingRound, int64, error) {
	var result []model.ReadingRound
	for _, r := range m.rounds {
		if status != "" && string(r.Status) != status {
			continue
		}
		if assignedTo != "" && (r.AssignedTo == nil || *r.AssignedTo != assignedTo) {
			continue
		}
		result = append(result, *r)
	}
	return result, int64(len(result)), nil
}

func (m *mockReadingRoundRepo) UpdateStatus(_ context.Context, round *model.ReadingRound, from model.RoundStatus, updates map[string]interface{}) error {
	stored, ok := m.rounds[round.RoundID]
	if !ok {
		return pkgerrors.ErrOptimisticLock
	}
	if stored.Status != from || stored.Version != round.Version {
		return pkgerrors.ErrOptimisticLock
	}
	if status, ok := updates["status"].(model.RoundStatus); ok {
		stored.Status = status
	}
	if t, ok := updates["started_at"].(time.Time); ok {
		stored.StartedAt = &t
	}
	if t, ok := updates["completed_at"].(time.Time); ok {
		stored.CompletedAt = &t
	}
	stored.Version++
	round.Version = stored.Version
	return nil
}

func (m *mockReadingRoundRepo) CreateReading(_ context.Context, reading *model.MeterReading) error {
	for _, r := range m.readings {
		if r.RoundID == reading.RoundID && r.MeterID == reading.MeterID {
			return repository.ErrDuplicateReading
		}
	}
	round, ok := m.rounds[reading.RoundID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if reading.ReadingID == "" {
		m.seq++
		reading.ReadingID = fmt.Sprintf("reading-%03d", m.seq)
	}
	m.readings = append(m.readings, *reading)
	round.ReadMeters++
	return nil
}

func (m *mockReadingRoundRepo) ListReadings(_ context.Context, roundID string) ([]model.MeterReading, error) {
	var result []model.MeterReading
	for _, r := range m.readings {
		if r.RoundID == roundID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockReadingRoundRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, r := range m.rounds {
		if strings.HasPrefix(r.RoundNumber, prefix) {
			count++
		}
	}
	return count, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	copied := *user
	m.users[user.UserID] = &copied
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// newMockRepository 组装全套 Mock Repository
func newMockRepository() *repository.Repository {
	rounds := newMockReadingRoundRepo()
	return &repository.Repository{
		User:            newMockUserRepo(),
		Team:            newMockTeamRepo(),
		Worker:          newMockWorkerRepo(),
		Operation:       newMockOperationRepo(),
		WorkPackage:     newMockWorkPackageRepo(),
		ReadingTemplate: newMockReadingTemplateRepo(rounds),
		ReadingRound:    rounds,
	}
}
