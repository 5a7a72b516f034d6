package model

import "testing"

func TestCanTransitionOperation_AllowedPairs(t *testing.T) {
	allowed := []struct {
		from, to OperationStatus
	}{
		{OpStatusDraft, OpStatusScheduled},
		{OpStatusDraft, OpStatusCancelled},
		{OpStatusScheduled, OpStatusAssigned},
		{OpStatusScheduled, OpStatusCancelled},
		{OpStatusScheduled, OpStatusOnHold},
		{OpStatusAssigned, OpStatusInProgress},
		{OpStatusAssigned, OpStatusCancelled},
		{OpStatusAssigned, OpStatusOnHold},
		{OpStatusInProgress, OpStatusCompleted},
		{OpStatusInProgress, OpStatusOnHold},
		{OpStatusInProgress, OpStatusWaitingCustomerCable},
		{OpStatusCompleted, OpStatusPendingInspection},
		{OpStatusPendingInspection, OpStatusApproved},
		{OpStatusPendingInspection, OpStatusRejected},
		{OpStatusRejected, OpStatusInProgress},
		{OpStatusOnHold, OpStatusScheduled},
		{OpStatusOnHold, OpStatusAssigned},
		{OpStatusOnHold, OpStatusInProgress},
		{OpStatusWaitingCustomerCable, OpStatusInProgress},
		{OpStatusWaitingCustomerCable, OpStatusCancelled},
	}

	for _, pair := range allowed {
		if !CanTransitionOperation(pair.from, pair.to) {
			t.Errorf("期望允许 %s → %s", pair.from, pair.to)
		}
	}
}

// 邻接表外的任意 (from, to) 组合都必须被拒绝
func TestCanTransitionOperation_DisallowedPairs(t *testing.T) {
	allowed := make(map[[2]OperationStatus]bool)
	for from, tos := range operationTransitions {
		for _, to := range tos {
			allowed[[2]OperationStatus{from, to}] = true
		}
	}

	statuses := OperationStatuses()
	for _, from := range statuses {
		for _, to := range statuses {
			if allowed[[2]OperationStatus{from, to}] {
				continue
			}
			if CanTransitionOperation(from, to) {
				t.Errorf("期望拒绝 %s → %s", from, to)
			}
		}
	}
}

func TestCanTransitionOperation_TerminalStates(t *testing.T) {
	for _, terminal := range []OperationStatus{OpStatusCancelled, OpStatusApproved} {
		for _, to := range OperationStatuses() {
			if CanTransitionOperation(terminal, to) {
				t.Errorf("终态 %s 不应有出边，但允许了 → %s", terminal, to)
			}
		}
	}
}

func TestCanTransitionOperation_UnknownStatus(t *testing.T) {
	if CanTransitionOperation("nonexistent", OpStatusDraft) {
		t.Error("未知源状态应被拒绝")
	}
	if CanTransitionOperation(OpStatusDraft, "nonexistent") {
		t.Error("未知目标状态应被拒绝")
	}
}
