package service

import (
	"testing"
	"time"
)

func TestOperationNumberPrefix(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		opType string
		want   string
	}{
		{"installation", "INS-2603-"},
		{"maintenance", "MAI-2603-"},
		{"meter_reading", "MET-2603-"},
		{"collection", "COL-2603-"},
	}
	for _, tt := range tests {
		if got := operationNumberPrefix(tt.opType, now); got != tt.want {
			t.Errorf("operationNumberPrefix(%q) = %q, 期望 %q", tt.opType, got, tt.want)
		}
	}
}

func TestPackageAndRoundNumberPrefix(t *testing.T) {
	now := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	if got := packageNumberPrefix(now); got != "PKG-2601-" {
		t.Errorf("packageNumberPrefix = %q, 期望 PKG-2601-", got)
	}
	if got := roundNumberPrefix(now); got != "RND-260105-" {
		t.Errorf("roundNumberPrefix = %q, 期望 RND-260105-", got)
	}
}

func TestFormatNumber(t *testing.T) {
	if got := formatNumber("INS-2603-", 3, 4); got != "INS-2603-0003" {
		t.Errorf("formatNumber = %q, 期望 INS-2603-0003", got)
	}
	if got := formatNumber("RND-260105-", 12, 3); got != "RND-260105-012" {
		t.Errorf("formatNumber = %q, 期望 RND-260105-012", got)
	}
	// 序号超出位宽时自然变长，不截断
	if got := formatNumber("PKG-2601-", 10001, 4); got != "PKG-2601-10001" {
		t.Errorf("formatNumber = %q, 期望 PKG-2601-10001", got)
	}
}
