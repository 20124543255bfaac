package deps

import (
	"math"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestCheckOutputSpace(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "not", "yet", "Resized")

	if low := CheckOutputSpace([]string{missing}, 0, zap.NewNop()); low != nil {
		t.Errorf("A zero threshold disables the check, got %v", low)
	}

	// 阈值极大时必然报告空间不足，且同一目录只报告一次
	low := CheckOutputSpace([]string{missing, dir}, math.MaxInt32, zap.NewNop())
	if len(low) != 1 || low[0].Dir != dir {
		t.Errorf("Expected one low-space entry for %s, got %+v", dir, low)
	}
}

func TestNearestExisting(t *testing.T) {
	dir := t.TempDir()
	if got := nearestExisting(filepath.Join(dir, "a", "b")); got != dir {
		t.Errorf("Expected %s, got %s", dir, got)
	}
}

func TestDoctorReport(t *testing.T) {
	report := Doctor("sizely-no-such-tool", "builtin", zap.NewNop())
	if report.Backend != "builtin" || report.CPUs <= 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
	if len(report.Tools) != 1 || report.Tools[0].Installed {
		t.Errorf("Expected missing sips in report, got %+v", report.Tools)
	}
}
