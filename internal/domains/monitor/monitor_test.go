package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/auroradesk/aurora/pkg/Logger"
)

func TestSampleReportsSaneValues(t *testing.T) {
	m := New(Config{}, Logger.New(true))

	snap, err := m.Sample(context.Background())
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	if snap.CPUPercent < 0 || snap.CPUPercent > 100 {
		t.Errorf("cpu percent out of range: %v", snap.CPUPercent)
	}
	if snap.MemoryPercent <= 0 || snap.MemoryPercent > 100 {
		t.Errorf("memory percent out of range: %v", snap.MemoryPercent)
	}
	if snap.MemoryTotalMB == 0 {
		t.Error("total memory should be nonzero")
	}
	if snap.Timestamp.IsZero() {
		t.Error("snapshot missing timestamp")
	}
}

func TestHistoryTrimsToSize(t *testing.T) {
	m := New(Config{Interval: time.Hour, HistorySize: 3}, Logger.New(true))

	for i := 0; i < 5; i++ {
		m.record(Snapshot{Timestamp: time.Now().Add(time.Duration(i) * time.Second)})
	}

	history := m.History()
	if len(history) != 3 {
		t.Fatalf("expected history of 3, got %d", len(history))
	}
	if !history[0].Timestamp.Before(history[2].Timestamp) {
		t.Error("history should be ordered oldest first")
	}
}

func TestProcessesSortedAndCapped(t *testing.T) {
	m := New(Config{}, Logger.New(true))

	procs, err := m.Processes(context.Background(), 5)
	if err != nil {
		t.Fatalf("process listing failed: %v", err)
	}
	if len(procs) == 0 {
		t.Fatal("expected at least one process")
	}
	if len(procs) > 5 {
		t.Errorf("expected at most 5 processes, got %d", len(procs))
	}
	for i := 1; i < len(procs); i++ {
		if procs[i-1].CPUPercent < procs[i].CPUPercent {
			t.Errorf("processes not sorted by cpu: %v then %v", procs[i-1].CPUPercent, procs[i].CPUPercent)
		}
	}
}

func TestHostInfo(t *testing.T) {
	m := New(Config{}, Logger.New(true))

	info, err := m.Host(context.Background())
	if err != nil {
		t.Fatalf("host info failed: %v", err)
	}
	if info.Hostname == "" {
		t.Error("expected hostname")
	}
	if info.OS == "" {
		t.Error("expected os")
	}
}

func TestKillRejectsUnknownPID(t *testing.T) {
	m := New(Config{}, Logger.New(true))

	// PID well outside the valid range on any host we run on.
	if err := m.Kill(context.Background(), 1<<30); err == nil {
		t.Error("expected error for bogus pid")
	}
}
