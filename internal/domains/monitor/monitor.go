package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/auroradesk/aurora/pkg/Logger"
)

const (
	defaultInterval    = 30 * time.Second
	defaultHistorySize = 120
	defaultProcessCap  = 50
)

// Snapshot is one sampled view of host resource usage.
type Snapshot struct {
	Timestamp     time.Time `json:"timestamp"`
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	MemoryUsedMB  uint64    `json:"memoryUsedMb"`
	MemoryTotalMB uint64    `json:"memoryTotalMb"`
	DiskPercent   float64   `json:"diskPercent"`
	DiskFreeGB    uint64    `json:"diskFreeGb"`
}

// ProcessInfo describes one running process for the process listing.
type ProcessInfo struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpuPercent"`
	MemPercent float32 `json:"memPercent"`
	Status     string  `json:"status"`
}

// HostInfo is the static host description returned by the info endpoint.
type HostInfo struct {
	Hostname      string `json:"hostname"`
	OS            string `json:"os"`
	Platform      string `json:"platform"`
	KernelVersion string `json:"kernelVersion"`
	UptimeSecs    uint64 `json:"uptimeSecs"`
	ProcessCount  uint64 `json:"processCount"`
}

type Config struct {
	Interval    time.Duration
	HistorySize int
}

// Monitor samples host metrics on an interval and keeps a bounded
// in-memory history for trend queries.
type Monitor struct {
	logger      *Logger.Logger
	interval    time.Duration
	historySize int

	mu      sync.RWMutex
	history []Snapshot

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config, logger *Logger.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	return &Monitor{
		logger:      logger,
		interval:    cfg.Interval,
		historySize: cfg.HistorySize,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background sampling loop.
func (m *Monitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				snap, err := m.Sample(ctx)
				if err != nil {
					m.logger.Warnf("metric sample failed: %v", err)
					continue
				}
				m.record(*snap)
			}
		}
	}()
	m.logger.Infof("System monitor started (interval %s)", m.interval)
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Sample reads current CPU, memory and disk usage.
func (m *Monitor) Sample(ctx context.Context) (*Snapshot, error) {
	cpuPercents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, fmt.Errorf("cpu sample: %w", err)
	}
	var cpuPct float64
	if len(cpuPercents) > 0 {
		cpuPct = cpuPercents[0]
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory sample: %w", err)
	}

	du, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return nil, fmt.Errorf("disk sample: %w", err)
	}

	return &Snapshot{
		Timestamp:     time.Now(),
		CPUPercent:    cpuPct,
		MemoryPercent: vm.UsedPercent,
		MemoryUsedMB:  vm.Used / (1 << 20),
		MemoryTotalMB: vm.Total / (1 << 20),
		DiskPercent:   du.UsedPercent,
		DiskFreeGB:    du.Free / (1 << 30),
	}, nil
}

// History returns the retained snapshots, oldest first.
func (m *Monitor) History() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, len(m.history))
	copy(out, m.history)
	return out
}

// Processes lists running processes sorted by CPU usage, capped at limit.
func (m *Monitor) Processes(ctx context.Context, limit int) ([]ProcessInfo, error) {
	if limit <= 0 || limit > defaultProcessCap {
		limit = defaultProcessCap
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("process listing: %w", err)
	}

	infos := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // process likely exited mid-scan
		}
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		status := ""
		if st, err := p.StatusWithContext(ctx); err == nil && len(st) > 0 {
			status = st[0]
		}
		infos = append(infos, ProcessInfo{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: cpuPct,
			MemPercent: memPct,
			Status:     status,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].CPUPercent > infos[j].CPUPercent })
	if len(infos) > limit {
		infos = infos[:limit]
	}
	return infos, nil
}

// Kill terminates a process by PID.
func (m *Monitor) Kill(ctx context.Context, pid int32) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	name, _ := p.NameWithContext(ctx)
	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill %d: %w", pid, err)
	}
	m.logger.Infof("Killed process %d (%s)", pid, name)
	return nil
}

// Host returns static host information.
func (m *Monitor) Host(ctx context.Context) (*HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("host info: %w", err)
	}
	return &HostInfo{
		Hostname:      info.Hostname,
		OS:            info.OS,
		Platform:      info.Platform,
		KernelVersion: info.KernelVersion,
		UptimeSecs:    info.Uptime,
		ProcessCount:  info.Procs,
	}, nil
}

func (m *Monitor) record(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, snap)
	if len(m.history) > m.historySize {
		m.history = m.history[len(m.history)-m.historySize:]
	}
}
