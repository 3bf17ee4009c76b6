package apps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/auroradesk/aurora/pkg/Logger"
)

const closeGraceTimeout = 5 * time.Second

// ErrUnknownApp marks a launch or close against an application that is
// neither configured nor aliased.
var ErrUnknownApp = errors.New("application not configured")

// AppConfig describes one launchable desktop application.
type AppConfig struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	ProcessName string   `json:"processName"`
	Commands    []string `json:"commands,omitempty"`
}

// RunningApp is one application visible to the manager, either launched
// by the gateway (managed) or detected on the host.
type RunningApp struct {
	Name      string    `json:"name"`
	PID       int32     `json:"pid"`
	Status    string    `json:"status"`
	Managed   bool      `json:"managed"`
	StartedAt time.Time `json:"startedAt"`
}

type launchedApp struct {
	cmd       *exec.Cmd
	pid       int32
	startedAt time.Time
}

// Manager launches and closes desktop applications and lists what is
// running. Close falls back to process-name matching for applications
// the gateway did not start itself.
type Manager struct {
	logger *Logger.Logger

	mu       sync.Mutex
	configs  map[string]AppConfig
	launched map[string]*launchedApp
}

var appAliases = map[string]string{
	"browser":     "chrome",
	"code":        "vscode",
	"editor":      "vscode",
	"spreadsheet": "excel",
	"document":    "word",
}

func New(logger *Logger.Logger) *Manager {
	return &Manager{
		logger:   logger,
		configs:  defaultConfigs(),
		launched: make(map[string]*launchedApp),
	}
}

// Register adds or replaces an application configuration.
func (m *Manager) Register(id string, cfg AppConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[strings.ToLower(id)] = cfg
}

// Launch starts the configured application detached from the request
// and returns its PID.
func (m *Manager) Launch(appName string, args []string) (int32, error) {
	cfg, ok := m.resolve(appName)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownApp, appName)
	}
	if cfg.Path == "" {
		return 0, fmt.Errorf("application %s is not available on %s", appName, runtime.GOOS)
	}

	cmd := exec.Command(cfg.Path, args...)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", appName, err)
	}
	pid := int32(cmd.Process.Pid)

	key := strings.ToLower(appName)
	m.mu.Lock()
	m.launched[key] = &launchedApp{cmd: cmd, pid: pid, startedAt: time.Now()}
	m.mu.Unlock()

	// Reap on exit so the entry disappears once the app quits on its own.
	go func() {
		cmd.Wait()
		m.mu.Lock()
		if la, ok := m.launched[key]; ok && la.pid == pid {
			delete(m.launched, key)
		}
		m.mu.Unlock()
	}()

	m.logger.Infof("Launched %s (pid %d)", cfg.Name, pid)
	return pid, nil
}

// Close stops an application. Managed instances are closed by PID;
// otherwise every process whose name matches the configuration is
// terminated. Graceful closure escalates to kill after a grace period
// unless force is set.
func (m *Manager) Close(ctx context.Context, appName string, force bool) error {
	key := strings.ToLower(appName)

	m.mu.Lock()
	la := m.launched[key]
	m.mu.Unlock()

	if la != nil {
		if err := m.closePID(ctx, la.pid, force); err != nil {
			return fmt.Errorf("close %s: %w", appName, err)
		}
		m.mu.Lock()
		delete(m.launched, key)
		m.mu.Unlock()
		m.logger.Infof("Closed %s (pid %d)", appName, la.pid)
		return nil
	}

	cfg, ok := m.resolve(appName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownApp, appName)
	}
	return m.closeByProcessName(ctx, cfg.ProcessName, force)
}

// Running lists managed applications plus user-level processes detected
// on the host.
func (m *Manager) Running(ctx context.Context) ([]RunningApp, error) {
	var apps []RunningApp

	m.mu.Lock()
	for name, la := range m.launched {
		apps = append(apps, RunningApp{
			Name:      name,
			PID:       la.pid,
			Status:    "running",
			Managed:   true,
			StartedAt: la.startedAt,
		})
	}
	m.mu.Unlock()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("process scan: %w", err)
	}
	managed := make(map[int32]bool, len(apps))
	for _, a := range apps {
		managed[a.PID] = true
	}
	for _, p := range procs {
		if managed[p.Pid] {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || !isUserApplication(name) {
			continue
		}
		started := time.Time{}
		if ms, err := p.CreateTimeWithContext(ctx); err == nil {
			started = time.UnixMilli(ms)
		}
		apps = append(apps, RunningApp{
			Name:      name,
			PID:       p.Pid,
			Status:    "running",
			Managed:   false,
			StartedAt: started,
		})
	}
	return apps, nil
}

func (m *Manager) resolve(appName string) (AppConfig, bool) {
	key := strings.ToLower(appName)
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg, ok := m.configs[key]; ok {
		return cfg, true
	}
	if alias, ok := appAliases[key]; ok {
		cfg, ok := m.configs[alias]
		return cfg, ok
	}
	return AppConfig{}, false
}

func (m *Manager) closePID(ctx context.Context, pid int32, force bool) error {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return fmt.Errorf("process %d not found: %w", pid, err)
	}
	if force {
		return p.KillWithContext(ctx)
	}
	if err := p.TerminateWithContext(ctx); err != nil {
		return err
	}

	deadline := time.Now().Add(closeGraceTimeout)
	for time.Now().Before(deadline) {
		running, err := p.IsRunningWithContext(ctx)
		if err != nil || !running {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return p.KillWithContext(ctx)
}

func (m *Manager) closeByProcessName(ctx context.Context, processName string, force bool) error {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fmt.Errorf("process scan: %w", err)
	}

	target := strings.ToLower(processName)
	closed := 0
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || !strings.Contains(strings.ToLower(name), target) {
			continue
		}
		if force {
			err = p.KillWithContext(ctx)
		} else {
			err = p.TerminateWithContext(ctx)
		}
		if err == nil {
			closed++
		}
	}
	if closed == 0 {
		return fmt.Errorf("no running process matches %q", processName)
	}
	m.logger.Infof("Closed %d process(es) matching %q", closed, processName)
	return nil
}

var systemProcessNames = []string{
	"system", "kernel", "launchd", "init", "svchost", "services",
	"runtime", "coreservices", "background",
}

// isUserApplication filters daemons and kernel workers out of the
// running-application listing.
func isUserApplication(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, sys := range systemProcessNames {
		if strings.Contains(lower, sys) {
			return false
		}
	}
	return true
}

func defaultConfigs() map[string]AppConfig {
	switch runtime.GOOS {
	case "darwin":
		return map[string]AppConfig{
			"chrome":    {Name: "Google Chrome", Path: "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome", ProcessName: "Google Chrome", Commands: []string{"new_tab", "close_tab", "reload"}},
			"vscode":    {Name: "Visual Studio Code", Path: "/Applications/Visual Studio Code.app/Contents/MacOS/Electron", ProcessName: "Code", Commands: []string{"save", "new_file", "close_tab"}},
			"slack":     {Name: "Slack", Path: "/Applications/Slack.app/Contents/MacOS/Slack", ProcessName: "Slack", Commands: []string{"focus"}},
			"photoshop": {Name: "Adobe Photoshop", Path: "/Applications/Adobe Photoshop 2023/Adobe Photoshop 2023.app/Contents/MacOS/Adobe Photoshop 2023", ProcessName: "Photoshop", Commands: []string{"save", "export"}},
			"excel":     {Name: "Microsoft Excel", Path: "/Applications/Microsoft Excel.app/Contents/MacOS/Microsoft Excel", ProcessName: "Excel", Commands: []string{"save", "new_workbook"}},
			"word":      {Name: "Microsoft Word", Path: "/Applications/Microsoft Word.app/Contents/MacOS/Microsoft Word", ProcessName: "Word", Commands: []string{"save", "new_document"}},
		}
	case "windows":
		return map[string]AppConfig{
			"chrome":    {Name: "Google Chrome", Path: `C:\Program Files\Google\Chrome\Application\chrome.exe`, ProcessName: "chrome", Commands: []string{"new_tab", "close_tab", "reload"}},
			"vscode":    {Name: "Visual Studio Code", Path: `C:\Program Files\Microsoft VS Code\Code.exe`, ProcessName: "Code", Commands: []string{"save", "new_file", "close_tab"}},
			"slack":     {Name: "Slack", Path: `C:\Program Files\Slack\slack.exe`, ProcessName: "slack", Commands: []string{"focus"}},
			"photoshop": {Name: "Adobe Photoshop", Path: `C:\Program Files\Adobe\Adobe Photoshop 2023\Photoshop.exe`, ProcessName: "Photoshop", Commands: []string{"save", "export"}},
			"excel":     {Name: "Microsoft Excel", Path: `C:\Program Files\Microsoft Office\root\Office16\EXCEL.EXE`, ProcessName: "EXCEL", Commands: []string{"save", "new_workbook"}},
			"word":      {Name: "Microsoft Word", Path: `C:\Program Files\Microsoft Office\root\Office16\WINWORD.EXE`, ProcessName: "WINWORD", Commands: []string{"save", "new_document"}},
		}
	default:
		return map[string]AppConfig{
			"chrome": {Name: "Google Chrome", Path: "/usr/bin/google-chrome", ProcessName: "chrome", Commands: []string{"new_tab", "close_tab", "reload"}},
			"vscode": {Name: "Visual Studio Code", Path: "/usr/bin/code", ProcessName: "code", Commands: []string{"save", "new_file", "close_tab"}},
			"slack":  {Name: "Slack", Path: "/usr/bin/slack", ProcessName: "slack", Commands: []string{"focus"}},
			// No stable install paths for the remaining apps on Linux.
			"photoshop": {Name: "Adobe Photoshop", ProcessName: "photoshop", Commands: []string{"save", "export"}},
			"excel":     {Name: "Microsoft Excel", ProcessName: "excel", Commands: []string{"save", "new_workbook"}},
			"word":      {Name: "Microsoft Word", ProcessName: "word", Commands: []string{"save", "new_document"}},
		}
	}
}
