package apps

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/auroradesk/aurora/pkg/Logger"
)

func testManager() *Manager {
	return New(Logger.New(true))
}

func TestResolveAliases(t *testing.T) {
	m := testManager()

	direct, ok := m.resolve("chrome")
	if !ok {
		t.Fatal("chrome should be configured by default")
	}
	aliased, ok := m.resolve("browser")
	if !ok {
		t.Fatal("browser alias should resolve")
	}
	if aliased.Name != direct.Name {
		t.Errorf("alias resolved to %q, want %q", aliased.Name, direct.Name)
	}

	if _, ok := m.resolve("doomclient"); ok {
		t.Error("unknown application should not resolve")
	}
}

func TestLaunchUnknownApp(t *testing.T) {
	m := testManager()
	if _, err := m.Launch("doomclient", nil); err == nil {
		t.Error("expected error for unconfigured application")
	}
}

func TestCloseUnknownApp(t *testing.T) {
	m := testManager()
	if err := m.Close(context.Background(), "doomclient", false); err == nil {
		t.Error("expected error for unconfigured application")
	}
}

func TestLaunchAndCloseManagedApp(t *testing.T) {
	if _, err := os.Stat("/bin/sleep"); err != nil {
		t.Skip("/bin/sleep not available")
	}

	m := testManager()
	m.Register("sleeper", AppConfig{Name: "Sleeper", Path: "/bin/sleep", ProcessName: "sleep"})

	pid, err := m.Launch("sleeper", []string{"30"})
	if err != nil {
		t.Fatalf("launch failed: %v", err)
	}
	if pid <= 0 {
		t.Fatalf("invalid pid %d", pid)
	}

	running, err := m.Running(context.Background())
	if err != nil {
		t.Fatalf("running listing failed: %v", err)
	}
	var found bool
	for _, app := range running {
		if app.PID == pid && app.Managed {
			found = true
			if app.Name != "sleeper" {
				t.Errorf("managed entry name = %q, want sleeper", app.Name)
			}
		}
	}
	if !found {
		t.Error("launched application missing from running list")
	}

	if err := m.Close(context.Background(), "sleeper", true); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	// The reaper removes the entry once the process exits.
	deadline := time.Now().Add(3 * time.Second)
	for {
		m.mu.Lock()
		_, still := m.launched["sleeper"]
		m.mu.Unlock()
		if !still {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("closed application still tracked as launched")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestIsUserApplication(t *testing.T) {
	cases := map[string]bool{
		"chrome":          true,
		"Code":            true,
		"kernel_task":     false,
		"svchost.exe":     false,
		"launchd":         false,
		"systemd-journal": false,
		"":                false,
	}
	for name, want := range cases {
		if got := isUserApplication(name); got != want {
			t.Errorf("isUserApplication(%q) = %v, want %v", name, got, want)
		}
	}
}
