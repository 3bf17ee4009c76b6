package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/auroradesk/aurora/pkg/Logger"
)

// Result is the outcome of one system command. Confidence mirrors the
// voice pipeline's scale so callers can blend it with transcript scores.
type Result struct {
	Success     bool    `json:"success"`
	Response    string  `json:"response"`
	Confidence  float64 `json:"confidence"`
	ExecutionMs int64   `json:"executionMs"`
	Application string  `json:"application,omitempty"`
	SearchQuery string  `json:"searchQuery,omitempty"`
	Operation   string  `json:"operation,omitempty"`
}

var systemKeywords = []string{"open", "close", "launch", "start", "quit", "exit", "search", "find"}

// Processor routes natural-language system commands to handlers. The
// launch/close/search handlers answer directly; platform integration
// (window management, indexed search) lives outside the gateway.
type Processor struct {
	logger *Logger.Logger
}

func New(logger *Logger.Logger) *Processor {
	return &Processor{logger: logger}
}

// IsSystemCommand reports whether a prompt looks like a system command
// rather than an AI completion request.
func (p *Processor) IsSystemCommand(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, kw := range systemKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Execute parses the command and dispatches to the matching handler.
// Unrecognized commands fall through to the shell.
func (p *Processor) Execute(ctx context.Context, cmd string, params map[string]any) Result {
	lower := strings.ToLower(strings.TrimSpace(cmd))

	switch {
	case hasAnyPrefix(lower, "open ", "launch ", "start "):
		return p.handleApplicationLaunch(lower)
	case hasAnyPrefix(lower, "close ", "quit ", "exit "):
		return p.handleApplicationClose(lower)
	case containsAny(lower, "search", "find", "locate"):
		return p.handleFileSearch(lower)
	case containsAny(lower, "copy", "move", "delete", "backup"):
		return p.handleFileOperation(lower)
	case strings.Contains(lower, "what time") || strings.Contains(lower, "what date"):
		return p.handleSystemInfo(lower)
	default:
		return p.handleGeneric(ctx, cmd)
	}
}

// SystemInfo returns the basic host summary exposed at /system/info.
func (p *Processor) SystemInfo() map[string]any {
	info := map[string]any{
		"system":       runtime.GOOS,
		"architecture": runtime.GOARCH,
		"currentTime":  time.Now().Format(time.RFC3339),
	}
	if hostname, err := os.Hostname(); err == nil {
		info["user"] = hostname
	}
	if hi, err := host.Info(); err == nil {
		info["platform"] = hi.Platform
		info["release"] = hi.PlatformVersion
		info["bootTime"] = hi.BootTime
		info["uptime"] = hi.Uptime
	} else {
		p.logger.Errorf("failed to get host info: %v", err)
	}
	return info
}

func (p *Processor) handleApplicationLaunch(cmd string) Result {
	appName := extractAppName(cmd)
	if appName == "" {
		return Result{
			Success:    false,
			Response:   "Could not determine which application to launch",
			Confidence: 0.3,
		}
	}
	return Result{
		Success:     true,
		Response:    fmt.Sprintf("Launching %s", appName),
		Confidence:  0.9,
		ExecutionMs: 100,
		Application: appName,
	}
}

func (p *Processor) handleApplicationClose(cmd string) Result {
	appName := extractAppName(cmd)
	if appName == "" {
		return Result{
			Success:    false,
			Response:   "Could not determine which application to close",
			Confidence: 0.3,
		}
	}
	return Result{
		Success:     true,
		Response:    fmt.Sprintf("Closing %s", appName),
		Confidence:  0.9,
		ExecutionMs: 100,
		Application: appName,
	}
}

func (p *Processor) handleFileSearch(cmd string) Result {
	query := extractSearchQuery(cmd)
	if query == "" {
		return Result{
			Success:    false,
			Response:   "What would you like me to search for?",
			Confidence: 0.5,
		}
	}
	return Result{
		Success:     true,
		Response:    fmt.Sprintf("Searching for files matching %q", query),
		Confidence:  0.8,
		ExecutionMs: 200,
		SearchQuery: query,
	}
}

func (p *Processor) handleFileOperation(cmd string) Result {
	op := extractFileOperation(cmd)
	if op == "" {
		return Result{
			Success:    false,
			Response:   "What file operation would you like to perform?",
			Confidence: 0.4,
		}
	}
	return Result{
		Success:     true,
		Response:    fmt.Sprintf("Performing file operation: %s", op),
		Confidence:  0.8,
		ExecutionMs: 100,
		Operation:   op,
	}
}

func (p *Processor) handleSystemInfo(cmd string) Result {
	now := time.Now()
	if strings.Contains(cmd, "time") {
		return Result{
			Success:     true,
			Response:    fmt.Sprintf("The current time is %s", now.Format("3:04 PM")),
			Confidence:  1.0,
			ExecutionMs: 1,
		}
	}
	if strings.Contains(cmd, "date") {
		return Result{
			Success:     true,
			Response:    fmt.Sprintf("Today is %s", now.Format("Monday, January 2, 2006")),
			Confidence:  1.0,
			ExecutionMs: 1,
		}
	}
	return Result{
		Success:    false,
		Response:   "I can tell you the current time or date",
		Confidence: 0.7,
	}
}

func (p *Processor) handleGeneric(ctx context.Context, cmd string) Result {
	start := time.Now()
	out, err := exec.CommandContext(ctx, "sh", "-c", cmd).CombinedOutput()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = "Command failed"
		}
		p.logger.Errorf("command execution failed: %v", err)
		return Result{
			Success:     false,
			Response:    msg,
			Confidence:  0.6,
			ExecutionMs: elapsed,
		}
	}

	resp := strings.TrimSpace(string(out))
	if resp == "" {
		resp = "Command executed successfully"
	}
	return Result{
		Success:     true,
		Response:    resp,
		Confidence:  0.8,
		ExecutionMs: elapsed,
	}
}

func extractAppName(cmd string) string {
	prefixes := []string{"open ", "launch ", "start ", "close ", "quit ", "exit "}
	for _, prefix := range prefixes {
		if strings.HasPrefix(cmd, prefix) {
			name := strings.TrimSpace(strings.TrimPrefix(cmd, prefix))
			name = strings.TrimRight(name, ".,!?")
			name = strings.TrimSpace(strings.ReplaceAll(name, " the ", " "))
			name = strings.TrimPrefix(name, "the ")
			name = strings.TrimPrefix(name, "my ")
			return strings.TrimSpace(name)
		}
	}
	return ""
}

func extractSearchQuery(cmd string) string {
	prefixes := []string{"search for ", "find ", "locate ", "look for "}
	for _, prefix := range prefixes {
		if strings.HasPrefix(cmd, prefix) {
			query := strings.TrimSpace(strings.TrimPrefix(cmd, prefix))
			query = strings.ReplaceAll(query, " files", "")
			query = strings.ReplaceAll(query, " documents", "")
			return strings.TrimSpace(query)
		}
	}

	// Fallback: words after an embedded search/find, skipping fillers.
	words := strings.Fields(cmd)
	for i, w := range words {
		if w == "search" || w == "find" {
			var queryWords []string
			for _, qw := range words[i+1:] {
				if qw == "for" || qw == "my" || qw == "the" {
					continue
				}
				queryWords = append(queryWords, qw)
			}
			return strings.Join(queryWords, " ")
		}
	}
	return ""
}

func extractFileOperation(cmd string) string {
	operations := []struct {
		name     string
		keywords []string
	}{
		{"copy", []string{"copy", "duplicate"}},
		{"move", []string{"move", "transfer"}},
		{"delete", []string{"delete", "remove", "trash"}},
		{"backup", []string{"backup", "save copy"}},
	}
	for _, op := range operations {
		if containsAny(cmd, op.keywords...) {
			return op.name
		}
	}
	return ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
