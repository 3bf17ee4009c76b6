package router

import (
	"strings"

	"github.com/auroradesk/aurora/pkg/assistant/adapters"
)

// Keyword tables for request classification. Matching is case-insensitive
// substring search, first table that hits wins. Order is fixed:
// coding, creative, analysis, privacy, then the general fallback.
var (
	codingKeywords = []string{
		"code", "debug", "function", "compile", "refactor",
		"bug", "script", "program", "regex", "stack trace",
	}
	creativeKeywords = []string{
		"poem", "story", "write", "creative", "song",
		"imagine", "brainstorm", "draft",
	}
	analysisKeywords = []string{
		"analyze", "analysis", "compare", "summarize",
		"explain", "evaluate", "report", "data",
	}
	privacyKeywords = []string{
		"private", "confidential", "secret", "personal", "sensitive",
	}
)

// Classify buckets a request into exactly one capability category.
// A truthy `sensitive` context flag forces privacy before any keyword
// matching runs.
func Classify(req adapters.Request) adapters.Capability {
	if flagged(req.Context, "sensitive") {
		return adapters.CapPrivacy
	}

	prompt := strings.ToLower(req.Prompt)
	switch {
	case containsAny(prompt, codingKeywords):
		return adapters.CapCoding
	case containsAny(prompt, creativeKeywords):
		return adapters.CapCreative
	case containsAny(prompt, analysisKeywords):
		return adapters.CapAnalysis
	case containsAny(prompt, privacyKeywords):
		return adapters.CapPrivacy
	}
	return adapters.CapGeneral
}

func containsAny(prompt string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(prompt, kw) {
			return true
		}
	}
	return false
}

func flagged(ctx map[string]any, key string) bool {
	if ctx == nil {
		return false
	}
	switch v := ctx[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "yes"
	}
	return false
}
