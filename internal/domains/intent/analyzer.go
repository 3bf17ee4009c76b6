package intent

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/auroradesk/aurora/pkg/Logger"
)

// fuzzyThreshold is the minimum Levenshtein similarity for a phrase match.
// Below it the analyzer falls back to the general AI intent.
const fuzzyThreshold = 0.7

// Result is a structured reading of one transcript or typed command.
type Result struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
	Action     string         `json:"action"`
	Parameters map[string]any `json:"parameters"`
}

type pattern struct {
	intent  string
	action  string
	regexps []*regexp.Regexp
	extract func(groups []string) map[string]any
}

type phrase struct {
	text   string
	intent string
	action string
}

// Analyzer recognizes intents in two tiers: exact regex patterns first,
// then fuzzy matching of whole phrases for noisy voice transcripts.
type Analyzer struct {
	logger   *Logger.Logger
	patterns []pattern
	phrases  []phrase
}

func New(logger *Logger.Logger) *Analyzer {
	return &Analyzer{
		logger:   logger,
		patterns: buildPatterns(),
		phrases:  buildPhrases(),
	}
}

// Analyze extracts the intent and entities from text.
func (a *Analyzer) Analyze(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, pc := range a.patterns {
		for _, re := range pc.regexps {
			if m := re.FindStringSubmatch(lower); m != nil {
				entities := map[string]any{}
				if pc.extract != nil {
					entities = pc.extract(m)
				}
				return Result{
					Intent:     pc.intent,
					Confidence: 0.9, // pattern matches are high confidence
					Entities:   entities,
					Action:     pc.action,
					Parameters: entities,
				}
			}
		}
	}

	if intent, action, matched, sim := a.fuzzyMatch(lower); sim >= fuzzyThreshold {
		a.logger.Debugf("fuzzy intent match %q -> %s (%.2f)", text, intent, sim)
		return Result{
			Intent:     intent,
			Confidence: sim,
			Entities:   map[string]any{"matched_phrase": matched},
			Action:     action,
			Parameters: map[string]any{},
		}
	}

	return a.fallback(text)
}

// fuzzyMatch finds the registered phrase with the highest Levenshtein
// similarity to the input.
func (a *Analyzer) fuzzyMatch(text string) (intent, action, matched string, similarity float64) {
	for _, ph := range a.phrases {
		dist := levenshtein.ComputeDistance(text, ph.text)
		longest := len(text)
		if len(ph.text) > longest {
			longest = len(ph.text)
		}
		if longest == 0 {
			continue
		}
		sim := 1 - float64(dist)/float64(longest)
		if sim > similarity {
			intent, action, matched, similarity = ph.intent, ph.action, ph.text, sim
		}
	}
	return intent, action, matched, similarity
}

func (a *Analyzer) fallback(text string) Result {
	return Result{
		Intent:     "general_query",
		Confidence: 0.3,
		Entities:   map[string]any{"text": text},
		Action:     "ai_process",
		Parameters: map[string]any{"prompt": text},
	}
}

func buildPatterns() []pattern {
	appExtract := func(groups []string) map[string]any {
		return map[string]any{"app_name": strings.TrimSpace(groups[1])}
	}
	queryExtract := func(groups []string) map[string]any {
		return map[string]any{"query": strings.TrimSpace(groups[1])}
	}

	return []pattern{
		{
			intent: "open_application",
			action: "open_app",
			regexps: []*regexp.Regexp{
				regexp.MustCompile(`^open (.+)$`),
				regexp.MustCompile(`^launch (.+)$`),
				regexp.MustCompile(`^start (.+)$`),
				regexp.MustCompile(`^run (.+)$`),
			},
			extract: appExtract,
		},
		{
			intent: "search_web",
			action: "web_search",
			regexps: []*regexp.Regexp{
				regexp.MustCompile(`^search for (.+)$`),
				regexp.MustCompile(`^look up (.+)$`),
				regexp.MustCompile(`^google (.+)$`),
			},
			extract: queryExtract,
		},
		{
			intent: "system_info",
			action: "get_system_info",
			regexps: []*regexp.Regexp{
				regexp.MustCompile(`system info`),
				regexp.MustCompile(`what'?s running`),
				regexp.MustCompile(`show processes`),
				regexp.MustCompile(`computer info`),
			},
		},
	}
}

// buildPhrases registers canonical phrasings used by the fuzzy tier.
// Voice transcripts mangle these often enough that regex alone misses.
func buildPhrases() []phrase {
	return []phrase{
		{"what time is it", "system_info", "get_system_info"},
		{"what is the date today", "system_info", "get_system_info"},
		{"show me system information", "system_info", "get_system_info"},
		{"open the browser", "open_application", "open_app"},
		{"close the current window", "close_application", "close_app"},
		{"take a screenshot", "screenshot", "capture_screen"},
		{"start my work setup", "workflow", "run_workflow"},
		{"back up my files", "workflow", "run_workflow"},
	}
}
