package intent

import (
	"testing"

	"github.com/auroradesk/aurora/pkg/Logger"
)

func testAnalyzer() *Analyzer {
	return New(Logger.New(true))
}

func TestAnalyzePatternMatches(t *testing.T) {
	a := testAnalyzer()
	cases := []struct {
		text       string
		wantIntent string
		wantAction string
	}{
		{"open chrome", "open_application", "open_app"},
		{"launch the music player", "open_application", "open_app"},
		{"search for cheap flights", "search_web", "web_search"},
		{"google best go libraries", "search_web", "web_search"},
		{"show me the system info", "system_info", "get_system_info"},
	}
	for _, tc := range cases {
		res := a.Analyze(tc.text)
		if res.Intent != tc.wantIntent {
			t.Errorf("%q: expected intent %s, got %s", tc.text, tc.wantIntent, res.Intent)
		}
		if res.Action != tc.wantAction {
			t.Errorf("%q: expected action %s, got %s", tc.text, tc.wantAction, res.Action)
		}
		if res.Confidence < 0.9 {
			t.Errorf("%q: pattern match confidence too low: %v", tc.text, res.Confidence)
		}
	}
}

func TestAnalyzeExtractsEntities(t *testing.T) {
	a := testAnalyzer()

	res := a.Analyze("open spotify")
	if got := res.Entities["app_name"]; got != "spotify" {
		t.Errorf("expected app_name spotify, got %v", got)
	}

	res = a.Analyze("search for tax deadline 2026")
	if got := res.Entities["query"]; got != "tax deadline 2026" {
		t.Errorf("expected query entity, got %v", got)
	}
}

func TestAnalyzeFuzzyMatchesNoisyTranscript(t *testing.T) {
	a := testAnalyzer()

	// Close to "what time is it" but not a regex hit.
	res := a.Analyze("wat time is itt")
	if res.Intent != "system_info" {
		t.Fatalf("expected fuzzy system_info, got %s (conf %v)", res.Intent, res.Confidence)
	}
	if res.Confidence < fuzzyThreshold || res.Confidence >= 1.0 {
		t.Errorf("fuzzy confidence out of range: %v", res.Confidence)
	}
	if res.Entities["matched_phrase"] != "what time is it" {
		t.Errorf("expected matched_phrase entity, got %v", res.Entities["matched_phrase"])
	}
}

func TestAnalyzeFallsBackToGeneralQuery(t *testing.T) {
	a := testAnalyzer()

	res := a.Analyze("compose a haiku about the rain falling on mountains")
	if res.Intent != "general_query" {
		t.Fatalf("expected general_query, got %s", res.Intent)
	}
	if res.Action != "ai_process" {
		t.Errorf("expected ai_process action, got %s", res.Action)
	}
	if res.Confidence != 0.3 {
		t.Errorf("expected fallback confidence 0.3, got %v", res.Confidence)
	}
	if res.Parameters["prompt"] != "compose a haiku about the rain falling on mountains" {
		t.Errorf("fallback should carry the prompt through, got %v", res.Parameters)
	}
}

func TestFuzzySimilarityOrdering(t *testing.T) {
	a := testAnalyzer()

	_, _, matched, sim := a.fuzzyMatch("take a screenshit")
	if matched != "take a screenshot" {
		t.Errorf("expected closest phrase to be screenshot, got %q", matched)
	}
	if sim < fuzzyThreshold {
		t.Errorf("expected similarity above threshold, got %v", sim)
	}
}
