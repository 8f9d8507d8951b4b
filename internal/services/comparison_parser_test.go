package services

import (
	"testing"

	"go.uber.org/zap"
)

func TestComparisonParserStrict(t *testing.T) {
	parser := NewComparisonParser(zap.NewNop())

	raw := "Here is the result:\n```json\n" + comparisonJSON + "\n```"
	result, mode := parser.Parse(raw)

	if mode != ParseStrict {
		t.Fatalf("expected strict mode, got %s", mode)
	}
	if result.MatchPercentage != 80 || result.Recommendation != "Apply." {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Strengths) != 1 || result.Strengths[0] != "Go" {
		t.Fatalf("unexpected strengths: %v", result.Strengths)
	}
}

func TestComparisonParserCoercesFields(t *testing.T) {
	parser := NewComparisonParser(zap.NewNop())

	tests := []struct {
		name     string
		raw      string
		wantMode ParseMode
		wantPct  int
		wantPlan string
	}{
		{
			name:     "percentage as string",
			raw:      `{"strengths":["a"],"weaknesses":["b"],"recommendation":"r","matchPercentage":"72%","fourWeekPlan":"p"}`,
			wantMode: ParseLenient,
			wantPct:  72,
			wantPlan: "p",
		},
		{
			name:     "plan as array",
			raw:      `{"strengths":["a"],"weaknesses":["b"],"recommendation":"r","matchPercentage":55,"fourWeekPlan":["Week 1: Go","Week 2: SQL"]}`,
			wantMode: ParseStrict,
			wantPct:  55,
			wantPlan: "Week 1: Go\nWeek 2: SQL",
		},
		{
			name:     "missing percentage",
			raw:      `{"strengths":["a"],"weaknesses":["b"],"recommendation":"r","fourWeekPlan":"p"}`,
			wantMode: ParseLenient,
			wantPct:  50,
			wantPlan: "p",
		},
		{
			name:     "percentage above range",
			raw:      `{"strengths":["a"],"weaknesses":["b"],"recommendation":"r","matchPercentage":"140","fourWeekPlan":"p"}`,
			wantMode: ParseLenient,
			wantPct:  100,
			wantPlan: "p",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, mode := parser.Parse(tt.raw)
			if mode != tt.wantMode {
				t.Fatalf("expected %s mode, got %s", tt.wantMode, mode)
			}
			if result.MatchPercentage != tt.wantPct {
				t.Fatalf("expected %d, got %d", tt.wantPct, result.MatchPercentage)
			}
			if result.FourWeekPlan != tt.wantPlan {
				t.Fatalf("expected plan %q, got %q", tt.wantPlan, result.FourWeekPlan)
			}
		})
	}
}

func TestComparisonParserFallback(t *testing.T) {
	parser := NewComparisonParser(zap.NewNop())

	raw := `**Strengths**
- Strong Go background
- Led migrations
* Good communication

**Weaknesses**
• No Kubernetes

**Recommendation**
Apply now.

**4 week plan**
- Week 1: Kubernetes basics`

	result, mode := parser.Parse(raw)
	if mode != ParseFallback {
		t.Fatalf("expected fallback mode, got %s", mode)
	}
	if len(result.Strengths) != 3 || len(result.Weaknesses) != 1 {
		t.Fatalf("unexpected lists: %v / %v", result.Strengths, result.Weaknesses)
	}
	if result.MatchPercentage != 75 {
		t.Fatalf("expected 75%% from 3 of 4 items, got %d", result.MatchPercentage)
	}
	if result.Recommendation != "Apply now." {
		t.Fatalf("unexpected recommendation %q", result.Recommendation)
	}
	if result.FourWeekPlan != "Week 1: Kubernetes basics" {
		t.Fatalf("unexpected plan %q", result.FourWeekPlan)
	}
}

func TestComparisonParserDefaults(t *testing.T) {
	result, _ := NewComparisonParser(zap.NewNop()).Parse("I cannot help with that.")

	if len(result.Strengths) != 1 || result.Strengths[0] != defaultStrength {
		t.Fatalf("expected default strength, got %v", result.Strengths)
	}
	if len(result.Weaknesses) != 1 || result.Weaknesses[0] != defaultWeakness {
		t.Fatalf("expected default weakness, got %v", result.Weaknesses)
	}
	if result.Recommendation == "" || result.FourWeekPlan == "" {
		t.Fatalf("expected defaults for text fields: %+v", result)
	}
	if result.MatchPercentage != defaultMatchPercentage {
		t.Fatalf("expected default percentage, got %d", result.MatchPercentage)
	}
}
