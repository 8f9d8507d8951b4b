package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"alfredoptarigan/career-assistant/internal/logger"
	"alfredoptarigan/career-assistant/internal/models"
)

const (
	defaultMatchPercentage = 50
	defaultStrength        = "Analysis completed"
	defaultWeakness        = "Review the details"
	defaultRecommendation  = "Review the full analysis before deciding."
	defaultFourWeekPlan    = "Personalised improvement plan based on the analysis."
)

const comparisonSchema = `{
  "type": "object",
  "required": ["strengths", "weaknesses", "recommendation", "matchPercentage", "fourWeekPlan"],
  "properties": {
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}},
    "recommendation": {"type": "string"},
    "matchPercentage": {"type": "number", "minimum": 0, "maximum": 100},
    "fourWeekPlan": {"type": ["string", "array", "object"]}
  }
}`

// ParseMode records which strategy produced a ComparisonResult.
type ParseMode string

const (
	ParseStrict   ParseMode = "strict"
	ParseLenient  ParseMode = "lenient"
	ParseFallback ParseMode = "fallback"
)

type ComparisonParser struct {
	schema *jsonschema.Schema
	log    *zap.Logger
}

func NewComparisonParser(log *zap.Logger) *ComparisonParser {
	return &ComparisonParser{
		schema: jsonschema.MustCompileString("comparison.json", comparisonSchema),
		log:    log,
	}
}

// Parse turns a model completion into a ComparisonResult. It never fails: when
// no JSON object can be found it falls back to reading headed bullet lists.
func (p *ComparisonParser) Parse(raw string) (models.ComparisonResult, ParseMode) {
	jsonStr := extractJSON(raw)

	if gjson.Valid(jsonStr) && gjson.Parse(jsonStr).IsObject() {
		mode := ParseStrict
		if err := p.validate(jsonStr); err != nil {
			mode = ParseLenient
			p.log.Debug("comparison json does not match schema, reading leniently", zap.Error(err))
		}
		return normalizeComparison(readComparisonJSON(jsonStr)), mode
	}

	p.log.Warn("comparison response is not json, using fallback parser",
		zap.String("preview", logger.Truncate(raw, 200)),
	)
	return normalizeComparison(parseFallbackComparison(raw)), ParseFallback
}

func (p *ComparisonParser) validate(jsonStr string) error {
	var doc interface{}
	if err := json.Unmarshal([]byte(jsonStr), &doc); err != nil {
		return err
	}
	return p.schema.Validate(doc)
}

func readComparisonJSON(jsonStr string) models.ComparisonResult {
	doc := gjson.Parse(jsonStr)

	result := models.ComparisonResult{
		Strengths:       readStringList(doc.Get("strengths")),
		Weaknesses:      readStringList(doc.Get("weaknesses")),
		Recommendation:  strings.TrimSpace(doc.Get("recommendation").String()),
		MatchPercentage: defaultMatchPercentage,
		FourWeekPlan:    readPlan(doc.Get("fourWeekPlan")),
	}

	if pct, ok := readPercentage(doc.Get("matchPercentage")); ok {
		result.MatchPercentage = pct
	}

	return result
}

func readStringList(value gjson.Result) []string {
	var items []string

	switch {
	case value.IsArray():
		for _, item := range value.Array() {
			if text := strings.TrimSpace(item.String()); text != "" {
				items = append(items, text)
			}
		}
	case value.Type == gjson.String:
		for _, line := range strings.Split(value.String(), "\n") {
			if text := strings.TrimSpace(trimBullet(line)); text != "" {
				items = append(items, text)
			}
		}
	}

	return items
}

func readPercentage(value gjson.Result) (int, bool) {
	switch value.Type {
	case gjson.Number:
		return int(math.Round(value.Float())), true
	case gjson.String:
		cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value.String()), "%"))
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int(math.Round(f)), true
		}
	}
	return 0, false
}

// readPlan accepts a plain string, an array of weeks or an object keyed by week.
func readPlan(value gjson.Result) string {
	switch {
	case value.IsArray():
		var lines []string
		for _, week := range value.Array() {
			if line := flattenPlanEntry(week); line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	case value.IsObject():
		var lines []string
		value.ForEach(func(key, week gjson.Result) bool {
			if line := flattenPlanEntry(week); line != "" {
				lines = append(lines, key.String()+": "+line)
			}
			return true
		})
		return strings.Join(lines, "\n")
	default:
		return strings.TrimSpace(value.String())
	}
}

func flattenPlanEntry(entry gjson.Result) string {
	if !entry.IsObject() && !entry.IsArray() {
		return strings.TrimSpace(entry.String())
	}

	var parts []string
	entry.ForEach(func(_, v gjson.Result) bool {
		if text := flattenPlanEntry(v); text != "" {
			parts = append(parts, text)
		}
		return true
	})
	return strings.Join(parts, " - ")
}

// parseFallbackComparison reads "Strengths / Weaknesses / Recommendation / Plan"
// sections with bullet items from free text.
func parseFallbackComparison(text string) models.ComparisonResult {
	var (
		strengths      []string
		weaknesses     []string
		recommendation strings.Builder
		plan           strings.Builder
		section        string
	)

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if isBullet(trimmed) {
			item := strings.TrimSpace(trimBullet(trimmed))
			switch section {
			case "strengths":
				strengths = append(strengths, item)
			case "weaknesses":
				weaknesses = append(weaknesses, item)
			case "recommendation":
				recommendation.WriteString(item + " ")
			case "plan":
				plan.WriteString(item + "\n")
			}
			continue
		}

		lower := strings.ToLower(trimmed)
		switch {
		case strings.Contains(lower, "strength"):
			section = "strengths"
		case strings.Contains(lower, "weakness"):
			section = "weaknesses"
		case strings.Contains(lower, "recommendation"):
			section = "recommendation"
		case strings.Contains(lower, "plan") || strings.Contains(lower, "4 week") || strings.Contains(lower, "four week"):
			section = "plan"
		case section == "recommendation":
			recommendation.WriteString(trimmed + " ")
		case section == "plan":
			plan.WriteString(trimmed + "\n")
		}
	}

	pct := defaultMatchPercentage
	if total := len(strengths) + len(weaknesses); total > 0 {
		pct = int(math.Round(float64(len(strengths)) / float64(total) * 100))
	}

	return models.ComparisonResult{
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendation:  strings.TrimSpace(recommendation.String()),
		MatchPercentage: pct,
		FourWeekPlan:    strings.TrimSpace(plan.String()),
	}
}

func isBullet(line string) bool {
	if strings.HasPrefix(line, "**") {
		return false
	}
	return strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*")
}

func trimBullet(line string) string {
	line = strings.TrimSpace(line)
	for _, prefix := range []string{"-", "•", "*"} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return line
}

func normalizeComparison(result models.ComparisonResult) models.ComparisonResult {
	if len(result.Strengths) == 0 {
		result.Strengths = []string{defaultStrength}
	}
	if len(result.Weaknesses) == 0 {
		result.Weaknesses = []string{defaultWeakness}
	}
	if result.Recommendation == "" {
		result.Recommendation = defaultRecommendation
	}
	if result.FourWeekPlan == "" {
		result.FourWeekPlan = defaultFourWeekPlan
	}
	if result.MatchPercentage < 0 {
		result.MatchPercentage = 0
	}
	if result.MatchPercentage > 100 {
		result.MatchPercentage = 100
	}
	return result
}

// extractJSON tries to extract JSON from text that might contain markdown or other formatting
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}

	return strings.TrimSpace(text)
}
