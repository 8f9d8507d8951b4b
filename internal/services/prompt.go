package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildCVAnalysisPrompt creates the prompt that summarises a candidate CV.
func (pb *PromptBuilder) BuildCVAnalysisPrompt(cvText string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter. Analyse the following CV and extract the key information about:
- Work experience (roles, seniority, duration)
- Technical skills
- Education
- Notable achievements
- Areas of specialisation

CV:
%s

Provide a structured analysis of the CV using short headed sections.`, cvText)
}

// BuildJobOfferAnalysisPrompt creates the prompt that summarises a job offer.
func (pb *PromptBuilder) BuildJobOfferAnalysisPrompt(jobOfferText string) string {
	return fmt.Sprintf(`You are an experienced technical recruiter. Analyse the following job offer and extract the key information about:
- Technical requirements
- Required experience
- Necessary skills
- Responsibilities
- Additional preferences

JOB OFFER:
%s

Provide a structured analysis of the offer using short headed sections.`, jobOfferText)
}

// BuildComparisonPrompt creates the prompt comparing both analyses. Additional
// considerations are placed first as a constraint the comparison must respect.
func (pb *PromptBuilder) BuildComparisonPrompt(cvAnalysis, jobOfferAnalysis, additionalConsiderations string) string {
	var sb strings.Builder

	if considerations := strings.TrimSpace(additionalConsiderations); considerations != "" {
		sb.WriteString("FIXED COMPATIBILITY CONSTRAINT (provided by the candidate, always read it in relation to the job offer):\n")
		sb.WriteString(considerations)
		sb.WriteString("\n\nEvery strength, weakness, recommendation and plan item below must take this constraint into account.\n\n")
	}

	sb.WriteString(`Compare the CV analysis with the job offer analysis and provide:

1. STRENGTHS: 5-8 strengths the candidate has for this offer
2. WEAKNESSES: 5-8 weaknesses or areas to improve
3. RECOMMENDATION: a 2-3 sentence summary saying whether the candidate should apply and why
4. FOUR WEEK PLAN: a detailed 4 week plan (one section per week) to close the gaps, with specific goals and concrete actions each week
5. MATCH PERCENTAGE: an integer between 0 and 100

CV ANALYSIS:
`)
	sb.WriteString(cvAnalysis)
	sb.WriteString("\n\nJOB OFFER ANALYSIS:\n")
	sb.WriteString(jobOfferAnalysis)
	sb.WriteString(`

Respond ONLY with valid JSON using exactly this structure (no text before or after):
{
  "strengths": ["strength 1", "strength 2"],
  "weaknesses": ["weakness 1", "weakness 2"],
  "recommendation": "2-3 sentence recommendation",
  "matchPercentage": 75,
  "fourWeekPlan": "Week 1: ...\nWeek 2: ...\nWeek 3: ...\nWeek 4: ..."
}`)

	return sb.String()
}
