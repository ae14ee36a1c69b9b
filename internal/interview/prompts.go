package interview

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
)

// Sampling temperatures per task. Classification runs coldest so repeated
// calls over the same tone stay consistent; question generation sits between
// that and general conversation.
const (
	tempConversation float32 = 0.7
	tempQuestions    float32 = 0.6
	tempClassify     float32 = 0.3
)

//go:embed prompts/*.md
var promptFS embed.FS

var (
	promptSystem       = mustPrompt("system")
	promptGreeting     = mustPrompt("greeting")
	promptGathering    = mustPrompt("gathering")
	promptQuestions    = mustPrompt("questions")
	promptAnswering    = mustPrompt("answering")
	promptRedirect     = mustPrompt("redirect")
	promptRedirectFirm = mustPrompt("redirect_firm")
	promptExit         = mustPrompt("exit")
	promptClassify     = mustPrompt("classify")
)

func mustPrompt(name string) string {
	data, err := promptFS.ReadFile("prompts/" + name + ".md")
	if err != nil {
		panic(fmt.Sprintf("embedded prompt %q: %v", name, err))
	}
	return strings.TrimSpace(string(data))
}

// render substitutes {{KEY}} placeholders in the template.
func render(template string, vars map[string]string) string {
	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// phaseContext describes the current phase for the system prompt.
var phaseContext = map[Phase]string{
	PhaseGreeting:           "You are greeting the candidate for the first time. Welcome them and ask for their name.",
	PhaseGatheringInfo:      "You are collecting the candidate's profile information, one field at a time.",
	PhaseTechQuestions:      "All candidate information is collected. You are presenting technical screening questions based on their tech stack.",
	PhaseAnsweringQuestions: "The candidate is answering technical questions. Evaluate their responses and guide them through the remaining questions.",
	PhaseClosing:            "The screening is wrapping up. Thank the candidate and explain next steps.",
	PhaseEnded:              "The conversation has ended.",
}

// systemPrompt builds the fresh system instruction for a turn from an
// immutable snapshot of phase and profile.
func systemPrompt(phase Phase, profile *Profile) string {
	return render(promptSystem, map[string]string{
		"STATE_CONTEXT":     phaseContext[phase],
		"CANDIDATE_CONTEXT": profile.Summary(),
	})
}

func greetingPrompt() string {
	return promptGreeting
}

// gatheringDirective narrows the turn to exactly one missing field.
func gatheringDirective(next FieldID) string {
	return render(promptGathering, map[string]string{
		"FIELD_LABEL": FieldLabel(next),
	})
}

func answeringDirective() string {
	return promptAnswering
}

// questionsPrompt requests the full question set for the candidate's tech
// stack, difficulty scaled by years of experience.
func questionsPrompt(profile *Profile) string {
	years := 0
	if profile.YearsExperience != nil {
		years = *profile.YearsExperience
	}

	firstTech := "Technology"
	if len(profile.TechStack) > 0 {
		firstTech = profile.TechStack[0]
	}

	return render(promptQuestions, map[string]string{
		"NAME":       orFallback(profile.FullName, "Candidate"),
		"EXPERIENCE": strconv.Itoa(years),
		"POSITION":   orFallback(profile.DesiredPosition, "Software Engineer"),
		"TECH_STACK": strings.Join(profile.TechStack, ", "),
		"DIFFICULTY": difficultyBand(years),
		"FIRST_TECH": firstTech,
	})
}

// difficultyBand maps years of experience to the question difficulty
// directive: 0-2 foundational, 3-5 intermediate/design, 6+
// advanced/architecture.
func difficultyBand(years int) string {
	switch {
	case years <= 2:
		return "foundational concepts, basic usage, simple problem-solving"
	case years <= 5:
		return "intermediate concepts, design decisions, best practices"
	default:
		return "advanced concepts, architecture, optimization, technical leadership"
	}
}

// redirectDirective produces the off-topic redirect for the current streak.
// Wording gets monotonically firmer from the third consecutive off-topic
// turn; the phase never changes because of it.
func redirectDirective(phase Phase, next FieldID, streak int) string {
	step := "continuing the technical discussion"
	if next != "" {
		step = "your " + FieldLabel(next)
	}

	vars := map[string]string{
		"PHASE":     string(phase),
		"NEXT_STEP": step,
		"STREAK":    strconv.Itoa(streak),
	}

	if streak >= escalationThreshold {
		return render(promptRedirectFirm, vars)
	}
	return render(promptRedirect, vars)
}

// exitPrompt generates the closing message request, for both a completed
// screening and an early exit.
func exitPrompt(profile *Profile) string {
	status := "Incomplete"
	if profile.Complete() {
		status = "Complete"
	}

	return render(promptExit, map[string]string{
		"NAME":        orFallback(profile.FullName, "there"),
		"INFO_STATUS": status,
	})
}

// classifyPrompt requests the combined off-topic and sentiment signal for
// the latest candidate message.
func classifyPrompt(phase Phase, message string) string {
	return render(promptClassify, map[string]string{
		"PHASE":   string(phase),
		"MESSAGE": message,
	})
}

func orFallback(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}
