package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/talentscout/talentbot/internal/ai"
	"github.com/talentscout/talentbot/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Phase is the discrete stage the interview is in. Exactly one phase is
// active per session and transitions are owned by Submit/Greet alone.
type Phase string

const (
	PhaseGreeting           Phase = "greeting"
	PhaseGatheringInfo      Phase = "gathering_info"
	PhaseTechQuestions      Phase = "tech_questions"
	PhaseAnsweringQuestions Phase = "answering_questions"
	PhaseClosing            Phase = "closing"
	PhaseEnded              Phase = "ended"
)

const (
	// escalationThreshold is the fallback streak at which the redirect
	// wording turns firm.
	escalationThreshold = 3

	// maxInputRunes caps candidate input before processing.
	maxInputRunes = 2000
)

var (
	// ErrSessionEnded is returned when input is submitted to a session in
	// the terminal phase. Callers must Reset to start over.
	ErrSessionEnded = errors.New("interview session has ended")

	// ErrAlreadyGreeted is returned when Greet is called after the opening
	// turn was already delivered.
	ErrAlreadyGreeted = errors.New("greeting already delivered")

	errNoBlock = errors.New("no structured block found")
)

// Session owns one interview: the phase, the candidate profile, the
// append-only message history and the fallback streak. It is not safe for
// concurrent use; callers submit one turn at a time and wait for the result,
// which is also the only ordering the interview itself permits.
type Session struct {
	id        string
	generator ai.Generator
	baseLog   *zap.Logger
	logger    *zap.Logger
	createdAt time.Time

	phase          Phase
	profile        *Profile
	history        []ai.Message
	fallbackStreak int
}

// New creates a session in the greeting phase with an empty profile.
func New(generator ai.Generator, log *zap.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:        id,
		generator: generator,
		baseLog:   log,
		logger:    logger.WithFields(log, zap.String(logger.FieldSession, id)),
		createdAt: time.Now(),
		phase:     PhaseGreeting,
		profile:   &Profile{},
	}
}

func (s *Session) ID() string   { return s.id }
func (s *Session) Phase() Phase { return s.phase }
func (s *Session) Ended() bool  { return s.phase == PhaseEnded }

// Profile returns an independent snapshot of the collected profile.
func (s *Session) Profile() *Profile {
	return s.profile.Clone()
}

// History returns a copy of the display message log, oldest first.
func (s *Session) History() []ai.Message {
	return append([]ai.Message(nil), s.history...)
}

// NextField returns the id of the next profile field to collect, empty when
// the profile is complete.
func (s *Session) NextField() FieldID {
	return NextMissing(s.profile)
}

// Export returns the anonymized profile snapshot together with session
// metadata. This is the only artifact intended to leave the process.
func (s *Session) Export() map[string]any {
	return map[string]any{
		"session_id":  s.id,
		"started_at":  s.createdAt.Format(time.RFC3339),
		"export_date": time.Now().Format(time.RFC3339),
		"candidate":   s.profile.Export(),
		"notice":      "personally identifying fields are one-way hashed",
	}
}

// Reset tears the session down and starts a fresh one in place: new id,
// greeting phase, empty profile and history.
func (s *Session) Reset() {
	*s = *New(s.generator, s.baseLog)
}

// Greet produces the opening assistant turn and moves the session into the
// gathering phase. The transition is unconditional once the turn is emitted.
func (s *Session) Greet(ctx context.Context) (string, error) {
	if s.phase != PhaseGreeting {
		return "", ErrAlreadyGreeted
	}

	window := BuildWindow(systemPrompt(s.phase, s.profile), nil, PolicyFull)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: greetingPrompt()})

	reply, err := s.generator.Generate(ctx, window, tempConversation)
	if err != nil {
		return "", err
	}

	s.history = append(s.history, ai.Message{Role: ai.RoleAssistant, Text: reply})
	s.transition(PhaseGatheringInfo)
	return reply, nil
}

// Submit processes one candidate message and returns the assistant reply.
// On a transport error nothing is committed: phase, profile and history are
// exactly as before the call, so resubmitting the same text retries the
// identical turn.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	if s.phase == PhaseEnded {
		return "", ErrSessionEnded
	}

	text = sanitizeInput(text)

	// Exit intent pre-empts everything, including pending field
	// requirements and an interrupted closing turn.
	if s.phase == PhaseClosing || IsExitIntent(text) {
		if s.phase != PhaseClosing {
			s.transition(PhaseClosing)
		}
		return s.closeOut(ctx, text)
	}

	if s.phase == PhaseGreeting {
		// Input arrived before Greet was issued; fold the opening turn
		// into normal gathering instead of rejecting the candidate.
		s.transition(PhaseGatheringInfo)
	}

	switch s.phase {
	case PhaseGatheringInfo:
		return s.gatherTurn(ctx, text)
	default:
		return s.answerTurn(ctx, text)
	}
}

// gatherTurn runs one information-gathering exchange: classify, redirect if
// off-topic, otherwise ask for the single next missing field and merge
// whatever valid fields the reply's structured block contains. When the
// profile completes, the technical question set is generated within the same
// turn and the session moves to answering.
func (s *Session) gatherTurn(ctx context.Context, text string) (string, error) {
	signal := s.classifyTurn(ctx, text)
	if signal.OffTopic {
		return s.redirectTurn(ctx, text, signal)
	}

	next := NextMissing(s.profile)
	system := systemPrompt(s.phase, s.profile) + "\n\n" + gatheringDirective(next)

	window := BuildWindow(system, s.history, PolicyFull)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: text})

	raw, err := s.generator.Generate(ctx, window, tempConversation)
	if err != nil {
		return "", err
	}

	extraction := Extract(raw)
	if !extraction.ParseOK {
		s.logger.Debug("no structured block in gathering reply",
			zap.String("response_preview", preview(raw)),
		)
	}

	// Merge into a scratch copy first: if question generation below fails,
	// the committed profile must stay untouched for the retry.
	merged := s.profile.Clone()
	for id, value := range extraction.Fields {
		ApplyField(merged, id, value)
	}

	reply := extraction.DisplayText
	target := PhaseGatheringInfo

	if NextMissing(merged) == "" {
		questions, err := s.generateQuestions(ctx, merged)
		if err != nil {
			return "", err
		}
		reply = strings.TrimRight(reply, " \n") + "\n\n" + questions
		target = PhaseAnsweringQuestions
	}

	s.profile = merged
	s.commitTurn(text, reply, signal)

	if target != s.phase {
		s.transition(PhaseTechQuestions)
		s.transition(target)
	}

	s.logger.Debug("gathering turn merged",
		zap.Int("extracted_fields", len(extraction.Fields)),
		zap.String("next_field", string(NextMissing(s.profile))),
	)

	return reply, nil
}

// generateQuestions issues the dedicated question-set call. Full question
// coverage for the declared tech stack, difficulty by experience band.
func (s *Session) generateQuestions(ctx context.Context, profile *Profile) (string, error) {
	window := BuildWindow(systemPrompt(PhaseTechQuestions, profile), nil, PolicyFull)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: questionsPrompt(profile)})

	return s.generator.Generate(ctx, window, tempQuestions)
}

// answerTurn handles a technical Q&A exchange. No extraction is performed;
// the model evaluates the answer and steers toward the remaining questions.
func (s *Session) answerTurn(ctx context.Context, text string) (string, error) {
	signal := s.classifyTurn(ctx, text)
	if signal.OffTopic {
		return s.redirectTurn(ctx, text, signal)
	}

	system := systemPrompt(s.phase, s.profile) + "\n\n" + answeringDirective()

	window := BuildWindow(system, s.history, PolicyFull)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: text})

	reply, err := s.generator.Generate(ctx, window, tempConversation)
	if err != nil {
		return "", err
	}

	s.commitTurn(text, reply, signal)
	return reply, nil
}

// redirectTurn answers an off-topic message with a redirect referencing the
// current phase and next missing field. The streak escalates the wording but
// never the phase.
func (s *Session) redirectTurn(ctx context.Context, text string, signal turnSignal) (string, error) {
	streak := s.fallbackStreak + 1

	system := systemPrompt(s.phase, s.profile) + "\n\n" + redirectDirective(s.phase, NextMissing(s.profile), streak)

	window := BuildWindow(system, s.history, PolicyTrimmed)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: text})

	reply, err := s.generator.Generate(ctx, window, tempConversation)
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		ai.Message{Role: ai.RoleCandidate, Text: text},
		ai.Message{Role: ai.RoleAssistant, Text: reply},
	)
	s.fallbackStreak = streak
	s.setSentiment(signal)

	s.logger.Info("off-topic turn redirected",
		zap.String(logger.FieldPhase, string(s.phase)),
		zap.Int("fallback_streak", streak),
	)

	return reply, nil
}

// closeOut delivers the closing message and terminates the session. A
// transport failure leaves the phase at closing so the caller can retry the
// delivery.
func (s *Session) closeOut(ctx context.Context, text string) (string, error) {
	window := BuildWindow(systemPrompt(PhaseClosing, s.profile), nil, PolicyFull)
	window = append(window, ai.Message{Role: ai.RoleCandidate, Text: exitPrompt(s.profile)})

	reply, err := s.generator.Generate(ctx, window, tempConversation)
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		ai.Message{Role: ai.RoleCandidate, Text: text},
		ai.Message{Role: ai.RoleAssistant, Text: reply},
	)
	s.transition(PhaseEnded)
	return reply, nil
}

// commitTurn appends the exchange to history and applies the per-turn
// bookkeeping for an on-topic turn.
func (s *Session) commitTurn(candidate, assistant string, signal turnSignal) {
	s.history = append(s.history,
		ai.Message{Role: ai.RoleCandidate, Text: candidate},
		ai.Message{Role: ai.RoleAssistant, Text: assistant},
	)
	s.fallbackStreak = 0
	s.setSentiment(signal)
}

func (s *Session) setSentiment(signal turnSignal) {
	if signal.Sentiment == "" {
		return
	}
	s.profile.Sentiment = &Sentiment{
		Label:      signal.Sentiment,
		Confidence: signal.Confidence,
	}
}

func (s *Session) transition(to Phase) {
	s.logger.Info("phase transition",
		zap.String("from", string(s.phase)),
		zap.String("to", string(to)),
	)
	s.phase = to
}

// sanitizeInput trims, collapses whitespace and caps candidate input.
func sanitizeInput(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxInputRunes {
		text = string(runes[:maxInputRunes])
	}
	return text
}

func preview(s string) string {
	return logger.TruncateForLog(s, 200)
}
