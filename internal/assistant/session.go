package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tracefirst/digilink/internal/product"
)

// Speaker identifies who authored a transcript turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one entry in a conversation transcript.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

var (
	// ErrEmptyQuestion is returned by Ask for a whitespace-only question.
	// The transcript is not touched and the provider is not called.
	ErrEmptyQuestion = errors.New("assistant: empty question")
	// ErrNotOpen is returned by Ask before Open has seeded a transcript.
	ErrNotOpen = errors.New("assistant: session not open")
	// ErrTranscriptDiscarded is returned when an answer arrives for a
	// transcript that was closed or reopened while the call was in flight.
	ErrTranscriptDiscarded = errors.New("assistant: transcript discarded")
)

// Session holds the conversation transcript for exactly one product.
// Reopening — for the same product or a different one — discards the
// transcript and reseeds the greeting. The transcript is append-only.
type Session struct {
	provider AnswerProvider // nil means the AI capability is absent
	logger   *slog.Logger

	mu         sync.Mutex
	id         string
	product    *product.ProductData
	turns      []Turn
	generation uint64

	// askMu serializes provider calls: at most one outstanding answer per
	// session. Sessions for different products are independent.
	askMu sync.Mutex
}

// NewSession creates a session bound to provider. A nil provider is the
// permanently-unconfigured state: every Ask short-circuits to
// UnconfiguredText without delegation.
func NewSession(provider AnswerProvider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{provider: provider, logger: logger}
}

// Greeting returns the seeded first turn text for p.
func Greeting(p *product.ProductData) string {
	return fmt.Sprintf("Hi! I'm your %s assistant. Ask me anything about %s!", p.Brand, p.Name)
}

// Open seeds a fresh transcript for p: exactly one assistant greeting turn.
// Any prior transcript is discarded; in-flight answers targeting it are
// dropped when they complete.
func (s *Session) Open(p *product.ProductData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.New().String()
	s.product = p
	s.generation++
	s.turns = []Turn{{Speaker: SpeakerAssistant, Text: Greeting(p)}}
	s.logger.Debug("assistant session opened",
		slog.String("session_id", s.id),
		slog.String("gtin", p.GTIN))
}

// Close discards the transcript. A later Open starts fresh.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = ""
	s.product = nil
	s.generation++
	s.turns = nil
}

// Transcript returns a copy of the current transcript.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// IsOpen reports whether a transcript is currently seeded.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.product != nil
}

// Ask appends the user's question, obtains an answer, and appends it as an
// assistant turn. The assistant always answers: provider failures and empty
// answers become FallbackText, an absent provider becomes UnconfiguredText.
// Asks queue behind askMu, so a question is never interleaved between
// another question and its answer. The returned Turn is the appended
// assistant turn.
func (s *Session) Ask(ctx context.Context, question string) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, ErrEmptyQuestion
	}

	// One outstanding provider call per session; later Asks wait here.
	s.askMu.Lock()
	defer s.askMu.Unlock()

	s.mu.Lock()
	if s.product == nil {
		s.mu.Unlock()
		return Turn{}, ErrNotOpen
	}
	gen := s.generation
	p := s.product
	// Optimistic append: the question is visible before the answer exists.
	s.turns = append(s.turns, Turn{Speaker: SpeakerUser, Text: question})
	s.mu.Unlock()

	answer := s.answer(ctx, p, question)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// The transcript the answer targeted no longer exists.
		s.logger.Debug("assistant answer dropped, transcript discarded",
			slog.String("gtin", p.GTIN))
		return Turn{}, ErrTranscriptDiscarded
	}
	turn := Turn{Speaker: SpeakerAssistant, Text: answer}
	s.turns = append(s.turns, turn)
	return turn, nil
}

func (s *Session) answer(ctx context.Context, p *product.ProductData, question string) string {
	if s.provider == nil {
		return UnconfiguredText
	}

	prompt := BuildPrompt(p, question)
	text, err := s.provider.Answer(ctx, prompt)
	if err != nil {
		s.logger.Warn("answer provider failed",
			slog.String("gtin", p.GTIN),
			slog.String("error", err.Error()))
		return FallbackText
	}
	if strings.TrimSpace(text) == "" {
		return FallbackText
	}
	return text
}
