// Package narrate turns dispatched answers into the text shown to users.
package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/metrics"
	"github.com/Benny93/graphleague-go/internal/retry"
)

// Narrator writes the reply to a question from its answer.
type Narrator interface {
	Narrate(ctx context.Context, question string, answer *dispatch.Answer) (string, error)
}

// Unanswerable is the reply to every question the classifier gave up on.
func Unanswerable(reason string) string {
	return "I can't answer that right now. " + reason
}

// TemplateNarrator renders answers as plain lists without a model.
type TemplateNarrator struct{}

// Narrate implements Narrator.
func (TemplateNarrator) Narrate(_ context.Context, _ string, answer *dispatch.Answer) (string, error) {
	if answer.Unanswerable {
		return Unanswerable(answer.Reason), nil
	}
	if answer.Empty() {
		return fmt.Sprintf("%s: nothing matches, based on the information available.", answer.Context), nil
	}

	var b strings.Builder
	b.WriteString(answer.Context)
	b.WriteString(":\n")
	for i, p := range answer.CounterPicks {
		fmt.Fprintf(&b, "%d. %s (score %d: offense %d, defense %d)\n", i+1, p.Champion, p.Score, p.Offense, p.Defense)
		for _, r := range p.Pros {
			fmt.Fprintf(&b, "   + %s\n", r)
		}
		for _, r := range p.Cons {
			fmt.Fprintf(&b, "   - %s\n", r)
		}
	}
	for _, h := range answer.MechanicHolders {
		fmt.Fprintf(&b, "- %s: %s\n", h.Champion, h.Explanation)
	}
	for _, c := range answer.ArchetypeCounters {
		fmt.Fprintf(&b, "- %s (%s): %s\n", c.Champion, c.Archetype, c.Reason)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

const coachPrompt = `You are a League of Legends coach.
TASK: Use ONLY the following information to advise the user. Adopt a professional and coaching tone.
IF Champion Information is an empty list, inform the user that what they are asking for does not exist, based on the information available.
The original user query has been distilled to its intention. However, the original query is still attached for additional context.
Do not include an intro, but do give a summary if helpful.
Note: Archetype refers to the subclasses that Champions are divided into, e.g. Warden, Diver, Artillery.`

// Config tunes LLMNarrator.
type Config struct {
	Retry       retry.Policy
	Temperature float32
	Timeout     time.Duration // 0 disables
}

// DefaultConfig retries transient failures 10 times starting at one second.
func DefaultConfig() Config {
	return Config{
		Retry: retry.Policy{
			MaxAttempts:  10,
			InitialDelay: time.Second,
			MaxDelay:     time.Minute,
			Multiplier:   2,
		},
		Temperature: 0.2,
		Timeout:     2 * time.Minute,
	}
}

// LLMNarrator asks a Generator to coach from the answer. When generation
// fails it falls back to TemplateNarrator.
type LLMNarrator struct {
	gen      llm.Generator
	cfg      Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	fallback TemplateNarrator
}

// NewLLMNarrator creates a narrator backed by gen.
func NewLLMNarrator(gen llm.Generator, cfg Config, logger *zap.Logger, m *metrics.Metrics) *LLMNarrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMNarrator{gen: gen, cfg: cfg, logger: logger, metrics: m}
}

// Narrate implements Narrator.
func (n *LLMNarrator) Narrate(ctx context.Context, question string, answer *dispatch.Answer) (string, error) {
	if answer.Unanswerable {
		return Unanswerable(answer.Reason), nil
	}

	results, err := json.Marshal(answer.Results())
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}
	if answer.Empty() {
		results = []byte("[]")
	}

	if n.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System: coachPrompt,
		Prompt: fmt.Sprintf("Original User Query: %s\n\nContext: %s\n\nChampion Information: %s",
			question, answer.Context, results),
		Input:       question,
		Temperature: n.cfg.Temperature,
	}

	policy := n.cfg.Retry
	policy.Retryable = llm.IsTransient
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		n.metrics.GenerationRetried()
		n.logger.Warn("narration failed, retrying", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))
	}

	text, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) (string, error) {
		return n.gen.Generate(ctx, req)
	})
	if err != nil {
		n.logger.Error("narration failed, using template", zap.Error(err))
		return n.fallback.Narrate(ctx, question, answer)
	}
	return strings.TrimSpace(text), nil
}
