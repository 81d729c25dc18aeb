package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/llm"
	"github.com/Benny93/graphleague-go/internal/metrics"
	"github.com/Benny93/graphleague-go/internal/retry"
	"github.com/Benny93/graphleague-go/internal/vocab"
)

// ClassifierConfig tunes generation calls.
type ClassifierConfig struct {
	Retry       retry.Policy
	Timeout     time.Duration // bound on one Classify call including retries; 0 disables
	Temperature float32
}

// DefaultClassifierConfig retries transient failures 8 times starting at one
// second and doubling up to 30 seconds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Retry: retry.Policy{
			MaxAttempts:  8,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
		},
		Timeout:     60 * time.Second,
		Temperature: 0.3,
	}
}

// Classifier maps free text to exactly one Intent.
type Classifier struct {
	gen     llm.Generator
	cfg     ClassifierConfig
	logger  *zap.Logger
	metrics *metrics.Metrics
	system  string
}

// NewClassifier creates a classifier backed by gen.
func NewClassifier(gen llm.Generator, cfg ClassifierConfig, logger *zap.Logger, m *metrics.Metrics) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		gen:     gen,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		system:  systemPrompt(),
	}
}

// Classify never fails: empty input, generation errors and invalid output all
// come back as Unknown.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	in := c.classify(ctx, text)
	c.metrics.IntentClassified(string(in.Kind()))
	return in
}

func (c *Classifier) classify(ctx context.Context, text string) Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return Unknown{Reason: ReasonEmptyQuery}
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := llm.Request{
		System:      c.system,
		Prompt:      "User Query: " + text,
		Input:       text,
		Schema:      OutputSchema(),
		Temperature: c.cfg.Temperature,
	}

	policy := c.cfg.Retry
	policy.Retryable = llm.IsTransient
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		c.metrics.GenerationRetried()
		c.logger.Warn("intent generation failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	raw, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) (string, error) {
		return c.gen.Generate(ctx, req)
	})
	if err != nil {
		c.logger.Error("intent routing failed", zap.String("query", text), zap.Error(err))
		return Unknown{Reason: ReasonSystemError}
	}

	in, err := Parse(raw)
	if err != nil {
		c.logger.Error("intent output rejected", zap.String("query", text), zap.String("output", raw), zap.Error(err))
		return Unknown{Reason: ReasonSystemError}
	}
	c.logger.Debug("intent classified", zap.String("query", text), zap.String("intent", string(in.Kind())))
	return in
}

func systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are the Intent Classifier for a League of Legends strategy tool.\n")
	b.WriteString("Analyze the user's query and route it to exactly one intent.\n\n")
	b.WriteString("- counter_pick: the user names an enemy champion they want to beat.\n")
	b.WriteString("- mechanic_search: the user asks which champions have a mechanic.\n")
	b.WriteString("- archetype_counter: the user asks how to beat a class of champions.\n")
	b.WriteString("- unknown: anything else. Give a short reason.\n\n")
	b.WriteString("Map synonyms for mechanics (e.g. \"Anti-Heal\" -> \"Grievous Wounds\").\n")
	b.WriteString("Map synonyms for lanes (e.g. \"ADC\" -> \"Bot\").\n")
	b.WriteString("If the query is about skins, lore, or stats, choose unknown.\n\n")
	fmt.Fprintf(&b, "Lanes: %s\n", join(vocab.Roles()))
	fmt.Fprintf(&b, "Mechanics: %s\n", join(vocab.Mechanics()))
	fmt.Fprintf(&b, "Archetypes: %s\n", join(vocab.Archetypes()))
	return b.String()
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
