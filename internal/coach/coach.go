// Package coach wires the question pipeline end to end: classify the text,
// dispatch the intent, narrate the answer.
package coach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Benny93/graphleague-go/internal/dispatch"
	"github.com/Benny93/graphleague-go/internal/intent"
	"github.com/Benny93/graphleague-go/internal/narrate"
)

// Classifier maps text to an Intent. *intent.Classifier implements it.
type Classifier interface {
	Classify(ctx context.Context, text string) intent.Intent
}

// Reply is the outcome of one question.
type Reply struct {
	RequestID string           `json:"request_id"`
	Question  string           `json:"question"`
	Intent    intent.Wire      `json:"intent"`
	Answer    *dispatch.Answer `json:"answer"`
	Text      string           `json:"text"`
	Duration  time.Duration    `json:"duration_ns"`
}

// Service answers questions. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	classifier Classifier
	dispatcher *dispatch.Dispatcher
	narrator   narrate.Narrator
	logger     *zap.Logger
}

// NewService creates a Service. A nil narrator uses narrate.TemplateNarrator.
func NewService(c Classifier, d *dispatch.Dispatcher, n narrate.Narrator, logger *zap.Logger) *Service {
	if n == nil {
		n = narrate.TemplateNarrator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{classifier: c, dispatcher: d, narrator: n, logger: logger}
}

// Ask runs one question through the pipeline. The returned error is only set
// when the graph store failed; unanswerable questions are regular replies.
func (s *Service) Ask(ctx context.Context, question string) (*Reply, error) {
	start := time.Now()
	reply := &Reply{RequestID: uuid.NewString(), Question: question}
	log := s.logger.With(zap.String("request_id", reply.RequestID))

	in := s.classifier.Classify(ctx, question)
	reply.Intent = intent.ToWire(in)
	log.Info("question classified", zap.String("intent", string(in.Kind())))

	answer, err := s.dispatcher.Dispatch(ctx, in)
	if err != nil {
		log.Error("dispatch failed", zap.Error(err))
		return nil, fmt.Errorf("answering %s: %w", reply.RequestID, err)
	}
	reply.Answer = answer

	text, err := s.narrator.Narrate(ctx, question, answer)
	if err != nil {
		return nil, fmt.Errorf("narrating %s: %w", reply.RequestID, err)
	}
	reply.Text = text
	reply.Duration = time.Since(start)

	log.Info("question answered",
		zap.String("intent", string(in.Kind())),
		zap.Int("results", answer.Len()),
		zap.Bool("unanswerable", answer.Unanswerable),
		zap.Duration("duration", reply.Duration))
	return reply, nil
}

// Classify exposes the classification step on its own.
func (s *Service) Classify(ctx context.Context, question string) intent.Intent {
	return s.classifier.Classify(ctx, question)
}

// Dispatch exposes the dispatch step on its own.
func (s *Service) Dispatch(ctx context.Context, in intent.Intent) (*dispatch.Answer, error) {
	return s.dispatcher.Dispatch(ctx, in)
}
