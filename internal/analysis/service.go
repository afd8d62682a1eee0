// Package analysis runs a case through the AI pipeline: validation, prompt building, the outbound call,
// normalization and recording in the session history.
package analysis

import (
	"context"
	"fmt"
	"github.com/myrjola/sentinels/internal/ai"
	"github.com/myrjola/sentinels/internal/errors"
	"github.com/myrjola/sentinels/internal/intake"
	"github.com/myrjola/sentinels/internal/logging"
	"github.com/myrjola/sentinels/internal/models"
	"github.com/myrjola/sentinels/internal/normalize"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrAnalysisInProgress is returned when the session already has an analysis running.
	ErrAnalysisInProgress = errors.NewSentinel("analysis already in progress")
	// ErrUpstream wraps every failure of the outbound AI call.
	ErrUpstream = errors.NewSentinel("AI provider request failed")
)

// Recorder stores completed analyses.
type Recorder interface {
	Record(ctx context.Context, input models.CaseInput, result models.AnalysisResult) (models.CaseRecord, error)
}

type Service struct {
	generator  ai.Generator
	recorder   Recorder
	normalizer *normalize.Normalizer
	logger     *slog.Logger
	timeout    time.Duration
	now        func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewService constructs a Service. A zero timeout disables the analysis deadline.
func NewService(generator ai.Generator, recorder Recorder, logger *slog.Logger, timeout time.Duration) *Service {
	return &Service{
		generator:  generator,
		recorder:   recorder,
		normalizer: normalize.New(logger),
		logger:     logger,
		timeout:    timeout,
		now:        time.Now,
		pending:    make(map[string]struct{}),
	}
}

// Analyze validates input, asks the AI provider for an analysis and records the normalized result.
//
// Only one analysis may run per sessionID at a time. A failed analysis records nothing.
func (s *Service) Analyze(
	ctx context.Context,
	sessionID string,
	input models.CaseInput,
) (models.CaseRecord, error) {
	if err := input.Validate(); err != nil {
		return models.CaseRecord{}, err
	}

	if !s.acquire(sessionID) {
		return models.CaseRecord{}, errors.Wrap(ErrAnalysisInProgress, "acquire session",
			slog.String("session_id", sessionID))
	}
	defer s.release(sessionID)

	ctx = logging.WithAttrs(ctx, slog.String("session_id", sessionID))
	req, err := intake.Build(input, s.now())
	if err != nil {
		return models.CaseRecord{}, errors.Wrap(err, "build request")
	}

	start := time.Now()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "analysis started",
		slog.Bool("with_image", req.Image != nil), slog.Int("prompt_len", len(req.Prompt)))

	reply, err := s.generate(ctx, req)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "analysis failed",
			slog.Duration("duration", time.Since(start)), errors.SlogError(err))
		return models.CaseRecord{}, err
	}

	result := s.normalizer.Normalize(ctx, reply)
	record, err := s.recorder.Record(ctx, input, result)
	if err != nil {
		return models.CaseRecord{}, errors.Wrap(err, "record case")
	}

	s.logger.LogAttrs(logging.WithAttrs(ctx, slog.String("case_id", record.ID)), slog.LevelInfo, "analysis finished",
		slog.Duration("duration", time.Since(start)),
		slog.Int("matches", len(result.PotentialMatches)),
		slog.Int("leads", len(result.SearchLeads)),
		slog.Int("grounding_urls", len(result.GroundingURLs)),
	)
	return record, nil
}

func (s *Service) generate(ctx context.Context, req ai.Request) (ai.Reply, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.generator.Generate(ctx, req)
	if err != nil {
		return ai.Reply{}, errors.Wrap(fmt.Errorf("%w: %w", ErrUpstream, err), "generate analysis")
	}
	return reply, nil
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[sessionID]; ok {
		return false
	}
	s.pending[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, sessionID)
}
