package testhelpers

import (
	"context"
	"github.com/myrjola/sentinels/internal/ai"
	"sync"
)

// StubGenerator is an in-process ai.Generator returning a canned reply.
type StubGenerator struct {
	mu       sync.Mutex
	reply    ai.Reply
	err      error
	requests []ai.Request

	// Release, when non-nil, blocks Generate until it is closed or the context is done. Started receives a value
	// once Generate is blocked.
	Release chan struct{}
	Started chan struct{}
}

func NewStubGenerator(text string) *StubGenerator {
	return &StubGenerator{reply: ai.Reply{Text: text}}
}

// SetGrounding attaches raw grounding metadata to the reply.
func (s *StubGenerator) SetGrounding(grounding []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply.Grounding = grounding
}

// FailWith makes subsequent calls return err.
func (s *StubGenerator) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Requests returns the requests received so far.
func (s *StubGenerator) Requests() []ai.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ai.Request(nil), s.requests...)
}

func (s *StubGenerator) Generate(ctx context.Context, req ai.Request) (ai.Reply, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply, err := s.reply, s.err
	s.mu.Unlock()

	if s.Release != nil {
		if s.Started != nil {
			s.Started <- struct{}{}
		}
		select {
		case <-s.Release:
		case <-ctx.Done():
			return ai.Reply{}, ctx.Err()
		}
	}
	if err != nil {
		return ai.Reply{}, err
	}
	return reply, nil
}
