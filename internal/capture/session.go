// Package capture owns the voice recognition session lifecycle. The
// session is an explicit state machine so callers cannot observe a
// half-started or half-stopped recognizer.
package capture

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
)

// State is the lifecycle state of a capture session.
type State int

const (
	// StateIdle means no recognition is running and none has been stopped.
	StateIdle State = iota
	// StateListening means the recognizer is running.
	StateListening
	// StateStopped means the last recognition run was stopped by the user.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ErrAlreadyListening is returned by Start when a run is in progress.
var ErrAlreadyListening = errors.New("recognition already in progress")

// ErrNotListening is returned by Stop when no run is in progress.
var ErrNotListening = errors.New("no recognition in progress")

// Event is a single recognizer emission. Err is set when recognition
// failed; the transcript is then meaningless.
type Event struct {
	Transcript core.Transcript
	Err        error
}

// Recognizer is the external speech-to-text collaborator.
type Recognizer interface {
	// Start begins a recognition run and returns the event stream. The
	// stream is closed when the run ends.
	Start(ctx context.Context) (<-chan Event, error)
	// Stop ends the current run; the event stream closes afterwards.
	Stop() error
}

// Session drives a Recognizer and forwards final transcripts through the
// pipeline. Results arrive on the Results channel.
type Session struct {
	mu         sync.Mutex
	state      State
	generation int
	cancel     context.CancelFunc

	recognizer Recognizer
	pipeline   *core.PipelineService
	logger     *zap.Logger
	results    chan *core.PipelineResult
}

// NewSession creates an idle capture session.
func NewSession(recognizer Recognizer, pipeline *core.PipelineService, logger *zap.Logger) *Session {
	return &Session{
		recognizer: recognizer,
		pipeline:   pipeline,
		logger:     logger,
		results:    make(chan *core.PipelineResult, 16),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Results delivers pipeline output for final transcripts captured while
// listening. Results from a run that was stopped are not delivered.
func (s *Session) Results() <-chan *core.PipelineResult {
	return s.results
}

// Start begins a recognition run. Starting while listening is an error;
// starting from Idle or Stopped begins a fresh run.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateListening {
		s.mu.Unlock()
		return ErrAlreadyListening
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.generation++
	generation := s.generation
	s.cancel = cancel
	s.mu.Unlock()

	events, err := s.recognizer.Start(runCtx)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.state = StateListening
	s.mu.Unlock()
	s.logger.Info("Voice recognition started", zap.Int("generation", generation))

	go s.consume(runCtx, generation, events)
	return nil
}

// Stop ends the current recognition run. Events still in flight from the
// stopped run are discarded.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateListening {
		s.mu.Unlock()
		return ErrNotListening
	}
	s.state = StateStopped
	cancel := s.cancel
	s.mu.Unlock()

	if err := s.recognizer.Stop(); err != nil {
		s.logger.Warn("Recognizer stop failed", zap.Error(err))
	}
	if cancel != nil {
		cancel()
	}
	s.logger.Info("Voice recognition stopped")
	return nil
}

// consume drains one run's event stream. The generation check keeps
// events from a stopped or superseded run out of the results channel.
func (s *Session) consume(ctx context.Context, generation int, events <-chan Event) {
	for event := range events {
		if !s.currentRun(generation) {
			continue
		}
		if event.Err != nil {
			s.logger.Error("Recognition error", zap.Error(event.Err))
			s.mu.Lock()
			if s.generation == generation && s.state == StateListening {
				s.state = StateIdle
			}
			s.mu.Unlock()
			return
		}

		result := s.pipeline.ProcessTranscript(ctx, event.Transcript)
		if result == nil {
			continue
		}
		if !s.currentRun(generation) {
			continue
		}
		select {
		case s.results <- result:
		default:
			s.logger.Warn("Result channel full, dropping pipeline result")
		}
	}

	s.mu.Lock()
	if s.generation == generation && s.state == StateListening {
		s.state = StateIdle
	}
	s.mu.Unlock()
}

func (s *Session) currentRun(generation int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == generation && s.state == StateListening
}
