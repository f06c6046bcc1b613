package core

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Extractor derives a recipient candidate from plain transcript text. It is
// the heuristic fallback for when the normalizer produced no usable
// recipient.
type Extractor interface {
	ExtractFromText(text string) RecipientCandidate
}

// PipelineService runs the full transcript-to-contacts pipeline: normalize
// the transcript, fall back to heuristic extraction when the normalizer
// found no recipient, then resolve the candidate against the directory.
//
// Within one invocation the stages are strictly sequential. Invocations are
// independent of each other: no cross-invocation ordering is enforced.
type PipelineService struct {
	normalizer Normalizer
	resolver   *ContactResolver
	extractor  Extractor
	logger     *zap.Logger
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(
	normalizer Normalizer,
	resolver *ContactResolver,
	extractor Extractor,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		normalizer: normalizer,
		resolver:   resolver,
		extractor:  extractor,
		logger:     logger,
	}
}

// ProcessTranscript processes one speech-recognition result. Interim
// transcripts are discarded and yield nil.
//
// On normalization failure the original transcript text is carried through
// verbatim and the heuristic extractor still runs, so a dead LLM service
// degrades to pattern matching rather than to nothing.
func (p *PipelineService) ProcessTranscript(ctx context.Context, t Transcript) *PipelineResult {
	if !t.IsFinal {
		p.logger.Debug("Discarding interim transcript", zap.Int("length", len(t.Text)))
		return nil
	}

	norm := p.normalizer.Normalize(ctx, t.Text)
	if norm.Err != "" {
		p.logger.Warn("Transcript normalization failed", zap.String("error", norm.Err))
	}

	// The text shown to the user: formatted when normalization worked,
	// the raw transcript otherwise.
	text := norm.FormattedText
	if norm.Err != "" {
		text = t.Text
	}

	recipient := norm.Recipient
	if recipient.IsEmpty() {
		recipient = p.extractor.ExtractFromText(text)
		if !recipient.IsEmpty() {
			p.logger.Debug("Recipient recovered by heuristic extraction",
				zap.String("name", recipient.Name),
				zap.String("organization", recipient.Organization))
		}
	}

	resolution := ResolveResult{Success: true, Contacts: []ScoredContact{}}
	if !recipient.IsEmpty() {
		resolution = p.resolver.Resolve(ctx, recipient)
	}

	return &PipelineResult{
		OriginalText:  t.Text,
		FormattedText: text,
		Recipient:     recipient,
		Resolution:    resolution,
		Err:           norm.Err,
		ProcessedAt:   time.Now(),
	}
}

// Extract runs normalization only, for callers that want the recipient
// guess without touching the directory.
func (p *PipelineService) Extract(ctx context.Context, transcript string) *NormalizeResult {
	return p.normalizer.Normalize(ctx, transcript)
}
