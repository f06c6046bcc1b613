package bus

import (
	"context"

	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/capture"
	"github.com/vesper-voice/vesper/internal/core"
)

// ContactsResponse answers FETCH_CONTACTS. Status is "success" for a fresh
// fetch, "success_from_cache" when the live fetch failed but a snapshot was
// available, and "error" otherwise.
type ContactsResponse struct {
	Status   string         `json:"status"`
	Contacts []core.Contact `json:"contacts"`
	Message  string         `json:"message,omitempty"`
}

// ExtractResponse answers EXTRACT_CONTACT_INFO.
type ExtractResponse struct {
	Error string                   `json:"error,omitempty"`
	Data  *core.RecipientCandidate `json:"data,omitempty"`
}

// Handlers binds the bus message types to the domain services.
type Handlers struct {
	pipeline  *core.PipelineService
	directory *core.DirectoryService
	session   *capture.Session
	logger    *zap.Logger
}

// NewHandlers creates the handler set. session may be nil when the broker
// does not drive voice capture itself.
func NewHandlers(
	pipeline *core.PipelineService,
	directory *core.DirectoryService,
	session *capture.Session,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		pipeline:  pipeline,
		directory: directory,
		session:   session,
		logger:    logger,
	}
}

// RegisterAll installs every handler on the dispatcher.
func (h *Handlers) RegisterAll(d *Dispatcher) {
	d.Register(TypeFetchContacts, h.FetchContacts)
	d.Register(TypeTranscriptionResult, h.TranscriptionResult)
	d.Register(TypeExtractContactInfo, h.ExtractContactInfo)
	d.Register(TypeStartVoiceRecognition, h.StartVoiceRecognition)
	d.Register(TypeStopVoiceRecognition, h.StopVoiceRecognition)
}

// FetchContacts refreshes the directory, falling back to the cached
// snapshot when the live fetch fails.
func (h *Handlers) FetchContacts(ctx context.Context, msg Message) interface{} {
	contacts, err := h.directory.FetchAll(ctx)
	if err == nil {
		return ContactsResponse{Status: "success", Contacts: contacts}
	}

	h.logger.Warn("Live contact fetch failed, trying cache", zap.Error(err))
	cached := h.directory.GetCached(ctx)
	if len(cached) > 0 {
		return ContactsResponse{
			Status:   "success_from_cache",
			Contacts: cached,
			Message:  err.Error(),
		}
	}
	return ContactsResponse{
		Status:   "error",
		Contacts: []core.Contact{},
		Message:  err.Error(),
	}
}

// TranscriptionResult feeds a speech-recognition result through the
// pipeline. Interim transcripts are acknowledged without processing.
func (h *Handlers) TranscriptionResult(ctx context.Context, msg Message) interface{} {
	result := h.pipeline.ProcessTranscript(ctx, core.Transcript{
		Text:    msg.Transcript,
		IsFinal: msg.IsFinal,
	})
	if result == nil {
		return StatusResponse{Status: "interim_ignored"}
	}
	return result
}

// ExtractContactInfo runs normalization only and returns the recipient
// guess in the original {error, data} shape.
func (h *Handlers) ExtractContactInfo(ctx context.Context, msg Message) interface{} {
	norm := h.pipeline.Extract(ctx, msg.Text)
	if norm.Err != "" {
		return ExtractResponse{Error: norm.Err}
	}
	recipient := norm.Recipient
	return ExtractResponse{Data: &recipient}
}

// StartVoiceRecognition starts the capture session.
func (h *Handlers) StartVoiceRecognition(ctx context.Context, msg Message) interface{} {
	if h.session == nil {
		return StatusResponse{Status: "error", Message: "voice capture not available"}
	}
	if err := h.session.Start(ctx); err != nil {
		return StatusResponse{Status: "error", Message: err.Error()}
	}
	return StatusResponse{Status: "success", Message: h.session.State().String()}
}

// StopVoiceRecognition stops the capture session.
func (h *Handlers) StopVoiceRecognition(ctx context.Context, msg Message) interface{} {
	if h.session == nil {
		return StatusResponse{Status: "error", Message: "voice capture not available"}
	}
	if err := h.session.Stop(); err != nil {
		return StatusResponse{Status: "error", Message: err.Error()}
	}
	return StatusResponse{Status: "success", Message: h.session.State().String()}
}
