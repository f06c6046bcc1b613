package openai

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/utils"
)

// System instruction pinning the two-key JSON output contract.
const systemPrompt = `You format dictated email text and identify the intended recipient.
Correct the grammar, casing and punctuation of the transcript without changing its meaning.
Respond only with a JSON object containing exactly two keys:
- formattedText: string (the corrected transcript)
- recipient: object with keys name, organization, nickname, title (string or null each)

Use null for any recipient field that is not present in the transcript.
Respond only with the JSON object and nothing else.`

// One worked example establishing the exact output shape (few-shot).
const (
	exampleInput  = `send an email to my friend johnny from google and tell him ill be a bit late`
	exampleOutput = `{"formattedText":"Send an email to my friend Johnny from Google and tell him I'll be a bit late.","recipient":{"name":"Johnny","organization":"Google","nickname":"friend","title":null}}`
)

// Normalizer is an implementation of the core.Normalizer interface using
// the OpenAI chat completion API.
type Normalizer struct {
	client            *openai.Client
	modelName         string
	maxTokens         int
	temperature       float32
	topP              float32
	maxTranscriptSize int
	logger            *zap.Logger
	textProcessor     *utils.TextProcessor
}

// normalizationResponse is the structured response expected from the LLM.
// Pointer fields distinguish "present but null" from "missing"; both
// default to empty after conversion.
type normalizationResponse struct {
	FormattedText string `json:"formattedText"`
	Recipient     struct {
		Name         *string `json:"name"`
		Organization *string `json:"organization"`
		Nickname     *string `json:"nickname"`
		Title        *string `json:"title"`
	} `json:"recipient"`
}

// NewNormalizer creates a new OpenAI-backed transcript normalizer. baseURL
// overrides the API endpoint when non-empty (used for tests and
// OpenAI-compatible gateways).
func NewNormalizer(
	apiKey string,
	baseURL string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTranscriptSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Normalizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Normalizer{
		client:            openai.NewClientWithConfig(cfg),
		modelName:         modelName,
		maxTokens:         maxTokens,
		temperature:       temperature,
		topP:              topP,
		maxTranscriptSize: maxTranscriptSize,
		logger:            logger,
		textProcessor:     textProcessor,
	}
}

// Normalize corrects the transcript and extracts a recipient guess. It
// never fails outright: on any error the result echoes the input transcript
// with Err populated and an empty recipient.
func (n *Normalizer) Normalize(ctx context.Context, transcript string) *core.NormalizeResult {
	processed := n.textProcessor.ProcessText(transcript, n.maxTranscriptSize)

	req := openai.ChatCompletionRequest{
		Model: n.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: exampleInput},
			{Role: openai.ChatMessageRoleAssistant, Content: exampleOutput},
			{Role: openai.ChatMessageRoleUser, Content: processed},
		},
		MaxTokens:   n.maxTokens,
		Temperature: n.temperature,
		TopP:        n.topP,
	}

	resp, err := n.client.CreateChatCompletion(ctx, req)
	if err != nil {
		n.logger.Error("OpenAI completion failed", zap.Error(err))
		return failedResult(transcript, err.Error())
	}

	if len(resp.Choices) == 0 {
		n.logger.Error("Empty response from OpenAI")
		return failedResult(transcript, "empty response from OpenAI")
	}

	return parseNormalization(transcript, resp.Choices[0].Message.Content, n.logger)
}

// parseNormalization applies the two-stage parse policy: direct JSON parse
// first, then a retry on the first {...} block found in the raw text.
func parseNormalization(transcript, responseText string, logger *zap.Logger) *core.NormalizeResult {
	var parsed normalizationResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		jsonStr, ok := extractJSONBlock(responseText)
		if !ok {
			logger.Error("No JSON block in LLM response", zap.Error(err))
			return failedResult(transcript, "Error parsing response")
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
			logger.Error("Failed to parse LLM response as JSON", zap.Error(err))
			return failedResult(transcript, "Error parsing response")
		}
	}

	formatted := parsed.FormattedText
	if formatted == "" {
		formatted = transcript
	}

	return &core.NormalizeResult{
		FormattedText: formatted,
		Recipient: core.RecipientCandidate{
			Name:         deref(parsed.Recipient.Name),
			Organization: deref(parsed.Recipient.Organization),
			Nickname:     deref(parsed.Recipient.Nickname),
			Title:        deref(parsed.Recipient.Title),
		},
	}
}

// extractJSONBlock returns the substring from the first '{' to the last '}'
// of text, or ok false when no such block exists.
func extractJSONBlock(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start = i
			break
		}
	}
	end := -1
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == '}' {
			end = i + 1
			break
		}
	}
	if start < 0 || end <= start {
		return "", false
	}
	return text[start:end], true
}

func failedResult(transcript, errMsg string) *core.NormalizeResult {
	return &core.NormalizeResult{
		FormattedText: transcript,
		Err:           errMsg,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
