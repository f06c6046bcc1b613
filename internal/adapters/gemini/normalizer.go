package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/utils"
)

// Normalizer is an implementation of the core.Normalizer interface using
// Google Gemini.
type Normalizer struct {
	client            *genai.Client
	model             *genai.GenerativeModel
	modelName         string
	maxTranscriptSize int
	logger            *zap.Logger
	textProcessor     *utils.TextProcessor
	promptFormat      string
}

type normalizationResponse struct {
	FormattedText string `json:"formattedText"`
	Recipient     struct {
		Name         *string `json:"name"`
		Organization *string `json:"organization"`
		Nickname     *string `json:"nickname"`
		Title        *string `json:"title"`
	} `json:"recipient"`
}

// NewNormalizer creates a new Gemini-backed transcript normalizer.
func NewNormalizer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTranscriptSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Normalizer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Normalizer{
		client:            client,
		model:             model,
		modelName:         modelName,
		maxTranscriptSize: maxTranscriptSize,
		logger:            logger,
		textProcessor:     textProcessor,
		promptFormat: `You format dictated email text and identify the intended recipient.
Correct the grammar, casing and punctuation of the transcript without changing its meaning.
Respond with a JSON object containing exactly two keys:
- formattedText: string (the corrected transcript)
- recipient: object with keys name, organization, nickname, title (string or null each)

Example transcript:
send an email to my friend johnny from google and tell him ill be a bit late

Example response:
{"formattedText":"Send an email to my friend Johnny from Google and tell him I'll be a bit late.","recipient":{"name":"Johnny","organization":"Google","nickname":"friend","title":null}}

Transcript:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client.
func (n *Normalizer) Close() error {
	if n.client != nil {
		return n.client.Close()
	}
	return nil
}

// Normalize corrects the transcript and extracts a recipient guess. It
// never fails outright: on any error the result echoes the input transcript
// with Err populated and an empty recipient.
func (n *Normalizer) Normalize(ctx context.Context, transcript string) *core.NormalizeResult {
	processed := n.textProcessor.ProcessText(transcript, n.maxTranscriptSize)
	prompt := fmt.Sprintf(n.promptFormat, processed)

	resp, err := n.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		n.logger.Error("Gemini completion failed", zap.Error(err))
		return failedResult(transcript, err.Error())
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		n.logger.Error("Empty response from Gemini")
		return failedResult(transcript, "empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return parseNormalization(transcript, responseText, n.logger)
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
