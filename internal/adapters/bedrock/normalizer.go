package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/utils"
)

// Normalizer is an implementation of the core.Normalizer interface using
// Amazon Bedrock.
type Normalizer struct {
	client            *bedrockruntime.Client
	modelID           string
	maxTokens         int
	temperature       float32
	topP              float32
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

// NewNormalizer creates a new Bedrock-backed transcript normalizer.
func NewNormalizer(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTranscriptSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Normalizer {
	return &Normalizer{
		client:            client,
		modelID:           modelID,
		maxTokens:         maxTokens,
		temperature:       temperature,
		topP:              topP,
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
	}
}

// Normalize corrects the transcript and extracts a recipient guess. It
// never fails outright: on any error the result echoes the input transcript
// with Err populated and an empty recipient.
func (n *Normalizer) Normalize(ctx context.Context, transcript string) *core.NormalizeResult {
	processed := n.textProcessor.ProcessText(transcript, n.maxTranscriptSize)
	prompt := fmt.Sprintf(n.promptFormat, processed)

	// Create the request based on the model
	var payload []byte
	var err error

	if n.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": n.maxTokens,
			"temperature":          n.temperature,
			"top_p":                n.topP,
		})
	} else if n.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": n.maxTokens,
				"temperature":   n.temperature,
				"topP":          n.topP,
			},
		})
	} else {
		// Default to a generic format
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  n.maxTokens,
			"temperature": n.temperature,
			"top_p":       n.topP,
		})
	}

	if err != nil {
		n.logger.Error("Failed to marshal Bedrock payload", zap.Error(err))
		return failedResult(transcript, err.Error())
	}

	resp, err := n.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &n.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		n.logger.Error("Failed to invoke Bedrock model", zap.Error(err))
		return failedResult(transcript, err.Error())
	}

	responseText, err := n.responseText(resp.Body)
	if err != nil {
		n.logger.Error("Failed to decode Bedrock response", zap.Error(err))
		return failedResult(transcript, err.Error())
	}

	return parseNormalization(transcript, responseText, n.logger)
}

// responseText extracts the raw completion text from a model response body.
// The body shape differs per model family.
func (n *Normalizer) responseText(body []byte) (string, error) {
	if n.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if n.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	// Try a generic approach
	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	if genericResp.Output != "" {
		return genericResp.Output, nil
	}
	if genericResp.Text != "" {
		return genericResp.Text, nil
	}
	if genericResp.Response != "" {
		return genericResp.Response, nil
	}
	return string(body), nil
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (n *Normalizer) isAnthropicModel() bool {
	return strings.HasPrefix(n.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (n *Normalizer) isAmazonTitanModel() bool {
	return strings.HasPrefix(n.modelID, "amazon.titan")
}
