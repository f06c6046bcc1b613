package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/bedrock"
	"github.com/vesper-voice/vesper/internal/adapters/gemini"
	"github.com/vesper-voice/vesper/internal/adapters/openai"
	"github.com/vesper-voice/vesper/internal/config"
	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/utils"
)

// NormalizerFactory creates transcript normalizers
type NormalizerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *NormalizerFactory {
	return &NormalizerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateNormalizer creates a new normalizer based on the configuration
func (f *NormalizerFactory) CreateNormalizer() (core.Normalizer, error) {
	llmConfig := f.cfg.GetLLM()

	switch llmConfig.Provider {
	case "openai":
		return f.createOpenAI(), nil
	case "gemini":
		return f.createGemini()
	case "bedrock":
		return f.createBedrock()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", llmConfig.Provider)
	}
}

func (f *NormalizerFactory) createOpenAI() core.Normalizer {
	openaiCfg := f.cfg.GetOpenAI()
	return openai.NewNormalizer(
		openaiCfg.APIKey,
		openaiCfg.BaseURL,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxTranscriptSize,
		f.logger,
		f.textProcessor,
	)
}

func (f *NormalizerFactory) createGemini() (core.Normalizer, error) {
	geminiCfg := f.cfg.GetGemini()
	return gemini.NewNormalizer(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxTranscriptSize,
		f.logger,
		f.textProcessor,
	)
}

func (f *NormalizerFactory) createBedrock() (core.Normalizer, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	bedrockClient := bedrockruntime.NewFromConfig(awsCfg)
	return bedrock.NewNormalizer(
		bedrockClient,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.MaxTranscriptSize,
		f.logger,
		f.textProcessor,
	), nil
}
