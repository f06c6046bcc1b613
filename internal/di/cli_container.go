package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/vesper-voice/vesper/internal/adapters/cache"
	"github.com/vesper-voice/vesper/internal/adapters/contactfile"
	"github.com/vesper-voice/vesper/internal/config"
	"github.com/vesper-voice/vesper/internal/core"
	"github.com/vesper-voice/vesper/internal/extract"
	"github.com/vesper-voice/vesper/internal/factory"
	"github.com/vesper-voice/vesper/internal/logging"
	"github.com/vesper-voice/vesper/internal/phonetic"
	"github.com/vesper-voice/vesper/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// LLM provider flags
	Provider          string
	MaxTokens         int
	Temperature       float64
	TopP              float64
	MaxTranscriptSize int

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	OpenAIModelName string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Resolver flags
	PhoneticFallback  bool
	PhoneticThreshold float64

	// Input flags
	ContactsFile string
	Transcript   string
	InputFile    string
	Verbose      bool
	JSONLog      bool
	ConfigFile   string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// LLM provider flags
	flag.StringVar(&flags.Provider, "provider", "openai", "LLM provider (openai, gemini, bedrock)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	flag.IntVar(&flags.MaxTranscriptSize, "max-transcript-size", 4096, "Maximum transcript size to send to LLM")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Base URL override for OpenAI-compatible endpoints")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Resolver flags
	flag.BoolVar(&flags.PhoneticFallback, "phonetic", true, "Enable phonetic retrieval fallback")
	flag.Float64Var(&flags.PhoneticThreshold, "phonetic-threshold", 0.8, "Jaro-Winkler threshold for phonetic matches")

	// Input flags
	flag.StringVar(&flags.ContactsFile, "contacts", "", "Path to a JSON contact directory file")
	flag.StringVar(&flags.Transcript, "transcript", "", "Transcript text (use stdin if not specified)")
	flag.StringVar(&flags.InputFile, "file", "", "Input transcript file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register normalizer
	if err := container.Provide(factory.NewNormalizerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.NormalizerFactory) (core.Normalizer, error) {
		return f.CreateNormalizer()
	}); err != nil {
		return nil, err
	}

	// Register file-backed contact source with an in-memory cache
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) core.ContactSource {
		return contactfile.NewSource(flags.ContactsFile, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(logger *zap.Logger) core.ContactCache {
		return cache.NewMemoryCache(logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDirectoryService); err != nil {
		return nil, err
	}

	// Register phonetic matcher
	if err := container.Provide(func(cfg *config.Config) core.PhoneticMatcher {
		resolverCfg := cfg.GetResolver()
		if !resolverCfg.PhoneticFallback {
			return nil
		}
		return phonetic.New(phonetic.WithThreshold(resolverCfg.PhoneticThreshold))
	}); err != nil {
		return nil, err
	}

	// Register resolver, extractor and pipeline
	if err := container.Provide(core.NewContactResolver); err != nil {
		return nil, err
	}
	if err := container.Provide(func() core.Extractor {
		return extract.New()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewPipelineService); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set LLM provider
	v.Set("llm.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.base_url", flags.OpenAIBaseURL)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_transcript_size", flags.MaxTranscriptSize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_transcript_size", flags.MaxTranscriptSize)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_transcript_size", flags.MaxTranscriptSize)
	}

	// Set resolver configuration
	v.Set("resolver.phonetic_fallback", flags.PhoneticFallback)
	v.Set("resolver.phonetic_threshold", flags.PhoneticThreshold)

	return config.NewFromViper(v)
}
