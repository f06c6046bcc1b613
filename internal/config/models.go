package config

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	ModelName         string
	MaxTokens         int
	Temperature       float32
	TopP              float32
	MaxTranscriptSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey            string
	ModelName         string
	MaxTokens         int
	Temperature       float32
	TopP              float32
	MaxTranscriptSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region            string
	ModelID           string
	MaxTokens         int
	Temperature       float32
	TopP              float32
	MaxTranscriptSize int
}

// PeopleConfig represents the configuration for the People API source
type PeopleConfig struct {
	PageSize int64
	MaxPages int
}

// ResolverConfig represents the configuration for contact resolution
type ResolverConfig struct {
	PhoneticFallback  bool
	PhoneticThreshold float64
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:            c.GetString("openai.api_key"),
		BaseURL:           c.GetString("openai.base_url"),
		ModelName:         c.GetString("openai.model_name"),
		MaxTokens:         c.GetInt("openai.max_tokens"),
		Temperature:       float32(c.GetFloat64("openai.temperature")),
		TopP:              float32(c.GetFloat64("openai.top_p")),
		MaxTranscriptSize: c.GetInt("openai.max_transcript_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:            c.GetString("gemini.api_key"),
		ModelName:         c.GetString("gemini.model_name"),
		MaxTokens:         c.GetInt("gemini.max_tokens"),
		Temperature:       float32(c.GetFloat64("gemini.temperature")),
		TopP:              float32(c.GetFloat64("gemini.top_p")),
		MaxTranscriptSize: c.GetInt("gemini.max_transcript_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:            c.GetString("bedrock.region"),
		ModelID:           c.GetString("bedrock.model_id"),
		MaxTokens:         c.GetInt("bedrock.max_tokens"),
		Temperature:       float32(c.GetFloat64("bedrock.temperature")),
		TopP:              float32(c.GetFloat64("bedrock.top_p")),
		MaxTranscriptSize: c.GetInt("bedrock.max_transcript_size"),
	}
}

// GetPeople returns the People API configuration
func (c *Config) GetPeople() PeopleConfig {
	return PeopleConfig{
		PageSize: int64(c.GetInt("people.page_size")),
		MaxPages: c.GetInt("people.max_pages"),
	}
}

// GetResolver returns the resolver configuration
func (c *Config) GetResolver() ResolverConfig {
	return ResolverConfig{
		PhoneticFallback:  c.GetBool("resolver.phonetic_fallback"),
		PhoneticThreshold: c.GetFloat64("resolver.phonetic_threshold"),
	}
}
