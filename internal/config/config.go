// Package config loads and validates application configuration from
// environment variables, an optional .env file, and CLI arguments.
package config

import (
	"crypto/subtle"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CLIOptions holds command-line argument overrides
type CLIOptions struct {
	Topic       string // -topic: what to write about
	ContentType string // -type: content type (blog_post, product_description, social_post, email_campaign)
	Tone        string // -tone: writing tone
	Audience    string // -audience: target audience
	Keywords    string // -keywords: comma-separated keywords to work in
	MaxWords    int    // -max-words: word budget override
	MaxAttempts int    // -attempts: retry attempt count override
	OutputPath  string // -output: write result to file instead of stdout
	Provider    string // -provider: LLM provider override
	ListTypes   bool   // -list-types: list supported content types and exit
	ShowHelp    bool   // -help: show usage
	ShowVersion bool   // -version: show version
}

// ParseCLI parses command-line arguments and returns CLIOptions
func ParseCLI() *CLIOptions {
	opts := &CLIOptions{}

	flag.StringVar(&opts.Topic, "topic", "", "Topic to generate content about (required)")
	flag.StringVar(&opts.ContentType, "type", "blog_post", "Content type: blog_post, product_description, social_post, email_campaign")
	flag.StringVar(&opts.Tone, "tone", "", "Writing tone (e.g. professional, casual, playful)")
	flag.StringVar(&opts.Audience, "audience", "", "Target audience (e.g. developers, small business owners)")
	flag.StringVar(&opts.Keywords, "keywords", "", "Comma-separated keywords to work into the content")
	flag.IntVar(&opts.MaxWords, "max-words", 0, "Word budget (0 uses the per-type default)")
	flag.IntVar(&opts.MaxAttempts, "attempts", 0, "Retry attempts per generation (0 uses RETRY_MAX_ATTEMPTS)")
	flag.StringVar(&opts.OutputPath, "output", "", "Write generated content to this file instead of stdout")
	flag.StringVar(&opts.Provider, "provider", "", "LLM provider override: anthropic, ollama, lmstudio")
	flag.BoolVar(&opts.ListTypes, "list-types", false, "List supported content types and exit")
	flag.BoolVar(&opts.ShowHelp, "help", false, "Show usage information")
	flag.BoolVar(&opts.ShowVersion, "version", false, "Show version information")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "ContentGen AI - LLM-backed content generation with resilient retries\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nExamples:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  %s -topic \"Kubernetes cost optimization\"\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s -type product_description -topic \"wireless earbuds\" -tone playful\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s -type social_post -topic \"v2.0 launch\" -keywords \"release,launch\" -output post.json\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "  %s -list-types\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment variables can be set in .env file or exported directly.\n")
		_, _ = fmt.Fprintf(os.Stderr, "CLI arguments override environment variables.\n")
	}

	flag.Parse()

	return opts
}

// PrintUsage prints the command-line usage information
func PrintUsage() {
	flag.Usage()
}

// Config holds all application configuration
type Config struct {
	// LLM Provider Selection
	LLMProvider string // "anthropic" (default), "ollama" or "lmstudio"

	// Anthropic/Claude Settings (used when LLMProvider = "anthropic")
	AnthropicAPIKey string
	ClaudeModel     string

	// Ollama Settings (used when LLMProvider = "ollama")
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3.3:latest"

	// LM Studio Settings (used when LLMProvider = "lmstudio")
	LMStudioBaseURL string // e.g., "http://localhost:1234"
	LMStudioModel   string // e.g., "local-model" or specific model name

	// Retry policy
	RetryMaxAttempts     int
	RetryBaseDelayMS     int
	RetryMaxDelayMS      int
	RetryExponentialBase float64
	RetryJitter          bool
	RetryLogging         bool

	// Client-side rate limiting
	RateLimitPerMinute int // 0 disables limiting

	// Telegram (optional)
	TelegramBotToken       string
	TelegramArchiveChannel int64
	TelegramAlertsChannel  int64

	// Application
	LogLevel string

	// Proxy
	HTTPProxy  string
	HTTPSProxy string

	// AI Settings
	AITimeoutSeconds int
	AIMaxTokens      int
}

// Load loads configuration from .env file and environment variables
// Priority: .env file > OS environment variables
// For CLI overrides, use LoadWithCLI instead
func Load() (*Config, error) {
	return LoadWithCLI(nil)
}

// LoadWithCLI loads configuration with CLI argument overrides
// Priority: CLI args > .env file > OS environment variables
func LoadWithCLI(cli *CLIOptions) (*Config, error) {
	// Set up viper first to read OS environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// godotenv.Load() sets OS env vars from .env, which viper will then read
	_ = godotenv.Load()

	setDefaults()

	config := &Config{
		// LLM Provider settings
		LLMProvider:     viper.GetString("LLM_PROVIDER"),
		AnthropicAPIKey: viper.GetString("ANTHROPIC_API_KEY"),
		ClaudeModel:     viper.GetString("CLAUDE_MODEL"),
		OllamaBaseURL:   viper.GetString("OLLAMA_BASE_URL"),
		OllamaModel:     viper.GetString("OLLAMA_MODEL"),
		LMStudioBaseURL: viper.GetString("LMSTUDIO_BASE_URL"),
		LMStudioModel:   viper.GetString("LMSTUDIO_MODEL"),

		// Retry policy
		RetryMaxAttempts:     viper.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryBaseDelayMS:     viper.GetInt("RETRY_BASE_DELAY_MS"),
		RetryMaxDelayMS:      viper.GetInt("RETRY_MAX_DELAY_MS"),
		RetryExponentialBase: viper.GetFloat64("RETRY_EXPONENTIAL_BASE"),
		RetryJitter:          viper.GetBool("RETRY_JITTER"),
		RetryLogging:         viper.GetBool("RETRY_LOGGING"),

		// Rate limiting
		RateLimitPerMinute: viper.GetInt("RATE_LIMIT_PER_MINUTE"),

		// Telegram settings
		TelegramBotToken:       viper.GetString("TELEGRAM_BOT_TOKEN"),
		TelegramArchiveChannel: viper.GetInt64("TELEGRAM_CHANNEL_ARCHIVE_ID"),
		TelegramAlertsChannel:  viper.GetInt64("TELEGRAM_CHANNEL_ALERTS_ID"),

		// Application settings
		LogLevel:         viper.GetString("LOG_LEVEL"),
		HTTPProxy:        viper.GetString("HTTP_PROXY"),
		HTTPSProxy:       viper.GetString("HTTPS_PROXY"),
		AITimeoutSeconds: viper.GetInt("AI_TIMEOUT_SECONDS"),
		AIMaxTokens:      viper.GetInt("AI_MAX_TOKENS"),
	}

	// Apply CLI overrides (highest priority)
	if cli != nil {
		if cli.Provider != "" {
			config.LLMProvider = cli.Provider
		}
		if cli.MaxAttempts > 0 {
			config.RetryMaxAttempts = cli.MaxAttempts
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// LLM Provider defaults
	viper.SetDefault("LLM_PROVIDER", "anthropic")
	viper.SetDefault("CLAUDE_MODEL", "claude-sonnet-4-5-20250929")
	viper.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	viper.SetDefault("OLLAMA_MODEL", "llama3.3:latest")
	viper.SetDefault("LMSTUDIO_BASE_URL", "http://localhost:1234")
	viper.SetDefault("LMSTUDIO_MODEL", "local-model")

	// Retry defaults mirror retry.DefaultPolicy
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BASE_DELAY_MS", 1000)
	viper.SetDefault("RETRY_MAX_DELAY_MS", 30000)
	viper.SetDefault("RETRY_EXPONENTIAL_BASE", 2.0)
	viper.SetDefault("RETRY_JITTER", true)
	viper.SetDefault("RETRY_LOGGING", true)

	viper.SetDefault("RATE_LIMIT_PER_MINUTE", 10)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("AI_TIMEOUT_SECONDS", 120)
	viper.SetDefault("AI_MAX_TOKENS", 8000)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateLLMProvider(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}

	// Telegram is optional, but a configured token must be coherent
	if c.TelegramBotToken != "" {
		telegramTokenRegex := regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)
		if !telegramTokenRegex.MatchString(c.TelegramBotToken) {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN has invalid format (expected: 'number:token')")
		}
		if c.TelegramArchiveChannel == 0 {
			return fmt.Errorf("TELEGRAM_CHANNEL_ARCHIVE_ID is required when TELEGRAM_BOT_TOKEN is set")
		}
		if c.TelegramArchiveChannel > -100 {
			return fmt.Errorf("TELEGRAM_CHANNEL_ARCHIVE_ID must be a supergroup/channel ID (starts with -100)")
		}
		if c.TelegramAlertsChannel != 0 && c.TelegramAlertsChannel > -100 {
			return fmt.Errorf("TELEGRAM_CHANNEL_ALERTS_ID must be a supergroup/channel ID (starts with -100)")
		}
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error")
	}

	// Validate AI settings
	if c.AITimeoutSeconds < 30 || c.AITimeoutSeconds > 600 {
		return fmt.Errorf("AI_TIMEOUT_SECONDS must be between 30 and 600")
	}
	if c.AIMaxTokens < 1000 || c.AIMaxTokens > 16000 {
		return fmt.Errorf("AI_MAX_TOKENS must be between 1000 and 16000")
	}

	return nil
}

// validateRetry validates retry policy configuration
func (c *Config) validateRetry() error {
	if c.RetryMaxAttempts < 1 || c.RetryMaxAttempts > 10 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be between 1 and 10")
	}
	if c.RetryBaseDelayMS < 0 {
		return fmt.Errorf("RETRY_BASE_DELAY_MS must not be negative")
	}
	if c.RetryMaxDelayMS < c.RetryBaseDelayMS {
		return fmt.Errorf("RETRY_MAX_DELAY_MS must be at least RETRY_BASE_DELAY_MS")
	}
	if c.RetryExponentialBase <= 1.0 {
		return fmt.Errorf("RETRY_EXPONENTIAL_BASE must be greater than 1.0")
	}
	return nil
}

// RetryBaseDelay returns the retry base delay as a duration
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

// RetryMaxDelay returns the retry delay cap as a duration
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.RetryMaxDelayMS) * time.Millisecond
}

// HasTelegram returns true if Telegram notifications are configured
func (c *Config) HasTelegram() bool {
	return c.TelegramBotToken != ""
}

// HasAlertsChannel returns true if alerts channel is configured
func (c *Config) HasAlertsChannel() bool {
	return c.TelegramAlertsChannel != 0
}

// GetProxyURL returns the appropriate proxy URL for HTTP/HTTPS requests
func (c *Config) GetProxyURL(isHTTPS bool) string {
	if isHTTPS && c.HTTPSProxy != "" {
		return c.HTTPSProxy
	}
	if c.HTTPProxy != "" {
		return c.HTTPProxy
	}
	return ""
}

// constantTimePrefixMatch checks if s starts with prefix using constant-time comparison.
// This prevents timing attacks that could leak information about the string content.
// Returns false if s is shorter than prefix.
func constantTimePrefixMatch(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s[:len(prefix)]), []byte(prefix)) == 1
}

// validateLLMProvider validates LLM provider configuration
func (c *Config) validateLLMProvider() error {
	validProviders := map[string]bool{
		"anthropic": true,
		"ollama":    true,
		"lmstudio":  true,
	}

	if !validProviders[c.LLMProvider] {
		return fmt.Errorf("LLM_PROVIDER must be 'anthropic', 'ollama', or 'lmstudio' (got: %s)", c.LLMProvider)
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=anthropic")
		}
		// Constant-time comparison keeps key content out of timing side channels
		if !constantTimePrefixMatch(c.AnthropicAPIKey, "sk-ant-") {
			return fmt.Errorf("ANTHROPIC_API_KEY must start with 'sk-ant-'")
		}
		if c.ClaudeModel == "" {
			return fmt.Errorf("CLAUDE_MODEL is required when LLM_PROVIDER=anthropic")
		}

	case "ollama":
		if c.OllamaModel == "" {
			return fmt.Errorf("OLLAMA_MODEL is required when LLM_PROVIDER=ollama")
		}
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL is required when LLM_PROVIDER=ollama")
		}
		if !strings.HasPrefix(c.OllamaBaseURL, "http://") && !strings.HasPrefix(c.OllamaBaseURL, "https://") {
			return fmt.Errorf("OLLAMA_BASE_URL must start with 'http://' or 'https://'")
		}

	case "lmstudio":
		if c.LMStudioBaseURL == "" {
			return fmt.Errorf("LMSTUDIO_BASE_URL is required when LLM_PROVIDER=lmstudio")
		}
		if !strings.HasPrefix(c.LMStudioBaseURL, "http://") && !strings.HasPrefix(c.LMStudioBaseURL, "https://") {
			return fmt.Errorf("LMSTUDIO_BASE_URL must start with 'http://' or 'https://'")
		}
		// Model is optional for LM Studio (defaults to "local-model")
	}

	return nil
}

// IsOllama returns true if the LLM provider is Ollama
func (c *Config) IsOllama() bool {
	return c.LLMProvider == "ollama"
}

// IsAnthropic returns true if the LLM provider is Anthropic
func (c *Config) IsAnthropic() bool {
	return c.LLMProvider == "anthropic"
}

// IsLMStudio returns true if the LLM provider is LM Studio
func (c *Config) IsLMStudio() bool {
	return c.LLMProvider == "lmstudio"
}

// GetLLMModel returns the model name for the current LLM provider
func (c *Config) GetLLMModel() string {
	switch c.LLMProvider {
	case "ollama":
		return c.OllamaModel
	case "lmstudio":
		return c.LMStudioModel
	default:
		return c.ClaudeModel
	}
}
