package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olegiv/contentgen-ai-go/internal/ai"
	"github.com/olegiv/contentgen-ai-go/internal/config"
	"github.com/olegiv/contentgen-ai-go/internal/content"
	internalerrors "github.com/olegiv/contentgen-ai-go/internal/errors"
	"github.com/olegiv/contentgen-ai-go/internal/logging"
	"github.com/olegiv/contentgen-ai-go/internal/metrics"
	"github.com/olegiv/contentgen-ai-go/internal/notification"
	"github.com/olegiv/contentgen-ai-go/internal/ratelimit"
	"github.com/olegiv/contentgen-ai-go/internal/retry"
	"github.com/olegiv/contentgen-ai-go/pkg/logger"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

// Version information - injected at build time via ldflags
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Parse CLI arguments first
	cli := config.ParseCLI()

	if cli.ShowHelp {
		config.PrintUsage()
		return exitSuccess
	}

	if cli.ShowVersion {
		fmt.Printf("contentgen %s\n", version)
		if gitCommit != "unknown" {
			fmt.Printf("  commit: %s\n", gitCommit)
		}
		if buildTime != "unknown" {
			fmt.Printf("  built:  %s\n", buildTime)
		}
		return exitSuccess
	}

	if cli.ListTypes {
		fmt.Println("Supported content types:")
		for _, t := range content.ValidTypes() {
			fmt.Printf("  %s\n", t)
		}
		return exitSuccess
	}

	if cli.Topic == "" {
		_, _ = fmt.Fprintln(os.Stderr, "Error: -topic is required")
		config.PrintUsage()
		return exitFailure
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Load configuration with CLI overrides
	cfg, err := config.LoadWithCLI(cli)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitFailure
	}

	// Initialize logger with credential sanitization
	baseLog := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		LogDir:     "./logs",
		Filename:   "generator.log",
		MaxSizeMB:  10,
		MaxBackups: 5,
		Console:    true,
	})
	log := logging.NewSecure(baseLog)
	defer func() {
		if err := log.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to close logger: %v\n", err)
		}
	}()

	log.Info().Str("provider", cfg.LLMProvider).Msg("Starting ContentGen AI")
	log.Info().Str("model", cfg.GetLLMModel()).Msg("Configured model")
	if cfg.IsAnthropic() {
		log.Debug().Str("api_key", internalerrors.MaskCredential(cfg.AnthropicAPIKey)).Msg("Using Anthropic API key")
	}

	if err := runGenerator(ctx, cfg, cli, baseLog, log); err != nil {
		log.Error().Err(err).Msg("Generation failed")
		return exitFailure
	}

	log.Info().Msg("Generation completed successfully")
	return exitSuccess
}

func runGenerator(ctx context.Context, cfg *config.Config, cli *config.CLIOptions, baseLog *logger.Logger, log *logging.SecureLogger) error {
	startTime := time.Now()

	log.Info().Msg("Initializing components...")

	// 1. LLM provider
	provider, err := createProvider(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	modelInfo := provider.GetModelInfo()
	log.Info().
		Str("provider", provider.GetProviderName()).
		Interface("model", modelInfo["model"]).
		Msg("Provider initialized")

	// 2. Retry executor with logging and metrics observers
	policy := retry.Policy{
		MaxAttempts:     cfg.RetryMaxAttempts,
		BaseDelay:       cfg.RetryBaseDelay(),
		MaxDelay:        cfg.RetryMaxDelay(),
		ExponentialBase: cfg.RetryExponentialBase,
		Jitter:          cfg.RetryJitter,
		Logging:         cfg.RetryLogging,
	}
	executor := retry.NewExecutor(policy,
		retry.WithLogger(baseLog.Logger),
		retry.WithObserver(metrics.NewRecorder()),
	)

	// 3. Client-side rate limiter
	limiter := ratelimit.New(cfg.RateLimitPerMinute, time.Minute)

	// 4. Generator service
	generator, err := ai.NewGenerator(provider, executor, content.DefaultRegistry(), limiter)
	if err != nil {
		return fmt.Errorf("failed to initialize generator: %w", err)
	}

	// 5. Optional Telegram reporting
	var telegramClient *notification.TelegramClient
	if cfg.HasTelegram() {
		telegramClient, err = notification.NewTelegramClient(
			cfg.TelegramBotToken,
			cfg.TelegramArchiveChannel,
			cfg.TelegramAlertsChannel,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram client: %w", err)
		}
		defer func(telegramClient *notification.TelegramClient) {
			if err := telegramClient.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close Telegram client")
			}
		}(telegramClient)

		botInfo := telegramClient.GetBotInfo()
		log.Info().
			Str("username", botInfo["username"].(string)).
			Msg("Telegram bot initialized")
	}

	// Build the generation request from CLI arguments
	req := buildRequest(cli)
	log.Info().
		Str("request_id", req.ID).
		Str("content_type", string(req.Type)).
		Str("topic", req.Topic).
		Msg("Generating content...")

	gen, stats, err := generator.GenerateContent(ctx, req)
	if err != nil {
		if telegramClient != nil {
			if alertErr := telegramClient.SendFailureAlert(req, err); alertErr != nil {
				log.Warn().Err(alertErr).Msg("Failed to send failure alert")
			}
		}
		return err
	}

	log.Info().
		Str("title", gen.Title).
		Int("words", gen.WordCount()).
		Int("tags", len(gen.Tags)).
		Float64("cost_usd", stats.CostUSD).
		Float64("duration_s", stats.DurationSeconds).
		Msg("Content generated")

	log.Debug().
		Int("input_tokens", stats.InputTokens).
		Int("output_tokens", stats.OutputTokens).
		Msg("Token usage details")

	metrics.RecordProviderUsage(stats.Provider, stats.InputTokens, stats.OutputTokens, stats.CostUSD)

	if err := writeOutput(cli.OutputPath, req, gen); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if telegramClient != nil {
		log.Info().Msg("Sending Telegram report...")
		if err := telegramClient.SendGenerationReport(req, gen, stats); err != nil {
			// Delivery failure should not discard generated content
			log.Warn().Err(err).Msg("Failed to send Telegram report")
		}
	}

	totalDuration := time.Since(startTime)
	log.Info().
		Float64("total_duration_s", totalDuration.Seconds()).
		Msg("All operations completed successfully")

	return nil
}

// createProvider creates the LLM provider selected by configuration
func createProvider(cfg *config.Config) (ai.Provider, error) {
	switch {
	case cfg.IsOllama():
		return ai.NewOllamaClient(ai.OllamaConfig{
			BaseURL:        cfg.OllamaBaseURL,
			Model:          cfg.OllamaModel,
			TimeoutSeconds: cfg.AITimeoutSeconds,
			MaxTokens:      cfg.AIMaxTokens,
		})

	case cfg.IsLMStudio():
		return ai.NewLMStudioClient(ai.LMStudioConfig{
			BaseURL:        cfg.LMStudioBaseURL,
			Model:          cfg.LMStudioModel,
			TimeoutSeconds: cfg.AITimeoutSeconds,
			MaxTokens:      cfg.AIMaxTokens,
		})

	default:
		proxyURL := cfg.GetProxyURL(true)
		return ai.NewClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, proxyURL, cfg.AITimeoutSeconds, cfg.AIMaxTokens)
	}
}

// buildRequest assembles a content request from CLI arguments
func buildRequest(cli *config.CLIOptions) content.Request {
	req := content.NewRequest(content.Type(cli.ContentType), cli.Topic)
	if cli.Tone != "" {
		req.Tone = cli.Tone
	}
	req.Audience = cli.Audience
	if cli.Keywords != "" {
		for _, kw := range strings.Split(cli.Keywords, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				req.Keywords = append(req.Keywords, kw)
			}
		}
	}
	req.MaxWords = cli.MaxWords
	return req
}

// outputDocument is the JSON shape written to stdout or the output file
type outputDocument struct {
	RequestID   string             `json:"request_id"`
	ContentType string             `json:"content_type"`
	Topic       string             `json:"topic"`
	GeneratedAt time.Time          `json:"generated_at"`
	Content     *content.Generated `json:"content"`
}

// writeOutput writes the generated content as JSON to the given path, or to
// stdout when path is empty.
func writeOutput(path string, req content.Request, gen *content.Generated) error {
	doc := outputDocument{
		RequestID:   req.ID,
		ContentType: string(req.Type),
		Topic:       req.Topic,
		GeneratedAt: time.Now().UTC(),
		Content:     gen,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
