// Package notification delivers generation reports and failure alerts to
// Telegram channels.
package notification

import (
	"fmt"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/olegiv/contentgen-ai-go/internal/ai"
	"github.com/olegiv/contentgen-ai-go/internal/content"
	internalerrors "github.com/olegiv/contentgen-ai-go/internal/errors"
	"github.com/olegiv/contentgen-ai-go/internal/retry"
)

const (
	maxMessageLength = 4096
	// minMessageInterval is the minimum time between messages to the same
	// channel to avoid Telegram rate limits
	minMessageInterval = 1 * time.Second
	// maxSendRetries is the maximum number of attempts for sending a message
	maxSendRetries = 3
	// baseSendDelay is the initial delay between send attempts (doubles each attempt)
	baseSendDelay = 2 * time.Second
)

// TelegramClient posts generation reports to an archive channel and failure
// alerts to a separate alerts channel.
type TelegramClient struct {
	bot             *tgbotapi.BotAPI
	archiveChannel  int64
	alertsChannel   int64
	hostname        string
	lastMessageTime time.Time
}

// NewTelegramClient creates a new Telegram client.
func NewTelegramClient(botToken string, archiveChannel, alertsChannel int64) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		// Sanitize error to keep the bot token out of error messages
		return nil, internalerrors.Wrapf(err, "failed to create Telegram bot")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &TelegramClient{
		bot:            bot,
		archiveChannel: archiveChannel,
		alertsChannel:  alertsChannel,
		hostname:       hostname,
	}, nil
}

// SendGenerationReport posts a report on a completed generation job to the
// archive channel.
func (t *TelegramClient) SendGenerationReport(req content.Request, gen *content.Generated, stats *ai.Stats) error {
	message := t.formatReport(req, gen, stats)

	if err := t.sendToChannel(t.archiveChannel, message); err != nil {
		return fmt.Errorf("failed to send to archive channel: %w", err)
	}
	return nil
}

// SendFailureAlert posts a failure notice to the alerts channel, falling back
// to the archive channel when no alerts channel is configured.
func (t *TelegramClient) SendFailureAlert(req content.Request, genErr error) error {
	channel := t.alertsChannel
	if channel == 0 {
		channel = t.archiveChannel
	}

	message := t.formatFailure(req, genErr)
	if err := t.sendToChannel(channel, message); err != nil {
		return fmt.Errorf("failed to send failure alert: %w", err)
	}
	return nil
}

// formatReport formats a completed generation into a Telegram message.
func (t *TelegramClient) formatReport(req content.Request, gen *content.Generated, stats *ai.Stats) string {
	var msg strings.Builder

	msg.WriteString("✍️ *Content Generation Report*\n")
	msg.WriteString(fmt.Sprintf("🖥 Host\\: %s\n", escapeMarkdown(t.hostname)))
	msg.WriteString(fmt.Sprintf("📅 Date\\: %s\n", escapeMarkdown(time.Now().Format("2006-01-02 15:04:05"))))
	msg.WriteString(fmt.Sprintf("🆔 Request\\: %s\n", escapeMarkdown(req.ID)))
	msg.WriteString(fmt.Sprintf("📂 Type\\: %s\n\n", escapeMarkdown(string(req.Type))))

	msg.WriteString("📋 *Job Stats*\n")
	msg.WriteString(fmt.Sprintf("• Topic\\: %s\n", escapeMarkdown(req.Topic)))
	msg.WriteString(fmt.Sprintf("• Words\\: %d\n", gen.WordCount()))
	msg.WriteString(fmt.Sprintf("• Tags\\: %d\n", len(gen.Tags)))
	if stats != nil {
		msg.WriteString(fmt.Sprintf("• Provider\\: %s\n", escapeMarkdown(stats.Provider)))
		msg.WriteString(fmt.Sprintf("• Tokens\\: %d in / %d out\n", stats.InputTokens, stats.OutputTokens))
		if stats.CostUSD > 0 {
			msg.WriteString(fmt.Sprintf("• Cost\\: %s\n", escapeMarkdown(fmt.Sprintf("$%.4f", stats.CostUSD))))
		}
		msg.WriteString(fmt.Sprintf("• Duration\\: %s\n", escapeMarkdown(fmt.Sprintf("%.2fs", stats.DurationSeconds))))
	}
	msg.WriteString("\n")

	msg.WriteString("📰 *Title*\n")
	msg.WriteString(escapeMarkdown(gen.Title))
	msg.WriteString("\n\n")

	if gen.Summary != "" {
		msg.WriteString("📊 *Summary*\n")
		msg.WriteString(escapeMarkdown(gen.Summary))
		msg.WriteString("\n\n")
	}

	if len(gen.Tags) > 0 {
		msg.WriteString("🏷 *Tags*\n")
		for i, tag := range gen.Tags {
			msg.WriteString(fmt.Sprintf("%d\\. %s\n", i+1, escapeMarkdown(tag)))
		}
	}

	return msg.String()
}

// formatFailure formats a generation failure into an alert message.
func (t *TelegramClient) formatFailure(req content.Request, genErr error) string {
	var msg strings.Builder

	msg.WriteString("🔴 *Content Generation Failed*\n")
	msg.WriteString(fmt.Sprintf("🖥 Host\\: %s\n", escapeMarkdown(t.hostname)))
	msg.WriteString(fmt.Sprintf("📅 Date\\: %s\n", escapeMarkdown(time.Now().Format("2006-01-02 15:04:05"))))
	msg.WriteString(fmt.Sprintf("🆔 Request\\: %s\n", escapeMarkdown(req.ID)))
	msg.WriteString(fmt.Sprintf("📂 Type\\: %s\n", escapeMarkdown(string(req.Type))))
	msg.WriteString(fmt.Sprintf("💬 Topic\\: %s\n\n", escapeMarkdown(req.Topic)))

	msg.WriteString(fmt.Sprintf("⚠️ Category\\: %s\n", escapeMarkdown(string(retry.Classify(genErr)))))
	if suggestion := retry.Suggestion(retry.Classify(genErr)); suggestion != "" {
		msg.WriteString(fmt.Sprintf("💡 %s\n", escapeMarkdown(suggestion)))
	}
	msg.WriteString("\n*Error*\n")
	msg.WriteString(escapeMarkdown(internalerrors.SanitizeString(genErr.Error())))
	msg.WriteString("\n")

	return msg.String()
}

// sendToChannel sends a message to a Telegram channel with rate limiting.
func (t *TelegramClient) sendToChannel(channelID int64, message string) error {
	messages := t.splitMessage(message)

	for _, msg := range messages {
		t.waitForRateLimit()

		msgConfig := tgbotapi.NewMessage(channelID, msg)
		msgConfig.ParseMode = "MarkdownV2"

		if err := t.sendWithRetry(msgConfig); err != nil {
			return err
		}

		t.lastMessageTime = time.Now()
	}

	return nil
}

// waitForRateLimit ensures minimum interval between messages.
func (t *TelegramClient) waitForRateLimit() {
	if t.lastMessageTime.IsZero() {
		return
	}

	elapsed := time.Since(t.lastMessageTime)
	if elapsed < minMessageInterval {
		time.Sleep(minMessageInterval - elapsed)
	}
}

// sendWithRetry sends a message with exponential backoff.
func (t *TelegramClient) sendWithRetry(msgConfig tgbotapi.MessageConfig) error {
	var lastErr error

	for attempt := 1; attempt <= maxSendRetries; attempt++ {
		_, err := t.bot.Send(msgConfig)
		if err == nil {
			return nil
		}

		lastErr = err

		// Telegram 429 responses carry a retry_after hint
		if isRateLimitError(err) {
			retryAfter := extractRetryAfter(err)
			if retryAfter > 0 {
				time.Sleep(time.Duration(retryAfter) * time.Second)
				continue
			}
		}

		if attempt < maxSendRetries {
			delay := baseSendDelay * time.Duration(1<<(attempt-1)) // 2s, 4s, 8s...
			time.Sleep(delay)
		}
	}

	// Sanitize error to keep credentials out of error messages
	return internalerrors.Wrapf(lastErr, "failed to send message after %d retries", maxSendRetries)
}

// isRateLimitError checks if the error is a Telegram rate limit error (429)
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") || strings.Contains(errStr, "Too Many Requests")
}

// extractRetryAfter extracts the retry_after value from a rate limit error
func extractRetryAfter(err error) int {
	if err == nil {
		return 0
	}

	// Example: "Too Many Requests: retry after 30"
	errStr := err.Error()

	if idx := strings.Index(strings.ToLower(errStr), "retry after "); idx != -1 {
		remaining := errStr[idx+len("retry after "):]
		var seconds int
		if _, err := fmt.Sscanf(remaining, "%d", &seconds); err == nil {
			return seconds
		}
	}

	// Conservative wait time when the hint cannot be parsed
	return 30
}

// splitMessage splits a long message into multiple messages
func (t *TelegramClient) splitMessage(message string) []string {
	if len(message) <= maxMessageLength {
		return []string{message}
	}

	var messages []string
	lines := strings.Split(message, "\n")
	var currentMsg strings.Builder

	for _, line := range lines {
		if currentMsg.Len()+len(line)+1 > maxMessageLength {
			if currentMsg.Len() > 0 {
				messages = append(messages, currentMsg.String())
				currentMsg.Reset()
			}

			// A single oversize line gets hard-split
			if len(line) > maxMessageLength {
				for i := 0; i < len(line); i += maxMessageLength {
					end := i + maxMessageLength
					if end > len(line) {
						end = len(line)
					}
					messages = append(messages, line[i:end])
				}
				continue
			}
		}

		currentMsg.WriteString(line)
		currentMsg.WriteString("\n")
	}

	if currentMsg.Len() > 0 {
		messages = append(messages, currentMsg.String())
	}

	return messages
}

// escapeMarkdown escapes special characters for Telegram MarkdownV2
func escapeMarkdown(text string) string {
	// See: https://core.telegram.org/bots/api#markdownv2-style
	specialChars := []string{
		"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!", ":",
	}

	result := text
	for _, char := range specialChars {
		result = strings.ReplaceAll(result, char, "\\"+char)
	}

	return result
}

// GetBotInfo returns information about the bot
func (t *TelegramClient) GetBotInfo() map[string]interface{} {
	return map[string]interface{}{
		"username":        t.bot.Self.UserName,
		"archive_channel": t.archiveChannel,
		"alerts_channel":  t.alertsChannel,
		"hostname":        t.hostname,
	}
}

// Close closes the Telegram client
func (t *TelegramClient) Close() error {
	t.bot.StopReceivingUpdates()
	return nil
}
