package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"newsbeam/internal/domain"
	"newsbeam/internal/extractor"
	"newsbeam/internal/summarizer"
)

const maxURLsPerMessage = 3

const helpText = `📰 *NewsBeam*

Send me a link to a news article and I will reply with a short summary\.
You can also paste the article text itself \(at least 10 characters\)\.

/help shows this message\.`

const textTooShortFormat = "Please enter at least %d characters of text to summarize"

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch {
	case strings.HasPrefix(text, "/start"), strings.HasPrefix(text, "/help"):
		return b.sendMessage(ctx, chatID, helpText)
	case text == "":
		return nil
	}

	return b.withSpinner(ctx, chatID, func() error {
		urls := extractor.FindURLs(text)
		if len(urls) == 0 {
			return b.handleText(ctx, chatID, text)
		}

		if len(urls) > maxURLsPerMessage {
			urls = urls[:maxURLsPerMessage]
		}

		var errs []error
		for _, u := range urls {
			if err := b.handleURL(ctx, chatID, u); err != nil {
				errs = append(errs, fmt.Errorf("handle URL (URL = %s): %w", u, err))
			}
		}

		return errors.Join(errs...)
	})
}

func (b *Bot) handleText(ctx context.Context, chatID int64, text string) error {
	if utf8.RuneCountInString(text) < summarizer.MinTextLength {
		return b.sendPlain(ctx, chatID, fmt.Sprintf(textTooShortFormat, summarizer.MinTextLength))
	}

	return b.summarize(ctx, chatID, "", "", text)
}

func (b *Bot) handleURL(ctx context.Context, chatID int64, pageURL string) error {
	page, err := b.extractor.Extract(ctx, pageURL)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to extract page",
			"error", err,
			"url", pageURL,
			"chatID", chatID)

		return b.sendPlain(ctx, chatID, extractor.ExtractFailedMessage)
	}

	if utf8.RuneCountInString(page.Text) < extractor.MinContentLength {
		return b.sendPlain(ctx, chatID, extractor.NoContentMessage)
	}

	return b.summarize(ctx, chatID, page.Title, page.URL, page.Text)
}

func (b *Bot) summarize(
	ctx context.Context,
	chatID int64,
	title string,
	sourceURL string,
	text string,
) error {
	res, err := b.summarizer.Summarize(ctx, summarizer.Request{
		Text:      text,
		SourceURL: sourceURL,
	})
	if err != nil {
		b.log.WarnContext(ctx, "Failed to summarize",
			"error", err,
			"url", sourceURL,
			"chatID", chatID,
			"textLen", len(text))

		return b.sendPlain(ctx, chatID, "❌ "+summarizer.UserMessage(err))
	}

	return b.sendMessage(ctx, chatID, formatSummary(title, sourceURL, res, domain.NewStats(text, res.Summary)))
}

func (b *Bot) sendPlain(ctx context.Context, chatID int64, text string) error {
	return b.sendMessage(ctx, chatID, tgbot.EscapeMarkdown(text))
}

func formatSummary(title string, sourceURL string, res summarizer.Result, stats domain.Stats) string {
	var sb strings.Builder

	if title = strings.TrimSpace(title); title != "" {
		sb.WriteString("*")
		sb.WriteString(tgbot.EscapeMarkdown(title))
		sb.WriteString("*\n\n")
	}

	sb.WriteString(tgbot.EscapeMarkdown(res.Summary))
	sb.WriteString("\n\n")

	if sourceURL != "" {
		sb.WriteString("🔗 ")
		sb.WriteString(tgbot.EscapeMarkdown(sourceURL))
		sb.WriteString("\n")
	}

	sb.WriteString(tgbot.EscapeMarkdown(fmt.Sprintf(
		"📊 %d → %d words, %d min read",
		stats.WordCountOriginal,
		stats.WordCountSummary,
		stats.ReadingTimeMinutes,
	)))

	return sb.String()
}
