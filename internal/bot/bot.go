package bot

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"newsbeam/internal/extractor"
	"newsbeam/internal/ratelimiter"
	"newsbeam/internal/summarizer"
)

const updateProcessingTimeout = 3 * time.Minute

type Summarizer interface {
	Summarize(ctx context.Context, req summarizer.Request) (summarizer.Result, error)
}

type PageExtractor interface {
	Extract(ctx context.Context, rawURL string) (extractor.Page, error)
}

// messenger is the subset of the Telegram client used to reply.
type messenger interface {
	SendMessage(ctx context.Context, params *tgbot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
}

type Bot struct {
	client       *tgbot.Bot
	api          messenger
	rateLimiter  *ratelimiter.RateLimiter
	summarizer   Summarizer
	extractor    PageExtractor
	allowedUsers []int64
	log          *slog.Logger
}

func New(
	token string,
	s Summarizer,
	e PageExtractor,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := newBot(nil, s, e, allowedUsers, ratelimiter.New(log), log)

	client, err := tgbot.New(
		strings.TrimSpace(token),
		tgbot.WithDefaultHandler(b.handleUpdate),
	)
	if err != nil {
		b.rateLimiter.Stop()
		return nil, fmt.Errorf("create Telegram client: %w", err)
	}

	b.client = client
	b.api = client

	return b, nil
}

func newBot(
	api messenger,
	s Summarizer,
	e PageExtractor,
	allowedUsers []int64,
	rl *ratelimiter.RateLimiter,
	log *slog.Logger,
) *Bot {
	return &Bot{
		api:          api,
		rateLimiter:  rl,
		summarizer:   s,
		extractor:    e,
		allowedUsers: allowedUsers,
		log:          log,
	}
}

// Start polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is started",
		"allowedUsers", len(b.allowedUsers))

	b.client.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	chatID := message.Chat.ID

	var (
		userID   int64
		username string
	)
	if message.From != nil {
		userID = message.From.ID
		username = message.From.Username
	}

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", chatID,
			"username", username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", chatID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	if len(b.allowedUsers) == 0 {
		return true
	}

	return slices.Contains(b.allowedUsers, userID)
}

// sendMessage sends MarkdownV2 text through the per-chat rate limiter.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) error {
	return b.rateLimiter.Send(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      text,
			ParseMode: models.ParseModeMarkdown,
			LinkPreviewOptions: &models.LinkPreviewOptions{
				IsDisabled: tgbot.True(),
			},
		})

		return err
	})
}
