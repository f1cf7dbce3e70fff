package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkorobov/daily-topic-bot/internal/chat"
	moderationService "github.com/mkorobov/daily-topic-bot/internal/modules/moderation/service"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	topicService "github.com/mkorobov/daily-topic-bot/internal/modules/topic/service"
	"github.com/mkorobov/daily-topic-bot/internal/scheduler"
)

// Handler handles Telegram bot interactions
type Handler struct {
	gw         chat.Gateway
	topics     *topicService.Service
	moderation *moderationService.Service
	jobs       *scheduler.JobSet
}

// New creates a new Telegram handler
func New(gw chat.Gateway, topics *topicService.Service, moderation *moderationService.Service, jobs *scheduler.JobSet) *Handler {
	return &Handler{
		gw:         gw,
		topics:     topics,
		moderation: moderation,
		jobs:       jobs,
	}
}

// RegisterCommands registers bot commands
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandler(bot.HandlerTypeMessageText, "/register_topic", bot.MatchTypeExact, h.handleRegisterTopic)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/register_cleanup", bot.MatchTypePrefix, h.handleRegisterCleanup)
	b.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypeExact, h.handleStatus)
}

// HandleUpdate feeds every non-command group message through the rule
// pipeline.
func (h *Handler) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" || msg.From == nil {
		return
	}

	event := moderationService.Message{
		Key:         topicKeyOf(msg),
		MessageID:   msg.ID,
		AuthorID:    msg.From.ID,
		AuthorIsBot: msg.From.IsBot,
		Private:     msg.Chat.Type == "private",
		Text:        msg.Text,
	}

	decision := h.moderation.Process(ctx, event)
	if decision != moderationService.DecisionPass {
		slog.Debug("Message processed", "topic", event.Key.String(), "decision", decision.String())
	}
}

func (h *Handler) handleRegisterTopic(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if !h.requireGroupAdmin(ctx, b, msg) {
		return
	}

	key := topicKeyOf(msg)
	topic, err := h.topics.Register(key, topicName(msg))
	if err != nil {
		slog.Error("Failed to register topic", "topic", key.String(), "error", err)
		h.replyText(ctx, b, msg, "❌ Failed to register this topic, please try again.")
		return
	}

	h.replyText(ctx, b, msg, fmt.Sprintf("✅ Registered %q. Moderation rules can now be configured for it.", topic.Name))
}

func (h *Handler) handleRegisterCleanup(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if !h.requireGroupAdmin(ctx, b, msg) {
		return
	}

	parts := strings.Fields(msg.Text)
	if len(parts) < 2 {
		h.replyText(ctx, b, msg, "Usage: /register_cleanup HH:MM\nExample: /register_cleanup 23:30")
		return
	}

	key := topicKeyOf(msg)
	topic, err := h.topics.RegisterCleanup(key, topicName(msg), parts[1])
	if err != nil {
		h.replyText(ctx, b, msg, "❌ Invalid time, expected HH:MM in 24-hour clock.")
		return
	}

	if err := h.jobs.Reload(); err != nil {
		slog.Error("Failed to reload scheduled jobs", "error", err)
	}

	h.replyText(ctx, b, msg, fmt.Sprintf("✅ Registered %q with a daily cleanup at %s.", topic.Name, topic.CleanupTime.String()))
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	topics, err := h.topics.All()
	if err != nil {
		h.replyText(ctx, b, msg, "❌ Failed to load status.")
		return
	}

	if len(topics) == 0 {
		h.replyText(ctx, b, msg, "📭 No topics registered yet.\nUse /register_topic inside a group or forum topic.")
		return
	}

	var text strings.Builder
	text.WriteString("📊 Registered topics:\n\n")
	for i, t := range topics {
		text.WriteString(fmt.Sprintf("%d. %s\n", i+1, t.Name))
		if t.SilentWindow != nil {
			text.WriteString(fmt.Sprintf("   🔕 silence: %s\n", t.SilentWindow.String()))
		}
		if t.AutoDeleteWindow != nil {
			text.WriteString(fmt.Sprintf("   🗑 auto-delete: %s\n", t.AutoDeleteWindow.String()))
		}
		if len(t.StopWords) > 0 {
			text.WriteString(fmt.Sprintf("   🚫 stop words: %d\n", len(t.StopWords)))
		}
		if len(t.AutoResponses) > 0 {
			text.WriteString(fmt.Sprintf("   💬 auto-responses: %d\n", len(t.AutoResponses)))
		}
		if t.CleanupTime != nil {
			text.WriteString(fmt.Sprintf("   🧹 cleanup at: %s\n", t.CleanupTime.String()))
		}
	}

	h.replyText(ctx, b, msg, text.String())
}

// requireGroupAdmin rejects registration commands issued outside a group
// or by a non-administrator.
func (h *Handler) requireGroupAdmin(ctx context.Context, b *bot.Bot, msg *models.Message) bool {
	if msg.Chat.Type != "group" && msg.Chat.Type != "supergroup" {
		h.replyText(ctx, b, msg, "❌ This command must be used inside a group or forum topic.")
		return false
	}
	if msg.From == nil {
		return false
	}

	status, err := h.gw.GetMember(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		slog.Warn("Failed to check member status", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "error", err)
		h.replyText(ctx, b, msg, "❌ Could not verify your administrator rights, please try again.")
		return false
	}
	if !status.IsAdmin() {
		h.replyText(ctx, b, msg, "❌ Only chat administrators can register topics.")
		return false
	}
	return true
}

func (h *Handler) replyText(ctx context.Context, b *bot.Bot, msg *models.Message, text string) {
	params := &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            text,
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	}
	if msg.MessageThreadID != 0 {
		params.MessageThreadID = msg.MessageThreadID
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		slog.Error("Failed to send reply", "chat_id", msg.Chat.ID, "error", err)
	}
}

func topicKeyOf(msg *models.Message) topicdomain.TopicKey {
	return topicdomain.TopicKey{
		ChatID:   msg.Chat.ID,
		ThreadID: msg.MessageThreadID,
	}
}

func topicName(msg *models.Message) string {
	if msg.MessageThreadID != 0 {
		return fmt.Sprintf("%s / topic %d", msg.Chat.Title, msg.MessageThreadID)
	}
	return fmt.Sprintf("%s (main stream)", msg.Chat.Title)
}
