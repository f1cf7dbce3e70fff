package telegram

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/mkorobov/daily-topic-bot/internal/chat"
	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
	"github.com/samber/oops"
)

// Gateway implements chat.Gateway over the Telegram Bot API. Every call
// carries a short deadline so a hung request cannot stall message
// ingestion; a timed-out call surfaces as an ordinary error.
type Gateway struct {
	bot     *bot.Bot
	timeout time.Duration
}

// NewGateway creates a Telegram-backed chat gateway. The bot client is
// attached later via SetBot, after the bot itself has been constructed.
func NewGateway(timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Gateway{timeout: timeout}
}

// SetBot attaches the bot client. Must be called before the bot starts
// receiving updates.
func (g *Gateway) SetBot(b *bot.Bot) {
	g.bot = b
}

func (g *Gateway) SendMessage(ctx context.Context, target topicdomain.TopicKey, text string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:    target.ChatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	}
	if target.ThreadID != 0 {
		params.MessageThreadID = target.ThreadID
	}

	msg, err := g.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, oops.With("topic", target.String()).Wrap(err)
	}
	return msg.ID, nil
}

func (g *Gateway) Reply(ctx context.Context, target topicdomain.TopicKey, replyTo int, text string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:          target.ChatID,
		Text:            text,
		ParseMode:       models.ParseModeMarkdown,
		ReplyParameters: &models.ReplyParameters{MessageID: replyTo},
	}
	if target.ThreadID != 0 {
		params.MessageThreadID = target.ThreadID
	}

	msg, err := g.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, oops.With("topic", target.String(), "reply_to", replyTo).Wrap(err)
	}
	return msg.ID, nil
}

func (g *Gateway) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	ok, err := g.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID).Wrap(err)
	}
	if !ok {
		return oops.Errorf("delete message %d in chat %d was rejected", messageID, chatID)
	}
	return nil
}

func (g *Gateway) GetAdministrators(ctx context.Context, chatID int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	members, err := g.bot.GetChatAdministrators(ctx, &bot.GetChatAdministratorsParams{ChatID: chatID})
	if err != nil {
		return nil, oops.With("chat_id", chatID).Wrap(err)
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		switch m.Type {
		case models.ChatMemberTypeOwner:
			if m.Owner != nil {
				ids = append(ids, m.Owner.User.ID)
			}
		case models.ChatMemberTypeAdministrator:
			if m.Administrator != nil {
				ids = append(ids, m.Administrator.User.ID)
			}
		}
	}
	return ids, nil
}

func (g *Gateway) GetMember(ctx context.Context, chatID, userID int64) (chat.MemberStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	member, err := g.bot.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return "", oops.With("chat_id", chatID, "user_id", userID).Wrap(err)
	}

	switch member.Type {
	case models.ChatMemberTypeOwner:
		return chat.MemberStatusCreator, nil
	case models.ChatMemberTypeAdministrator:
		return chat.MemberStatusAdministrator, nil
	case models.ChatMemberTypeRestricted:
		return chat.MemberStatusRestricted, nil
	case models.ChatMemberTypeLeft:
		return chat.MemberStatusLeft, nil
	case models.ChatMemberTypeBanned:
		return chat.MemberStatusBanned, nil
	default:
		return chat.MemberStatusMember, nil
	}
}
