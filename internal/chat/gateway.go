package chat

import (
	"context"

	topicdomain "github.com/mkorobov/daily-topic-bot/internal/modules/topic/domain"
)

// MemberStatus is a chat member's role as reported by the platform.
type MemberStatus string

const (
	MemberStatusCreator       MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusBanned        MemberStatus = "banned"
)

// IsAdmin reports whether the status carries moderation rights.
func (s MemberStatus) IsAdmin() bool {
	return s == MemberStatusCreator || s == MemberStatusAdministrator
}

// Gateway is the narrow messaging-platform surface the moderation core
// depends on. All calls are remote and fallible; implementations carry a
// short per-call timeout so a hung network call cannot stall ingestion.
type Gateway interface {
	// SendMessage posts text to the target topic and returns the new
	// message's ID.
	SendMessage(ctx context.Context, target topicdomain.TopicKey, text string) (int, error)
	// Reply posts text quoting the message replyTo in the target topic.
	Reply(ctx context.Context, target topicdomain.TopicKey, replyTo int, text string) (int, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	GetAdministrators(ctx context.Context, chatID int64) ([]int64, error)
	GetMember(ctx context.Context, chatID int64, userID int64) (MemberStatus, error)
}
