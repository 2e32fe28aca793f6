// Package platform is the slice of the Discord API the bot depends on. The
// core packages only see these interfaces, Disgo implements them on top of a
// disgo client and platformtest fakes them.
package platform

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// Image is an emoji image held in memory.
type Image struct {
	Data []byte
	Type discord.IconType
}

type Webhook struct {
	ID        snowflake.ID
	ChannelID snowflake.ID
	Name      string
	Token     string
}

// Reaction is a reaction added to a guild message.
type Reaction struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	UserID    snowflake.ID
	Bot       bool
	Emoji     string
}

type Channel struct {
	ID       snowflake.ID
	Name     string
	Position int
}

type Emojis interface {
	GuildEmojis(ctx context.Context, guildID snowflake.ID) ([]discord.Emoji, error)
	GetEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID) (*discord.Emoji, error)
	CreateEmoji(ctx context.Context, guildID snowflake.ID, name string, image Image, reason string) (*discord.Emoji, error)
	RenameEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID, name string, reason string) (*discord.Emoji, error)
	DeleteEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID, reason string) error
}

type Messages interface {
	SendMessage(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error)
	EditMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, update discord.MessageUpdate) (*discord.Message, error)
	DeleteMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, reason string) error
	AddReaction(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string) error
	RemoveUserReaction(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string, userID snowflake.ID) error
}

type Webhooks interface {
	ChannelWebhooks(ctx context.Context, channelID snowflake.ID) ([]Webhook, error)
	CreateWebhook(ctx context.Context, channelID snowflake.ID, name string) (*Webhook, error)
	ExecuteWebhook(ctx context.Context, webhook Webhook, message discord.WebhookMessageCreate) (*discord.Message, error)
}

type Guilds interface {
	SelfID() snowflake.ID
	GetMember(ctx context.Context, guildID snowflake.ID, userID snowflake.ID) (*discord.Member, error)
	GetUser(ctx context.Context, userID snowflake.ID) (*discord.User, error)
	MemberPermissions(ctx context.Context, guildID snowflake.ID, userID snowflake.ID) (discord.Permissions, error)
	TextChannels(ctx context.Context, guildID snowflake.ID) ([]Channel, error)
}

type Client interface {
	Emojis
	Messages
	Webhooks
	Guilds

	Latency() time.Duration
}
