package platform

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/passivity/emojis/utils"
)

type Disgo struct {
	client bot.Client
}

var _ Client = (*Disgo)(nil)

func NewDisgo(client bot.Client) *Disgo {
	return &Disgo{client: client}
}

func (d *Disgo) SelfID() snowflake.ID {
	return d.client.ID()
}

func (d *Disgo) Latency() time.Duration {
	if gw := d.client.Gateway(); gw != nil {
		return gw.Latency()
	}

	return 0
}

func (d *Disgo) GuildEmojis(ctx context.Context, guildID snowflake.ID) ([]discord.Emoji, error) {
	emojis, err := d.client.Rest().GetEmojis(guildID, rest.WithCtx(ctx))

	return emojis, wrap("get emojis", err)
}

func (d *Disgo) GetEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID) (*discord.Emoji, error) {
	emoji, err := d.client.Rest().GetEmoji(guildID, emojiID, rest.WithCtx(ctx))

	return emoji, wrap("get emoji", err)
}

func (d *Disgo) CreateEmoji(ctx context.Context, guildID snowflake.ID, name string, image Image, reason string) (*discord.Emoji, error) {
	emoji, err := d.client.Rest().CreateEmoji(guildID, discord.EmojiCreate{
		Name:  name,
		Image: *discord.NewIconRaw(image.Type, image.Data),
	}, rest.WithCtx(ctx), rest.WithReason(reason))

	return emoji, wrap("create emoji", err)
}

func (d *Disgo) RenameEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID, name string, reason string) (*discord.Emoji, error) {
	emoji, err := d.client.Rest().UpdateEmoji(guildID, emojiID, discord.EmojiUpdate{
		Name: &name,
	}, rest.WithCtx(ctx), rest.WithReason(reason))

	return emoji, wrap("rename emoji", err)
}

func (d *Disgo) DeleteEmoji(ctx context.Context, guildID snowflake.ID, emojiID snowflake.ID, reason string) error {
	err := d.client.Rest().DeleteEmoji(guildID, emojiID, rest.WithCtx(ctx), rest.WithReason(reason))

	return wrap("delete emoji", err)
}

func (d *Disgo) SendMessage(ctx context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error) {
	msg, err := d.client.Rest().CreateMessage(channelID, message, rest.WithCtx(ctx))

	return msg, wrap("send message", err)
}

func (d *Disgo) EditMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, update discord.MessageUpdate) (*discord.Message, error) {
	msg, err := d.client.Rest().UpdateMessage(channelID, messageID, update, rest.WithCtx(ctx))

	return msg, wrap("edit message", err)
}

func (d *Disgo) DeleteMessage(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, reason string) error {
	opts := []rest.RequestOpt{rest.WithCtx(ctx)}
	if reason != "" {
		opts = append(opts, rest.WithReason(reason))
	}

	return wrap("delete message", d.client.Rest().DeleteMessage(channelID, messageID, opts...))
}

func (d *Disgo) AddReaction(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string) error {
	return wrap("add reaction", d.client.Rest().AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx)))
}

func (d *Disgo) RemoveUserReaction(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string, userID snowflake.ID) error {
	err := d.client.Rest().RemoveUserReaction(channelID, messageID, emoji, userID, rest.WithCtx(ctx))

	return wrap("remove reaction", err)
}

func (d *Disgo) ChannelWebhooks(ctx context.Context, channelID snowflake.ID) ([]Webhook, error) {
	hooks, err := d.client.Rest().GetWebhooks(channelID, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrap("get webhooks", err)
	}

	webhooks := make([]Webhook, 0, len(hooks))
	for _, hook := range hooks {
		// only incoming webhooks can be executed, and only with a token
		incoming, ok := hook.(discord.IncomingWebhook)
		if !ok {
			continue
		}

		webhooks = append(webhooks, Webhook{
			ID:        incoming.ID(),
			ChannelID: incoming.ChannelID,
			Name:      incoming.Name(),
			Token:     incoming.Token,
		})
	}

	return webhooks, nil
}

func (d *Disgo) CreateWebhook(ctx context.Context, channelID snowflake.ID, name string) (*Webhook, error) {
	hook, err := d.client.Rest().CreateWebhook(channelID, discord.WebhookCreate{Name: name}, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrap("create webhook", err)
	}

	return &Webhook{
		ID:        hook.ID(),
		ChannelID: hook.ChannelID,
		Name:      hook.Name(),
		Token:     hook.Token,
	}, nil
}

func (d *Disgo) ExecuteWebhook(ctx context.Context, webhook Webhook, message discord.WebhookMessageCreate) (*discord.Message, error) {
	msg, err := d.client.Rest().CreateWebhookMessage(webhook.ID, webhook.Token, message, true, 0, rest.WithCtx(ctx))

	return msg, wrap("execute webhook", err)
}

func (d *Disgo) GetMember(ctx context.Context, guildID snowflake.ID, userID snowflake.ID) (*discord.Member, error) {
	if member, ok := d.client.Caches().Member(guildID, userID); ok {
		return &member, nil
	}

	member, err := d.client.Rest().GetMember(guildID, userID, rest.WithCtx(ctx))

	return member, wrap("get member", err)
}

func (d *Disgo) GetUser(ctx context.Context, userID snowflake.ID) (*discord.User, error) {
	user, err := d.client.Rest().GetUser(userID, rest.WithCtx(ctx))

	return user, wrap("get user", err)
}

func (d *Disgo) MemberPermissions(ctx context.Context, guildID snowflake.ID, userID snowflake.ID) (discord.Permissions, error) {
	member, err := d.GetMember(ctx, guildID, userID)
	if err != nil {
		return discord.PermissionsNone, err
	}

	return d.client.Caches().MemberPermissions(*member), nil
}

func (d *Disgo) TextChannels(ctx context.Context, guildID snowflake.ID) ([]Channel, error) {
	channels, err := d.client.Rest().GetGuildChannels(guildID, rest.WithCtx(ctx))
	if err != nil {
		return nil, wrap("get channels", err)
	}

	text := []Channel{}
	for _, ch := range channels {
		if ch.Type() != discord.ChannelTypeGuildText {
			continue
		}

		text = append(text, Channel{ID: ch.ID(), Name: ch.Name(), Position: ch.Position()})
	}

	sort.SliceStable(text, func(i, j int) bool {
		return text[i].Position < text[j].Position
	})

	return text, nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	var restErr *rest.Error
	if errors.As(err, &restErr) {
		return &utils.PlatformError{Op: op, Code: int(restErr.Code), Message: restErr.Message, Err: err}
	}

	return &utils.PlatformError{Op: op, Err: err}
}
