// Package platformtest provides an in-memory platform.Client for tests.
package platformtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

type SentMessage struct {
	ID        snowflake.ID
	ChannelID snowflake.ID
	Message   discord.MessageCreate
}

type EditedMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Update    discord.MessageUpdate
}

type ExecutedWebhook struct {
	Webhook platform.Webhook
	Message discord.WebhookMessageCreate
}

type ReactionCall struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Emoji     string
	UserID    snowflake.ID
}

type Fake struct {
	mu sync.Mutex

	BotID  snowflake.ID
	nextID snowflake.ID

	emojis      map[snowflake.ID][]discord.Emoji
	creators    map[snowflake.ID]snowflake.ID
	permissions map[snowflake.ID]discord.Permissions
	users       map[snowflake.ID]discord.User
	channels    map[snowflake.ID][]platform.Channel
	webhooks    map[snowflake.ID][]platform.Webhook
	failures    map[string]error

	Sent      []SentMessage
	Edits     []EditedMessage
	Deleted   []snowflake.ID
	Reactions []ReactionCall
	Removed   []ReactionCall
	Executed  []ExecutedWebhook
	Created   []platform.Image
	calls     []string
}

var _ platform.Client = (*Fake)(nil)

func New(botID snowflake.ID) *Fake {
	return &Fake{
		BotID:       botID,
		nextID:      1000,
		emojis:      map[snowflake.ID][]discord.Emoji{},
		creators:    map[snowflake.ID]snowflake.ID{},
		permissions: map[snowflake.ID]discord.Permissions{},
		users:       map[snowflake.ID]discord.User{},
		channels:    map[snowflake.ID][]platform.Channel{},
		webhooks:    map[snowflake.ID][]platform.Webhook{},
		failures:    map[string]error{},
	}
}

func (f *Fake) id() snowflake.ID {
	f.nextID++

	return f.nextID
}

func (f *Fake) record(op string) error {
	f.calls = append(f.calls, op)

	if err, ok := f.failures[op]; ok {
		return &utils.PlatformError{Op: op, Message: err.Error(), Err: err}
	}

	return nil
}

// FailOn makes every later call of op return err wrapped in a PlatformError.
func (f *Fake) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures[op] = err
}

// Calls lists the operations called so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *Fake) CallCount(op string) int {
	n := 0
	for _, call := range f.Calls() {
		if call == op {
			n++
		}
	}

	return n
}

// AddEmoji puts an emoji in a guild as if creator had uploaded it.
func (f *Fake) AddEmoji(guildID snowflake.ID, name string, creatorID snowflake.ID) discord.Emoji {
	f.mu.Lock()
	defer f.mu.Unlock()

	emoji := discord.Emoji{ID: f.id(), Name: name, GuildID: guildID, Available: true}
	f.emojis[guildID] = append(f.emojis[guildID], emoji)
	if creatorID != 0 {
		f.creators[emoji.ID] = creatorID
	}

	return emoji
}

func (f *Fake) LiveEmojis(guildID snowflake.ID) []discord.Emoji {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]discord.Emoji(nil), f.emojis[guildID]...)
}

func (f *Fake) HasEmoji(guildID snowflake.ID, name string) bool {
	for _, emoji := range f.LiveEmojis(guildID) {
		if emoji.Name == name {
			return true
		}
	}

	return false
}

func (f *Fake) SetPermissions(userID snowflake.ID, permissions discord.Permissions) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.permissions[userID] = permissions
}

func (f *Fake) AddUser(user discord.User) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.users[user.ID] = user
}

func (f *Fake) AddChannel(guildID snowflake.ID, channel platform.Channel) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.channels[guildID] = append(f.channels[guildID], channel)
}

func (f *Fake) AddWebhook(webhook platform.Webhook) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.webhooks[webhook.ChannelID] = append(f.webhooks[webhook.ChannelID], webhook)
}

func (f *Fake) SentTo(channelID snowflake.ID) []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	sent := []SentMessage{}
	for _, msg := range f.Sent {
		if msg.ChannelID == channelID {
			sent = append(sent, msg)
		}
	}

	return sent
}

func (f *Fake) LastEdit(messageID snowflake.ID) (discord.MessageUpdate, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.Edits) - 1; i >= 0; i-- {
		if f.Edits[i].MessageID == messageID {
			return f.Edits[i].Update, true
		}
	}

	return discord.MessageUpdate{}, false
}

func (f *Fake) SelfID() snowflake.ID {
	return f.BotID
}

func (f *Fake) Latency() time.Duration {
	return 42 * time.Millisecond
}

func (f *Fake) GuildEmojis(_ context.Context, guildID snowflake.ID) ([]discord.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get emojis"); err != nil {
		return nil, err
	}

	return append([]discord.Emoji(nil), f.emojis[guildID]...), nil
}

func (f *Fake) GetEmoji(_ context.Context, guildID snowflake.ID, emojiID snowflake.ID) (*discord.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get emoji"); err != nil {
		return nil, err
	}

	for _, emoji := range f.emojis[guildID] {
		if emoji.ID != emojiID {
			continue
		}

		if creatorID, ok := f.creators[emoji.ID]; ok {
			creator, ok := f.users[creatorID]
			if !ok {
				creator = discord.User{ID: creatorID, Username: fmt.Sprintf("user%d", creatorID)}
			}
			emoji.Creator = &creator
		}

		return &emoji, nil
	}

	return nil, &utils.PlatformError{Op: "get emoji", Code: 10014, Message: "Unknown Emoji"}
}

func (f *Fake) CreateEmoji(_ context.Context, guildID snowflake.ID, name string, image platform.Image, _ string) (*discord.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("create emoji"); err != nil {
		return nil, err
	}

	emoji := discord.Emoji{
		ID:        f.id(),
		Name:      name,
		GuildID:   guildID,
		Available: true,
		Animated:  image.Type == discord.IconTypeGIF,
	}
	f.emojis[guildID] = append(f.emojis[guildID], emoji)
	f.creators[emoji.ID] = f.BotID
	f.Created = append(f.Created, image)

	return &emoji, nil
}

func (f *Fake) RenameEmoji(_ context.Context, guildID snowflake.ID, emojiID snowflake.ID, name string, _ string) (*discord.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("rename emoji"); err != nil {
		return nil, err
	}

	for i, emoji := range f.emojis[guildID] {
		if emoji.ID == emojiID {
			f.emojis[guildID][i].Name = name
			renamed := f.emojis[guildID][i]
			return &renamed, nil
		}
	}

	return nil, &utils.PlatformError{Op: "rename emoji", Code: 10014, Message: "Unknown Emoji"}
}

func (f *Fake) DeleteEmoji(_ context.Context, guildID snowflake.ID, emojiID snowflake.ID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete emoji"); err != nil {
		return err
	}

	emojis := f.emojis[guildID]
	for i, emoji := range emojis {
		if emoji.ID == emojiID {
			f.emojis[guildID] = append(emojis[:i:i], emojis[i+1:]...)
			return nil
		}
	}

	return &utils.PlatformError{Op: "delete emoji", Code: 10014, Message: "Unknown Emoji"}
}

func (f *Fake) SendMessage(_ context.Context, channelID snowflake.ID, message discord.MessageCreate) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("send message"); err != nil {
		return nil, err
	}

	id := f.id()
	f.Sent = append(f.Sent, SentMessage{ID: id, ChannelID: channelID, Message: message})

	return &discord.Message{
		ID:        id,
		ChannelID: channelID,
		Content:   message.Content,
		Embeds:    message.Embeds,
		Author:    discord.User{ID: f.BotID, Bot: true},
	}, nil
}

func (f *Fake) EditMessage(_ context.Context, channelID snowflake.ID, messageID snowflake.ID, update discord.MessageUpdate) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("edit message"); err != nil {
		return nil, err
	}

	f.Edits = append(f.Edits, EditedMessage{ChannelID: channelID, MessageID: messageID, Update: update})

	return &discord.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *Fake) DeleteMessage(_ context.Context, _ snowflake.ID, messageID snowflake.ID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("delete message"); err != nil {
		return err
	}

	f.Deleted = append(f.Deleted, messageID)

	return nil
}

func (f *Fake) AddReaction(_ context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("add reaction"); err != nil {
		return err
	}

	f.Reactions = append(f.Reactions, ReactionCall{ChannelID: channelID, MessageID: messageID, Emoji: emoji, UserID: f.BotID})

	return nil
}

func (f *Fake) RemoveUserReaction(_ context.Context, channelID snowflake.ID, messageID snowflake.ID, emoji string, userID snowflake.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("remove reaction"); err != nil {
		return err
	}

	f.Removed = append(f.Removed, ReactionCall{ChannelID: channelID, MessageID: messageID, Emoji: emoji, UserID: userID})

	return nil
}

func (f *Fake) ChannelWebhooks(_ context.Context, channelID snowflake.ID) ([]platform.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get webhooks"); err != nil {
		return nil, err
	}

	return append([]platform.Webhook(nil), f.webhooks[channelID]...), nil
}

func (f *Fake) CreateWebhook(_ context.Context, channelID snowflake.ID, name string) (*platform.Webhook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("create webhook"); err != nil {
		return nil, err
	}

	hook := platform.Webhook{ID: f.id(), ChannelID: channelID, Name: name, Token: "token"}
	f.webhooks[channelID] = append(f.webhooks[channelID], hook)

	return &hook, nil
}

func (f *Fake) ExecuteWebhook(_ context.Context, webhook platform.Webhook, message discord.WebhookMessageCreate) (*discord.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("execute webhook"); err != nil {
		return nil, err
	}

	f.Executed = append(f.Executed, ExecutedWebhook{Webhook: webhook, Message: message})
	webhookID := webhook.ID

	return &discord.Message{
		ID:        f.id(),
		ChannelID: webhook.ChannelID,
		Content:   message.Content,
		WebhookID: &webhookID,
		Author:    discord.User{ID: webhook.ID, Username: message.Username, Bot: true},
	}, nil
}

func (f *Fake) GetMember(_ context.Context, guildID snowflake.ID, userID snowflake.ID) (*discord.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get member"); err != nil {
		return nil, err
	}

	user, ok := f.users[userID]
	if !ok {
		if _, ok := f.permissions[userID]; !ok {
			return nil, &utils.PlatformError{Op: "get member", Code: 10007, Message: "Unknown Member"}
		}
		user = discord.User{ID: userID, Username: fmt.Sprintf("user%d", userID)}
	}

	return &discord.Member{User: user, GuildID: guildID}, nil
}

func (f *Fake) GetUser(_ context.Context, userID snowflake.ID) (*discord.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get user"); err != nil {
		return nil, err
	}

	user, ok := f.users[userID]
	if !ok {
		return nil, &utils.PlatformError{Op: "get user", Code: 10013, Message: "Unknown User"}
	}

	return &user, nil
}

func (f *Fake) MemberPermissions(_ context.Context, _ snowflake.ID, userID snowflake.ID) (discord.Permissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("member permissions"); err != nil {
		return discord.PermissionsNone, err
	}

	perms, ok := f.permissions[userID]
	if !ok {
		if _, ok := f.users[userID]; !ok {
			return discord.PermissionsNone, &utils.PlatformError{Op: "member permissions", Code: 10007, Message: "Unknown Member"}
		}
	}

	return perms, nil
}

func (f *Fake) TextChannels(_ context.Context, guildID snowflake.ID) ([]platform.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("get channels"); err != nil {
		return nil, err
	}

	return append([]platform.Channel(nil), f.channels[guildID]...), nil
}
