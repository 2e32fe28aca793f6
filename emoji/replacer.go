package emoji

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/platform"
)

var tokenRegex = regexp.MustCompile(`\S+`)

// AuthorFilter decides whether a message author gets their emojis replaced.
type AuthorFilter func(author discord.User) bool

// SkipLegacyTags denies authors that still have a numeric discriminator.
func SkipLegacyTags(author discord.User) bool {
	return author.Discriminator == "" || author.Discriminator == "0"
}

// Author is who a webhook message is posted as.
type Author struct {
	Name      string
	AvatarURL string
}

func AuthorOf(msg discord.Message) Author {
	name := msg.Author.EffectiveName()
	if msg.Member != nil && msg.Member.Nick != nil && *msg.Member.Nick != "" {
		name = *msg.Member.Nick
	}

	return Author{Name: name, AvatarURL: msg.Author.EffectiveAvatarURL()}
}

// Replacer reposts messages with :name: text swapped for the emojis the bot
// can use, through a webhook that looks like the original author.
type Replacer struct {
	directory *Directory
	settings  database.SettingsStore
	messages  platform.Messages
	webhooks  platform.Webhooks

	// channel id -> platform.Webhook
	cache sync.Map
	// one lookup or creation per channel at a time
	lookups singleflight.Group

	AuthorFilter AuthorFilter
}

func NewReplacer(directory *Directory, settings database.SettingsStore, client platform.Client) *Replacer {
	return &Replacer{
		directory: directory,
		settings:  settings,
		messages:  client,
		webhooks:  client,
	}
}

// Rewrite replaces every whitespace separated :name: token that resolves to
// an emoji, keeping the separators as they were. It returns the new content
// and the number of tokens replaced.
func (r *Replacer) Rewrite(content string, guildID snowflake.ID) (string, int) {
	hits := 0

	rewritten := tokenRegex.ReplaceAllStringFunc(content, func(token string) string {
		match := constants.UnparsedEmojiRegex.FindStringSubmatch(token)
		if match == nil {
			return token
		}

		e, ok := r.directory.Lookup(match[1], guildID)
		if !ok {
			return token
		}

		hits++
		return e.Mention()
	})

	return rewritten, hits
}

// Replace reposts msg with its unparsed emojis resolved and deletes the
// original. It returns nil, nil when there was nothing to do.
func (r *Replacer) Replace(ctx context.Context, msg discord.Message) (*discord.Message, error) {
	if msg.GuildID == nil || msg.Author.Bot || msg.Author.System || msg.WebhookID != nil {
		return nil, nil
	}
	if r.AuthorFilter != nil && !r.AuthorFilter(msg.Author) {
		return nil, nil
	}
	if !strings.Contains(msg.Content, ":") {
		return nil, nil
	}

	settings, err := r.settings.Get(ctx, *msg.GuildID)
	if err != nil {
		log.Debug().Err(err).Str("guild", msg.GuildID.String()).Msg("Couldn't get settings, replacing with defaults")
		settings = database.DefaultSettings(*msg.GuildID)
	}
	if !settings.ReplaceEmojis {
		return nil, nil
	}

	content, hits := r.Rewrite(msg.Content, *msg.GuildID)
	if hits == 0 {
		return nil, nil
	}

	sent, err := r.SendAs(ctx, msg.ChannelID, AuthorOf(msg), content)
	if err != nil {
		return nil, err
	}

	// only once the copy is posted, otherwise the message would be lost
	if err := r.messages.DeleteMessage(ctx, msg.ChannelID, msg.ID, ""); err != nil {
		return sent, err
	}

	return sent, nil
}

// SendAs posts content to a channel through the bot's webhook, using the
// author's name and avatar. Only user mentions are allowed to ping.
func (r *Replacer) SendAs(ctx context.Context, channelID snowflake.ID, author Author, content string) (*discord.Message, error) {
	webhook, err := r.webhook(ctx, channelID)
	if err != nil {
		return nil, err
	}

	sent, err := r.webhooks.ExecuteWebhook(ctx, webhook, discord.WebhookMessageCreate{
		Content:   content,
		Username:  author.Name,
		AvatarURL: author.AvatarURL,
		AllowedMentions: &discord.AllowedMentions{
			Parse: []discord.AllowedMentionType{discord.AllowedMentionTypeUsers},
		},
	})
	if err != nil {
		// the webhook may have been deleted, look it up again next time
		r.cache.Delete(channelID)
		return nil, err
	}

	return sent, nil
}

// EnsureWebhook finds or creates the bot's webhook in a channel.
func (r *Replacer) EnsureWebhook(ctx context.Context, channelID snowflake.ID) error {
	_, err := r.webhook(ctx, channelID)

	return err
}

func (r *Replacer) webhook(ctx context.Context, channelID snowflake.ID) (platform.Webhook, error) {
	if cached, ok := r.cache.Load(channelID); ok {
		return cached.(platform.Webhook), nil
	}

	v, err, _ := r.lookups.Do(channelID.String(), func() (interface{}, error) {
		if cached, ok := r.cache.Load(channelID); ok {
			return cached.(platform.Webhook), nil
		}

		hook, err := r.findOrCreateWebhook(ctx, channelID)
		if err != nil {
			return nil, err
		}
		r.cache.Store(channelID, hook)

		return hook, nil
	})
	if err != nil {
		return platform.Webhook{}, err
	}

	return v.(platform.Webhook), nil
}

func (r *Replacer) findOrCreateWebhook(ctx context.Context, channelID snowflake.ID) (platform.Webhook, error) {
	hooks, err := r.webhooks.ChannelWebhooks(ctx, channelID)
	if err != nil {
		return platform.Webhook{}, err
	}

	for _, hook := range hooks {
		if hook.Name == constants.WebhookName && hook.Token != "" {
			return hook, nil
		}
	}

	created, err := r.webhooks.CreateWebhook(ctx, channelID, constants.WebhookName)
	if err != nil {
		return platform.Webhook{}, err
	}

	return *created, nil
}
