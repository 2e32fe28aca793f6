package emoji

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/platform/platformtest"
)

const (
	otherGuildID = 200
	channelID    = 300
	authorID     = 400
)

type failingSettings struct{}

func (failingSettings) Get(context.Context, snowflake.ID) (database.Settings, error) {
	return database.Settings{}, errors.New("no such field")
}

func (failingSettings) Update(context.Context, snowflake.ID, database.SettingsPatch) error {
	return errors.New("read only")
}

func setupReplacer(t *testing.T) (*Replacer, *platformtest.Fake, *database.MemorySettings) {
	t.Helper()

	fake := platformtest.New(botID)
	directory := NewDirectory()
	directory.Seed(guildID, []discord.Emoji{
		{ID: 10, Name: "pog", Available: true},
	})
	directory.Seed(otherGuildID, []discord.Emoji{
		{ID: 20, Name: "kekw", Animated: true, Available: true},
		{ID: 21, Name: "pog", Available: true},
		{ID: 22, Name: "gone", Available: false},
	})

	settings := database.NewMemorySettings()

	return NewReplacer(directory, settings, fake), fake, settings
}

func message(content string) discord.Message {
	guild := snowflake.ID(guildID)

	return discord.Message{
		ID:        snowflake.ID(500),
		ChannelID: channelID,
		GuildID:   &guild,
		Content:   content,
		Author:    discord.User{ID: authorID, Username: "alice", Discriminator: "0"},
	}
}

func TestRewrite(t *testing.T) {
	replacer, _, _ := setupReplacer(t)

	tests := []struct {
		name  string
		in    string
		want  string
		count int
	}{
		{name: "no tokens", in: "hello there", want: "hello there", count: 0},
		{name: "current guild first", in: ":pog:", want: "<:pog:10>", count: 1},
		{name: "other guilds", in: "lol :kekw:", want: "lol <a:kekw:20>", count: 1},
		{name: "misses stay", in: ":nope: :pog:", want: ":nope: <:pog:10>", count: 1},
		{name: "unavailable skipped", in: ":gone:", want: ":gone:", count: 0},
		{name: "separators kept", in: "a  :pog:\n\t:kekw: b", want: "a  <:pog:10>\n\t<a:kekw:20> b", count: 2},
		{name: "token must be whole", in: "x:pog: :pog:y", want: "x:pog: :pog:y", count: 0},
		{name: "case insensitive fallback", in: ":POG:", want: "<:pog:10>", count: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, count := replacer.Rewrite(tt.in, guildID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.count, count)
		})
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()

	t.Run("no tokens is a no-op", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)

		sent, err := replacer.Replace(ctx, message("just chatting"))
		require.NoError(t, err)
		assert.Nil(t, sent)
		assert.Zero(t, fake.CallCount("execute webhook"))
		assert.Zero(t, fake.CallCount("delete message"))
	})

	t.Run("unresolved tokens is a no-op", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)

		sent, err := replacer.Replace(ctx, message(":nope: :gone: :missing:"))
		require.NoError(t, err)
		assert.Nil(t, sent)
		assert.Empty(t, fake.Calls())
	})

	t.Run("sends once then deletes once", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		msg := message("look :pog: and :kekw:")
		nick := "Alice"
		msg.Member = &discord.Member{Nick: &nick}

		sent, err := replacer.Replace(ctx, msg)
		require.NoError(t, err)
		require.NotNil(t, sent)

		calls := fake.Calls()
		assert.Equal(t, 1, fake.CallCount("execute webhook"))
		assert.Equal(t, 1, fake.CallCount("delete message"))
		assert.Equal(t, "delete message", calls[len(calls)-1])
		assert.Equal(t, "execute webhook", calls[len(calls)-2])

		require.Len(t, fake.Executed, 1)
		executed := fake.Executed[0]
		assert.Equal(t, "look <:pog:10> and <a:kekw:20>", executed.Message.Content)
		assert.Equal(t, "Alice", executed.Message.Username)
		assert.Equal(t, constants.WebhookName, executed.Webhook.Name)
		assert.Equal(t, []discord.AllowedMentionType{discord.AllowedMentionTypeUsers}, executed.Message.AllowedMentions.Parse)
		assert.Equal(t, []snowflake.ID{msg.ID}, fake.Deleted)
	})

	t.Run("send failure keeps the original", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		fake.FailOn("execute webhook", errors.New("Unknown Webhook"))

		_, err := replacer.Replace(ctx, message(":pog:"))
		assert.Error(t, err)
		assert.Zero(t, fake.CallCount("delete message"))
	})

	t.Run("webhook is reused", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		fake.AddWebhook(platform.Webhook{ID: 900, ChannelID: channelID, Name: "someone else's", Token: "t"})

		for i := 0; i < 3; i++ {
			_, err := replacer.Replace(ctx, message(":pog:"))
			require.NoError(t, err)
		}

		assert.Equal(t, 1, fake.CallCount("create webhook"))
		assert.Equal(t, 1, fake.CallCount("get webhooks"))
		for _, executed := range fake.Executed {
			assert.NotEqual(t, snowflake.ID(900), executed.Webhook.ID)
		}
	})

	t.Run("existing bot webhook is found", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		fake.AddWebhook(platform.Webhook{ID: 901, ChannelID: channelID, Name: constants.WebhookName, Token: "t"})

		_, err := replacer.Replace(ctx, message(":pog:"))
		require.NoError(t, err)

		assert.Zero(t, fake.CallCount("create webhook"))
		assert.Equal(t, snowflake.ID(901), fake.Executed[0].Webhook.ID)
	})

	t.Run("ignored authors", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		replacer.AuthorFilter = SkipLegacyTags

		bot := message(":pog:")
		bot.Author.Bot = true

		hooked := message(":pog:")
		webhookID := snowflake.ID(901)
		hooked.WebhookID = &webhookID

		legacy := message(":pog:")
		legacy.Author.Discriminator = "1234"

		dm := message(":pog:")
		dm.GuildID = nil

		for _, msg := range []discord.Message{bot, hooked, legacy, dm} {
			sent, err := replacer.Replace(ctx, msg)
			require.NoError(t, err)
			assert.Nil(t, sent)
		}
		assert.Empty(t, fake.Calls())
	})

	t.Run("disabled in settings", func(t *testing.T) {
		replacer, fake, settings := setupReplacer(t)
		off := false
		require.NoError(t, settings.Update(ctx, guildID, database.SettingsPatch{ReplaceEmojis: &off}))

		sent, err := replacer.Replace(ctx, message(":pog:"))
		require.NoError(t, err)
		assert.Nil(t, sent)
		assert.Empty(t, fake.Calls())
	})

	t.Run("settings error uses defaults", func(t *testing.T) {
		replacer, fake, _ := setupReplacer(t)
		replacer.settings = failingSettings{}

		sent, err := replacer.Replace(ctx, message(":pog:"))
		require.NoError(t, err)
		assert.NotNil(t, sent)
		assert.Equal(t, 1, fake.CallCount("execute webhook"))
	})
}

func TestDirectory(t *testing.T) {
	t.Run("update reports additions only", func(t *testing.T) {
		d := NewDirectory()
		d.Seed(guildID, []discord.Emoji{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})

		added := d.Update(guildID, []discord.Emoji{{ID: 2, Name: "b"}, {ID: 4, Name: "d"}, {ID: 3, Name: "c"}})

		require.Len(t, added, 2)
		assert.Equal(t, snowflake.ID(3), added[0].ID)
		assert.Equal(t, snowflake.ID(4), added[1].ID)
		assert.Equal(t, snowflake.ID(guildID), added[0].GuildID)
	})

	t.Run("unseeded guild reports nothing", func(t *testing.T) {
		d := NewDirectory()

		assert.Empty(t, d.Update(guildID, []discord.Emoji{{ID: 1, Name: "a"}}))
		assert.Len(t, d.Guild(guildID), 1)
	})

	t.Run("lookup prefers the current guild", func(t *testing.T) {
		d := NewDirectory()
		d.Seed(1, []discord.Emoji{{ID: 10, Name: "pog", Available: true}})
		d.Seed(2, []discord.Emoji{{ID: 20, Name: "pog", Available: true}})

		e, ok := d.Lookup("pog", 2)
		require.True(t, ok)
		assert.Equal(t, snowflake.ID(20), e.ID)

		e, ok = d.Lookup("pog", 3)
		require.True(t, ok)
		assert.Equal(t, snowflake.ID(10), e.ID)

		d.Forget(1)
		e, ok = d.Lookup("pog", 3)
		require.True(t, ok)
		assert.Equal(t, snowflake.ID(20), e.ID)
		assert.Equal(t, 1, d.GuildCount())
	})

	t.Run("search and random", func(t *testing.T) {
		d := NewDirectory()
		d.Seed(1, []discord.Emoji{
			{ID: 10, Name: "catJAM", Available: true},
			{ID: 11, Name: "dog", Available: true},
			{ID: 12, Name: "bigcat", Available: true},
			{ID: 13, Name: "cathidden", Available: false},
		})

		results := d.Search("CAT")
		require.Len(t, results, 2)
		assert.Equal(t, "bigcat", results[0].Name)
		assert.Equal(t, "catJAM", results[1].Name)

		e, ok := d.Random()
		require.True(t, ok)
		assert.True(t, e.Available)

		_, ok = NewDirectory().Random()
		assert.False(t, ok)
	})

	t.Run("add and remove", func(t *testing.T) {
		d := NewDirectory()
		d.Seed(1, nil)
		d.Add(discord.Emoji{ID: 10, GuildID: 1, Name: "pog", Available: true})
		assert.Equal(t, 1, d.EmojiCount())

		_, ok := d.Get(10)
		assert.True(t, ok)

		d.Remove(1, 10)
		assert.Zero(t, d.EmojiCount())
	})
}

// slowWebhooks makes the webhook lookup take long enough for concurrent
// messages to overlap.
type slowWebhooks struct {
	*platformtest.Fake
}

func (s slowWebhooks) ChannelWebhooks(ctx context.Context, channelID snowflake.ID) ([]platform.Webhook, error) {
	time.Sleep(20 * time.Millisecond)

	return s.Fake.ChannelWebhooks(ctx, channelID)
}

func TestConcurrentWebhookCreation(t *testing.T) {
	replacer, fake, _ := setupReplacer(t)
	replacer.webhooks = slowWebhooks{Fake: fake}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, replacer.EnsureWebhook(context.Background(), channelID))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fake.CallCount("create webhook"))

	hooks, err := fake.ChannelWebhooks(context.Background(), channelID)
	require.NoError(t, err)
	assert.Len(t, hooks, 1)
}
