package cmdutil

import (
	"context"
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/platform/platformtest"
	"github.com/passivity/emojis/utils"
)

const (
	botID        snowflake.ID = 1
	guildID      snowflake.ID = 100
	otherGuildID snowflake.ID = 200
	channelID    snowflake.ID = 300
	userID       snowflake.ID = 400
)

func newContext(fake *platformtest.Fake, directory *emoji.Directory) *Context {
	return &Context{
		Ctx: context.Background(),
		Services: &Services{
			Client:    fake,
			Directory: directory,
		},
		GuildID: guildID,
		Message: discord.Message{
			ChannelID: channelID,
			Author:    discord.User{ID: userID, Username: "user"},
		},
		Prefix:  ">",
		Command: &Command{Name: "rename", Usage: "rename [emoji] [new name]"},
	}
}

func TestParseEmojiMention(t *testing.T) {
	e, ok := ParseEmojiMention("<:pog:123>")
	require.True(t, ok)
	assert.Equal(t, "pog", e.Name)
	assert.Equal(t, snowflake.ID(123), e.ID)
	assert.False(t, e.Animated)

	e, ok = ParseEmojiMention("<a:party_blob:456>")
	require.True(t, ok)
	assert.True(t, e.Animated)

	for _, arg := range []string{"pog", ":pog:", "<:pog:abc>", "<@123>", "<:p:123>"} {
		_, ok := ParseEmojiMention(arg)
		assert.False(t, ok, arg)
	}
}

func TestEmoji(t *testing.T) {
	directory := emoji.NewDirectory()
	directory.Seed(otherGuildID, []discord.Emoji{
		{ID: 10, Name: "pog", Available: true},
		{ID: 11, Name: "Kek", Available: true},
	})
	directory.Seed(guildID, []discord.Emoji{{ID: 20, Name: "pog", Available: true}})
	c := newContext(platformtest.New(botID), directory)

	tests := []struct {
		arg    string
		wantID snowflake.ID
	}{
		{arg: "<:anything:99>", wantID: 99},
		{arg: "10", wantID: 10},
		{arg: "pog", wantID: 20},
		{arg: ":pog:", wantID: 20},
		{arg: "kek", wantID: 11},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			e, err := c.Emoji(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, e.ID)
		})
	}

	t.Run("unicode", func(t *testing.T) {
		_, err := c.Emoji("😀")

		var inputErr *utils.UserInputError
		assert.ErrorAs(t, err, &inputErr)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := c.Emoji("nope")

		var notFound *utils.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.Query)
	})
}

func TestGuildEmoji(t *testing.T) {
	fake := platformtest.New(botID)
	pog := fake.AddEmoji(guildID, "pog", 0)
	fake.AddEmoji(otherGuildID, "kek", 0)
	c := newContext(fake, emoji.NewDirectory())

	for _, arg := range []string{"pog", "POG", ":pog:", pog.ID.String(), pog.Mention()} {
		e, err := c.GuildEmoji(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, pog.ID, e.ID)
		assert.Equal(t, guildID, e.GuildID)
	}

	_, err := c.GuildEmoji("kek")
	var notFound *utils.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = c.GuildEmoji("<:kek:987654>")
	var inputErr *utils.UserInputError
	assert.ErrorAs(t, err, &inputErr)
}

func TestChannel(t *testing.T) {
	fake := platformtest.New(botID)
	fake.AddChannel(guildID, platform.Channel{ID: channelID, Name: "general"})
	c := newContext(fake, emoji.NewDirectory())

	id, err := c.Channel("<#300>")
	require.NoError(t, err)
	assert.Equal(t, channelID, id)

	id, err = c.Channel("300")
	require.NoError(t, err)
	assert.Equal(t, channelID, id)

	_, err = c.Channel("general")
	var inputErr *utils.UserInputError
	assert.ErrorAs(t, err, &inputErr)

	_, err = c.Channel("<#301>")
	var notFound *utils.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUser(t *testing.T) {
	fake := platformtest.New(botID)
	fake.AddUser(discord.User{ID: 500, Username: "mod"})
	c := newContext(fake, emoji.NewDirectory())

	u, err := c.User("<@!500>")
	require.NoError(t, err)
	assert.Equal(t, "mod", u.Username)

	lookups := fake.CallCount("get user")
	u, err = c.User("<@400>")
	require.NoError(t, err)
	assert.Equal(t, "user", u.Username)
	assert.Equal(t, lookups, fake.CallCount("get user"), "the author is taken from the message")

	_, err = c.User("<@600>")
	var notFound *utils.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestBool(t *testing.T) {
	for _, arg := range []string{"on", "ON", "enable", "yes", "true", "1"} {
		b, err := Bool(arg)
		require.NoError(t, err, arg)
		assert.True(t, b, arg)
	}

	for _, arg := range []string{"off", "disabled", "no", "false", "0"} {
		b, err := Bool(arg)
		require.NoError(t, err, arg)
		assert.False(t, b, arg)
	}

	_, err := Bool("maybe")
	assert.Error(t, err)
}

func TestHasPermissions(t *testing.T) {
	fake := platformtest.New(botID)
	c := newContext(fake, emoji.NewDirectory())

	fake.SetPermissions(userID, discord.PermissionManageGuildExpressions)
	ok, err := c.HasPermissions(discord.PermissionManageGuildExpressions)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.HasPermissions(discord.PermissionManageGuild)
	require.NoError(t, err)
	assert.False(t, ok)

	fake.SetPermissions(userID, discord.PermissionAdministrator)
	ok, err = c.HasPermissions(discord.PermissionManageGuild)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsageString(t *testing.T) {
	c := newContext(platformtest.New(botID), emoji.NewDirectory())

	assert.Equal(t, ">rename [emoji] [new name]", c.UsageString())

	cmd := &Command{Name: "upload", Aliases: []string{"steal"}}
	assert.True(t, cmd.Invoked("STEAL"))
	assert.True(t, cmd.Invoked("upload"))
	assert.False(t, cmd.Invoked("up"))
}
