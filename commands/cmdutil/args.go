package cmdutil

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/forPelevin/gomoji"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/utils"
)

// ParseEmojiMention parses <:name:id> and <a:name:id>.
func ParseEmojiMention(arg string) (discord.Emoji, bool) {
	match := constants.DiscordEmojiRegex.FindStringSubmatch(arg)
	if match == nil {
		return discord.Emoji{}, false
	}

	id, err := snowflake.Parse(match[3])
	if err != nil {
		return discord.Emoji{}, false
	}

	return discord.Emoji{
		ID:        id,
		Name:      match[2],
		Animated:  match[1] == "a",
		Available: true,
	}, true
}

func rejectUnicode(arg string) error {
	ascii := true
	for _, r := range arg {
		if r > unicode.MaxASCII {
			ascii = false
			break
		}
	}

	if !ascii && len(gomoji.FindAll(arg)) > 0 {
		return utils.NewUserInputError("%v is a default emoji, only custom emojis work here.", arg)
	}

	return nil
}

// Emoji resolves an argument to any custom emoji: a mention, an id or a name
// of an emoji the bot can see, preferring this guild's.
func (c *Context) Emoji(arg string) (discord.Emoji, error) {
	if e, ok := ParseEmojiMention(arg); ok {
		return e, nil
	}

	if id, err := snowflake.Parse(arg); err == nil {
		if e, ok := c.Directory.Get(id); ok {
			return e, nil
		}
	}

	if err := rejectUnicode(arg); err != nil {
		return discord.Emoji{}, err
	}

	name := strings.Trim(arg, ":")
	if e, ok := c.Directory.Lookup(name, c.GuildID); ok {
		return e, nil
	}

	return discord.Emoji{}, &utils.NotFoundError{What: "emoji", Query: name}
}

// GuildEmoji resolves an argument to an emoji of this guild, asking Discord
// for the current list.
func (c *Context) GuildEmoji(arg string) (discord.Emoji, error) {
	if err := rejectUnicode(arg); err != nil {
		return discord.Emoji{}, err
	}

	emojis, err := c.Client.GuildEmojis(c.Ctx, c.GuildID)
	if err != nil {
		return discord.Emoji{}, err
	}

	var id snowflake.ID
	if e, ok := ParseEmojiMention(arg); ok {
		id = e.ID
	} else if parsed, err := snowflake.Parse(arg); err == nil {
		id = parsed
	}

	name := strings.Trim(arg, ":")
	for _, match := range []func(e discord.Emoji) bool{
		func(e discord.Emoji) bool { return id != 0 && e.ID == id },
		func(e discord.Emoji) bool { return e.Name == name },
		func(e discord.Emoji) bool { return strings.EqualFold(e.Name, name) },
	} {
		for _, e := range emojis {
			if match(e) {
				e.GuildID = c.GuildID
				return e, nil
			}
		}
	}

	if id != 0 {
		return discord.Emoji{}, utils.NewUserInputError("That emoji isn't from this server.")
	}

	return discord.Emoji{}, &utils.NotFoundError{What: "emoji", Query: name}
}

// Channel resolves a channel mention or id to a text channel of this guild.
func (c *Context) Channel(arg string) (snowflake.ID, error) {
	raw := arg
	if match := constants.ChannelMentionRegex.FindStringSubmatch(arg); match != nil {
		raw = match[1]
	}

	id, err := snowflake.Parse(raw)
	if err != nil {
		return 0, utils.NewUserInputError("`%v` isn't a channel.", arg)
	}

	channels, err := c.Client.TextChannels(c.Ctx, c.GuildID)
	if err != nil {
		return 0, err
	}

	for _, ch := range channels {
		if ch.ID == id {
			return id, nil
		}
	}

	return 0, &utils.NotFoundError{What: "channel", Query: arg}
}

// User resolves a user mention or id.
func (c *Context) User(arg string) (discord.User, error) {
	raw := arg
	if match := constants.UserMentionRegex.FindStringSubmatch(arg); match != nil {
		raw = match[1]
	}

	id, err := snowflake.Parse(raw)
	if err != nil {
		return discord.User{}, utils.NewUserInputError("`%v` isn't a user.", arg)
	}

	if id == c.Author().ID {
		return c.Author(), nil
	}

	user, err := c.Client.GetUser(c.Ctx, id)
	if err != nil {
		return discord.User{}, &utils.NotFoundError{What: "user", Query: arg}
	}

	return *user, nil
}

// Bool parses on/off style toggles.
func Bool(arg string) (bool, error) {
	switch strings.ToLower(arg) {
	case "on", "enable", "enabled", "yes":
		return true, nil
	case "off", "disable", "disabled", "no":
		return false, nil
	}

	b, err := strconv.ParseBool(arg)
	if err != nil {
		return false, utils.NewUserInputError("`%v` isn't on or off.", arg)
	}

	return b, nil
}
