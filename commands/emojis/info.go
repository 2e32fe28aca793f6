package emojis

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/utils"
)

const maxLinks = 3

var digitNames = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func Info(c *cmdutil.Context) error {
	if len(c.Args) != 1 {
		return utils.NewUserInputError("Give me one emoji from this server.")
	}

	e, err := c.GuildEmoji(c.Args[0])
	if err != nil {
		return err
	}

	createdBy := "Unknown"
	if full, err := c.Client.GetEmoji(c.Ctx, c.GuildID, e.ID); err == nil && full.Creator != nil {
		createdBy = full.Creator.Mention()
	}

	embed := discord.Embed{
		Title:     fmt.Sprintf("`:%v:`", e.Name),
		Color:     constants.Colors.Main,
		Thumbnail: json.Ptr(discord.EmbedResource{URL: e.URL()}),
		Fields: []discord.EmbedField{
			{Name: "ID", Value: e.ID.String(), Inline: json.Ptr(true)},
			{Name: "Usage", Value: fmt.Sprintf("`%v`", e.Mention()), Inline: json.Ptr(true)},
			{Name: "Created at", Value: fmt.Sprintf("<t:%d:F>", e.ID.Time().Unix()), Inline: json.Ptr(true)},
			{Name: "Created by", Value: createdBy, Inline: json.Ptr(true)},
			{Name: "Animated", Value: utils.ReadableBool(e.Animated, "Yes", "No"), Inline: json.Ptr(true)},
			{Name: "URL", Value: fmt.Sprintf("[Link](%v)", e.URL()), Inline: json.Ptr(true)},
		},
	}

	_, err = c.Reply(embed)

	return err
}

// Link shows up to three emojis at full size.
func Link(c *cmdutil.Context) error {
	if len(c.Args) == 0 {
		return utils.NewUserInputError("Give me at least one emoji.")
	}
	if len(c.Args) > maxLinks {
		return utils.NewUserInputError("I can only show %d emojis at once.", maxLinks)
	}

	embeds := make([]discord.Embed, 0, len(c.Args))
	for _, arg := range c.Args {
		e, err := c.Emoji(arg)
		if err != nil {
			return err
		}

		embeds = append(embeds, discord.Embed{
			Title: fmt.Sprintf("`:%v:`", e.Name),
			URL:   e.URL(),
			Color: constants.Colors.Main,
			Image: json.Ptr(discord.EmbedResource{URL: e.URL()}),
		})
	}

	_, err := c.Reply(embeds...)

	return err
}

// Regional turns text into regional indicator emojis. Anything that isn't a
// letter, a digit or a space is dropped.
func Regional(text string) string {
	var parts []string
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z':
			parts = append(parts, fmt.Sprintf(":regional_indicator_%c:", r))
		case r >= '0' && r <= '9':
			parts = append(parts, ":"+digitNames[r-'0']+":")
		case unicode.IsSpace(r):
			parts = append(parts, ":black_large_square:")
		}
	}

	return strings.Join(parts, " ")
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Emojify says the sentence in regional indicators, posted under the author's
// name.
func Emojify(c *cmdutil.Context) error {
	if !strings.ContainsFunc(c.RawArgs, isAlnum) {
		return utils.NewUserInputError("Give me some letters or numbers to emojify.")
	}

	text := Regional(strings.TrimSpace(c.RawArgs))
	if len(text) > 2000 {
		return utils.NewUserInputError("That's too long to emojify.")
	}

	_, err := c.Replacer.SendAs(c.Ctx, c.ChannelID(), emoji.AuthorOf(c.Message), text)

	return err
}
