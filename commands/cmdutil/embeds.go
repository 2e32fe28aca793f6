package cmdutil

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"

	"github.com/passivity/emojis/constants"
)

func SuccessEmbed(description string) discord.Embed {
	return discord.Embed{
		Color:       constants.Colors.Good,
		Description: fmt.Sprintf("%v %v", constants.Emojis.Good, description),
	}
}

func ErrorEmbed(description string) discord.Embed {
	return discord.Embed{
		Color:       constants.Colors.Error,
		Description: fmt.Sprintf("%v %v", constants.Emojis.Error, description),
	}
}

func InfoEmbed(title string, description string) discord.Embed {
	return discord.Embed{
		Title:       title,
		Color:       constants.Colors.Main,
		Description: description,
	}
}

// AuthorEmbed is an embed signed with the name and avatar of whoever ran the
// command.
func AuthorEmbed(ctx *Context, embed discord.Embed) discord.Embed {
	embed.Author = json.Ptr(discord.EmbedAuthor{
		Name:    ctx.Author().EffectiveName(),
		IconURL: ctx.Author().EffectiveAvatarURL(),
	})

	return embed
}
