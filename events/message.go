package events

import (
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/platform"
)

func MessageCreate(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if d.Commands.Handle(d.Ctx, e.Message) {
			return
		}

		replace(d, e.Message)
	})
}

func replace(d *Deps, msg discord.Message) {
	if _, err := d.Replacer.Replace(d.Ctx, msg); err != nil {
		log.Warn().
			Err(err).
			Str("channel", msg.ChannelID.String()).
			Msg("Couldn't replace emojis in message")
	}
}

// Glyph is how a reaction's emoji is compared: the character itself for
// unicode emojis and name:id for custom ones.
func Glyph(emoji discord.PartialEmoji) string {
	if emoji.ID == nil && emoji.Name != nil {
		return *emoji.Name
	}

	return emoji.Reaction()
}

func ReactionAdd(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMessageReactionAdd) {
		d.Reactions.Dispatch(e.MessageID, platform.Reaction{
			GuildID:   e.GuildID,
			ChannelID: e.ChannelID,
			MessageID: e.MessageID,
			UserID:    e.UserID,
			Bot:       e.Member.User.Bot,
			Emoji:     Glyph(e.Emoji),
		})
	})
}
