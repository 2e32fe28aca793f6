package information

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
)

func emojiPing(p int64) string {
	if p <= 90 {
		return "🟢"
	} else if p > 90 && p <= 150 {
		return "🟠"
	} else if p > 150 && p < 200 {
		return "🔴"
	} else {
		return "⚫"
	}
}

func latencyField(name string, d time.Duration) discord.EmbedField {
	return discord.EmbedField{
		Name:   name,
		Value:  fmt.Sprintf("%v ms (`%v`)", d.Milliseconds(), emojiPing(d.Milliseconds())),
		Inline: json.Ptr(true),
	}
}

var spacer = discord.EmbedField{
	Name:   " ",
	Value:  " ",
	Inline: json.Ptr(true),
}

func Ping(c *cmdutil.Context) error {
	msgTime := time.Now()
	msg, err := c.Reply(discord.Embed{
		Color:       constants.Colors.Main,
		Description: constants.Emojis.Waiting + " Pinging...",
	})
	if err != nil {
		return err
	}
	msgPing := time.Since(msgTime)

	restTime := time.Now()
	if _, err := c.Client.GetUser(c.Ctx, c.Client.SelfID()); err != nil {
		return err
	}
	restPing := time.Since(restTime)

	dbField := discord.EmbedField{Name: "📦 Database", Value: "Unavailable", Inline: json.Ptr(true)}
	if c.PingDatabase != nil {
		dbPing, err := c.PingDatabase(c.Ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Couldn't ping the database")
		} else {
			dbField = latencyField("📦 Database", dbPing)
		}
	}

	_, err = c.Client.EditMessage(c.Ctx, msg.ChannelID, msg.ID, discord.MessageUpdate{
		Embeds: json.Ptr([]discord.Embed{
			cmdutil.AuthorEmbed(c, discord.Embed{
				Title:       constants.BotName + " latency",
				Color:       constants.Colors.Main,
				Description: "These numbers are an approximation of the latency of the bot's connections.",
				Fields: []discord.EmbedField{
					latencyField("📤 Gateway", c.Client.Latency()),
					spacer,
					latencyField("📡 Discord API", restPing),
					latencyField("📨 Message delay", msgPing),
					spacer,
					dbField,
				},
			}),
		}),
	})

	return err
}
