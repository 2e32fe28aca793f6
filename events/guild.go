package events

import (
	"context"
	"sort"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/passivity/emojis/config"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/langs"
)

const webhookWorkers = 4

// seed loads the guild's emojis into the directory.
func seed(d *Deps, guildID snowflake.ID) bool {
	emojis, err := d.Client.GuildEmojis(d.Ctx, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID.String()).Msg("Couldn't load guild emojis")
		return false
	}

	d.Directory.Seed(guildID, emojis)

	return true
}

func GuildReady(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildReady) {
		if !seed(d, e.GuildID) {
			return
		}

		d.Queue.Resume(d.Ctx, e.GuildID)
	})
}

func GuildJoin(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildJoin) {
		log.Info().Str("guild", e.GuildID.String()).Msg("Joined guild")

		seed(d, e.GuildID)
		Welcome(d.Ctx, d, e.GuildID)
	})
}

// Welcome greets a new guild in the first channel that takes the message and
// creates the webhook used to post emojis in every text channel.
func Welcome(ctx context.Context, d *Deps, guildID snowflake.ID) {
	channels, err := d.Client.TextChannels(ctx, guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID.String()).Msg("Couldn't list channels of new guild")
		return
	}

	sort.SliceStable(channels, func(i, j int) bool {
		return channels[i].Position < channels[j].Position
	})

	text := langs.Default().Event("guildJoin")
	p := config.DefaultPrefix
	welcome := discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       text.Get("title"),
			Color:       constants.Colors.Main,
			Description: text.Getf("description", p, p, p, p),
		}},
	}

	for _, ch := range channels {
		if _, err := d.Client.SendMessage(ctx, ch.ID, welcome); err == nil {
			break
		}
	}

	workers := pool.New().WithMaxGoroutines(webhookWorkers)
	for _, ch := range channels {
		ch := ch

		workers.Go(func() {
			if err := d.Replacer.EnsureWebhook(ctx, ch.ID); err != nil {
				log.Debug().Err(err).Str("channel", ch.ID.String()).Msg("Couldn't create webhook")
			}
		})
	}
	workers.Wait()
}

func GuildLeave(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildLeave) {
		log.Info().Str("guild", e.GuildID.String()).Msg("Left guild")

		d.Directory.Forget(e.GuildID)
	})
}

func EmojisUpdate(d *Deps) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.EmojisUpdate) {
		added := d.Directory.Update(e.GuildID, e.Emojis)
		if len(added) == 0 {
			return
		}

		d.Queue.HandleAdded(d.Ctx, e.GuildID, added)
	})
}
