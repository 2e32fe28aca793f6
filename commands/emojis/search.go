package emojis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

var controls = []string{
	constants.Emojis.Previous,
	constants.Emojis.Select,
	constants.Emojis.Next,
	constants.Emojis.Shuffle,
}

func randIndex(n int) int {
	return rand.Intn(n)
}

// Search shows the emojis matching a query one at a time. The author flips
// through them with reactions and uploads the ones they like.
func Search(c *cmdutil.Context) error {
	query := strings.Trim(c.RawArgs, ": ")
	if query == "" {
		return utils.NewUserInputError("You need to give something to search for.")
	}

	results := c.Directory.Search(query)
	if len(results) == 0 {
		return &utils.NotFoundError{What: "emoji matching", Query: query}
	}

	b := &browser{c: c, query: query, results: results}

	return b.run()
}

type browser struct {
	c       *cmdutil.Context
	query   string
	results []discord.Emoji
	page    int

	message snowflake.ID
}

func (b *browser) current() discord.Emoji {
	return b.results[b.page]
}

func (b *browser) embed() discord.Embed {
	e := b.current()

	return discord.Embed{
		Title:       fmt.Sprintf("Results for `%v`", utils.Truncate(b.query, 50)),
		Color:       constants.Colors.Main,
		Description: fmt.Sprintf("`:%v:`\nReact with %v to upload it.", e.Name, constants.Emojis.Select),
		Image:       json.Ptr(discord.EmbedResource{URL: e.URL()}),
		Footer: json.Ptr(discord.EmbedFooter{
			Text: fmt.Sprintf("%d/%d", b.page+1, len(b.results)),
		}),
	}
}

func (b *browser) filter(r platform.Reaction) bool {
	if r.MessageID != b.message || r.UserID != b.c.Author().ID {
		return false
	}

	for _, glyph := range controls {
		if r.Emoji == glyph {
			return true
		}
	}

	return false
}

func (b *browser) run() error {
	msg, err := b.c.Reply(b.embed())
	if err != nil {
		return err
	}
	b.message = msg.ID

	waiter := b.c.Reactions.Listen(b.message, b.filter)
	for _, glyph := range controls {
		if err := b.c.Client.AddReaction(b.c.Ctx, msg.ChannelID, msg.ID, glyph); err != nil {
			waiter.Cancel()
			return err
		}
	}

	for {
		r, err := b.wait(waiter)
		if errors.Is(err, utils.ErrTimeout) {
			b.timedOut()
			return nil
		}
		if err != nil {
			return err
		}

		switch r.Emoji {
		case constants.Emojis.Previous:
			b.page = (b.page - 1 + len(b.results)) % len(b.results)
		case constants.Emojis.Next:
			b.page = (b.page + 1) % len(b.results)
		case constants.Emojis.Shuffle:
			b.page = randIndex(len(b.results))
		case constants.Emojis.Select:
			b.upload()
		}

		waiter = b.c.Reactions.Listen(b.message, b.filter)

		// needs Manage Messages, without it the author reacts twice
		_ = b.c.Client.RemoveUserReaction(b.c.Ctx, msg.ChannelID, msg.ID, r.Emoji, r.UserID)

		if r.Emoji != constants.Emojis.Select {
			if _, err := b.c.Client.EditMessage(b.c.Ctx, msg.ChannelID, msg.ID, discord.MessageUpdate{
				Embeds: &[]discord.Embed{b.embed()},
			}); err != nil {
				waiter.Cancel()
				return err
			}
		}
	}
}

func (b *browser) wait(waiter *utils.Waiter[platform.Reaction]) (platform.Reaction, error) {
	ctx := b.c.Ctx
	if b.c.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.c.BrowseTimeout)
		defer cancel()
	}

	r, err := waiter.Wait(ctx)
	if err != nil && b.c.Ctx.Err() != nil {
		return r, b.c.Ctx.Err()
	}

	return r, err
}

func (b *browser) upload() {
	e := b.current()

	_, err := b.c.Installer.Install(b.c.Ctx, b.c.Target(), e.Name, e.URL())
	if err == nil {
		return
	}

	text, expected := utils.UserMessage(err)
	if !expected {
		log.Error().Err(err).Str("guild", b.c.GuildID.String()).Msgf(`Couldn't upload "%v" from search`, e.Name)
	}

	if _, err := b.c.Reply(cmdutil.ErrorEmbed(text)); err != nil {
		log.Warn().Err(err).Msg("Couldn't report search upload failure")
	}
}

func (b *browser) timedOut() {
	embed := b.embed()
	embed.Color = constants.Colors.Info
	embed.Description = "This search timed out."

	if _, err := b.c.Client.EditMessage(context.WithoutCancel(b.c.Ctx), b.c.ChannelID(), b.message, discord.MessageUpdate{
		Embeds: &[]discord.Embed{embed},
	}); err != nil {
		log.Warn().Err(err).Msg("Couldn't mark search as timed out")
	}
}
