// Package management has the commands that change emojis already in a guild.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

const maxDelete = 10

func Commands() []*cmdutil.Command {
	return []*cmdutil.Command{
		{
			Name:        "rename",
			Aliases:     []string{"rn"},
			Description: "Rename an emoji of this server.",
			Usage:       "rename [emoji] [new name]",
			Category:    cmdutil.CategoryManagement,
			Permissions: discord.PermissionManageGuildExpressions,
			Cooldown:    3 * time.Second,
			Handler:     Rename,
		},
		{
			Name:        "delete",
			Aliases:     []string{"remove", "del"},
			Description: "Delete emojis of this server, after you confirm.",
			Usage:       "delete [emoji] <emoji...>",
			Category:    cmdutil.CategoryManagement,
			Permissions: discord.PermissionManageGuildExpressions,
			Cooldown:    5 * time.Second,
			Handler:     Delete,
		},
	}
}

func reason(c *cmdutil.Context) string {
	return "By " + c.Author().Username
}

func Rename(c *cmdutil.Context) error {
	if len(c.Args) != 2 {
		return utils.NewUserInputError("Give me an emoji and its new name.")
	}

	e, err := c.GuildEmoji(c.Args[0])
	if err != nil {
		return err
	}

	name, err := emoji.SanitizeName(c.Args[1])
	if err != nil {
		return err
	}

	renamed, err := c.Client.RenameEmoji(c.Ctx, c.GuildID, e.ID, name, reason(c))
	if err != nil {
		return err
	}

	return c.Success(fmt.Sprintf("`:%v:` -> `:%v:`", e.Name, renamed.Name))
}

// Delete removes the emojis once the author confirms with a reaction.
func Delete(c *cmdutil.Context) error {
	if len(c.Args) == 0 {
		return utils.NewUserInputError("Give me at least one emoji to delete.")
	}
	if len(c.Args) > maxDelete {
		return utils.NewUserInputError("I can delete at most %d emojis at once.", maxDelete)
	}

	var targets []discord.Emoji
	seen := map[snowflake.ID]bool{}
	for _, arg := range c.Args {
		e, err := c.GuildEmoji(arg)
		if err != nil {
			return err
		}
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		targets = append(targets, e)
	}

	names := utils.Map(targets, func(e discord.Emoji) string {
		return fmt.Sprintf("%v `:%v:`", e.Mention(), e.Name)
	})

	prompt := cmdutil.InfoEmbed(
		"Delete emojis?",
		fmt.Sprintf("%v\n\nReact with %v to delete them.", strings.Join(names, "\n"), constants.Emojis.Approve),
	)
	prompt.Color = constants.Colors.Error

	msg, err := c.Reply(prompt)
	if err != nil {
		return err
	}

	waiter := c.Reactions.Listen(msg.ID, func(r platform.Reaction) bool {
		return r.UserID == c.Author().ID && r.Emoji == constants.Emojis.Approve
	})
	if err := c.Client.AddReaction(c.Ctx, msg.ChannelID, msg.ID, constants.Emojis.Approve); err != nil {
		log.Warn().Err(err).Msg("Couldn't add confirmation reaction")
	}

	ctx := c.Ctx
	if c.BrowseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.BrowseTimeout)
		defer cancel()
	}

	if _, err := waiter.Wait(ctx); err != nil {
		if errors.Is(err, utils.ErrTimeout) && c.Ctx.Err() == nil {
			_, err = c.Client.EditMessage(c.Ctx, msg.ChannelID, msg.ID, discord.MessageUpdate{
				Embeds: &[]discord.Embed{cmdutil.InfoEmbed("Delete emojis?", "Nothing was deleted.")},
			})
			return err
		}
		return err
	}

	var deleted, failed []string
	for _, e := range targets {
		if err := c.Client.DeleteEmoji(c.Ctx, c.GuildID, e.ID, reason(c)); err != nil {
			log.Debug().Err(err).Str("guild", c.GuildID.String()).Msgf(`Couldn't delete emoji "%v"`, e.Name)
			failed = append(failed, fmt.Sprintf("`:%v:`", e.Name))
			continue
		}
		c.Directory.Remove(c.GuildID, e.ID)
		deleted = append(deleted, fmt.Sprintf("`:%v:`", e.Name))
	}

	embed := cmdutil.SuccessEmbed("Deleted " + strings.Join(deleted, ", "))
	if len(deleted) == 0 {
		embed = cmdutil.ErrorEmbed("Couldn't delete " + strings.Join(failed, ", "))
	} else if len(failed) > 0 {
		embed.Description += "\nCouldn't delete " + strings.Join(failed, ", ")
	}

	_, err = c.Client.EditMessage(c.Ctx, msg.ChannelID, msg.ID, discord.MessageUpdate{
		Embeds: &[]discord.Embed{embed},
	})

	return err
}
