// Package settings has the commands that configure the bot for a guild.
package settings

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/langs"
	"github.com/passivity/emojis/utils"
)

const MaxPrefixLength = 10

func Commands() []*cmdutil.Command {
	return []*cmdutil.Command{
		{
			Name:        "prefix",
			Description: "See or change the prefix of this server.",
			Usage:       "prefix <new prefix>",
			Category:    cmdutil.CategorySettings,
			Permissions: discord.PermissionManageGuild,
			Cooldown:    3 * time.Second,
			Handler:     Prefix,
		},
		{
			Name:        "queue",
			Aliases:     []string{"approval"},
			Description: "Send new emojis to a channel where moderators approve or deny them.",
			Usage:       "queue <enable #channel|disable>",
			Category:    cmdutil.CategorySettings,
			Permissions: discord.PermissionManageGuild,
			Cooldown:    3 * time.Second,
			Handler:     Queue,
		},
		{
			Name:        "replace",
			Aliases:     []string{"nqn"},
			Description: "Turn replacing of emojis like `:name:` in messages on or off.",
			Usage:       "replace <on|off>",
			Category:    cmdutil.CategorySettings,
			Permissions: discord.PermissionManageGuild,
			Cooldown:    3 * time.Second,
			Handler:     Replace,
		},
	}
}

func Prefix(c *cmdutil.Context) error {
	text := langs.Default().Command("prefix")

	prefix := strings.TrimSpace(c.RawArgs)
	if prefix == "" {
		_, err := c.Reply(cmdutil.InfoEmbed(text.Get("title"), text.Getf("current", c.Prefix)))
		return err
	}

	if strings.ContainsAny(prefix, " \n\t") {
		return utils.NewUserInputError("%s", text.Get("noSpaces"))
	}
	if utf8.RuneCountInString(prefix) > MaxPrefixLength {
		return utils.NewUserInputError("%s", text.Getf("tooLong", MaxPrefixLength))
	}

	if err := c.Services.Settings.Update(c.Ctx, c.GuildID, database.SettingsPatch{Prefix: json.Ptr(prefix)}); err != nil {
		return err
	}

	return c.Success(text.Getf("updated", prefix))
}

func Queue(c *cmdutil.Context) error {
	text := langs.Default().Command("queue")

	switch strings.ToLower(c.Arg(0)) {
	case "":
		status := text.Get("disabled")
		if c.GuildSettings.QueueChannelID != nil {
			status = text.Getf("enabled", *c.GuildSettings.QueueChannelID)
		}

		_, err := c.Reply(cmdutil.InfoEmbed(text.Get("title"), status))
		return err
	case "enable", "on", "set":
		if len(c.Args) != 2 {
			return utils.NewUserInputError("%s", text.Get("needsChannel"))
		}

		channelID, err := c.Channel(c.Args[1])
		if err != nil {
			return err
		}

		if err := c.Services.Settings.Update(c.Ctx, c.GuildID, database.SettingsPatch{QueueChannelID: &channelID}); err != nil {
			return err
		}

		return c.Success(text.Getf("enabled", channelID))
	case "disable", "off":
		if err := c.Services.Settings.Update(c.Ctx, c.GuildID, database.SettingsPatch{ClearQueueChannel: true}); err != nil {
			return err
		}

		return c.Success(text.Get("disabled"))
	default:
		return utils.NewUserInputError("%s", text.Getf("unknownOption", c.Arg(0)))
	}
}

func Replace(c *cmdutil.Context) error {
	text := langs.Default().Command("replace")

	if c.Arg(0) == "" {
		state := utils.ReadableBool(c.GuildSettings.ReplaceEmojis, "on", "off")
		_, err := c.Reply(cmdutil.InfoEmbed(text.Get("title"), text.Getf("current", state)))
		return err
	}

	on, err := cmdutil.Bool(c.Arg(0))
	if err != nil {
		return err
	}

	if err := c.Services.Settings.Update(c.Ctx, c.GuildID, database.SettingsPatch{ReplaceEmojis: &on}); err != nil {
		return err
	}

	return c.Success(text.Getf("updated", utils.ReadableBool(on, "on", "off")))
}
