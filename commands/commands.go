package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/commands/emojis"
	"github.com/passivity/emojis/commands/information"
	"github.com/passivity/emojis/commands/management"
	"github.com/passivity/emojis/commands/settings"
	"github.com/passivity/emojis/config"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/langs"
	"github.com/passivity/emojis/utils"
)

type permissionName struct {
	perm discord.Permissions
	name string
}

var permissionNames = []permissionName{
	{discord.PermissionAdministrator, "Administrator"},
	{discord.PermissionManageGuild, "Manage Server"},
	{discord.PermissionManageGuildExpressions, "Manage Expressions"},
	{discord.PermissionManageWebhooks, "Manage Webhooks"},
	{discord.PermissionManageMessages, "Manage Messages"},
}

// Handler parses prefix commands out of messages and runs them.
type Handler struct {
	services  *cmdutil.Services
	commands  []*cmdutil.Command
	cooldowns *utils.Cooldowns
}

func New(services *cmdutil.Services) *Handler {
	h := &Handler{
		services:  services,
		cooldowns: utils.NewCooldowns(),
	}

	for _, group := range [][]*cmdutil.Command{
		emojis.Commands(),
		management.Commands(),
		settings.Commands(),
		information.Commands(),
	} {
		h.commands = append(h.commands, group...)
	}

	services.Commands = h.Commands

	return h
}

func (h *Handler) Commands() []*cmdutil.Command {
	return h.commands
}

// Find looks a command up by name or alias, ignoring case.
func (h *Handler) Find(name string) *cmdutil.Command {
	for _, cmd := range h.commands {
		if cmd.Invoked(name) {
			return cmd
		}
	}

	return nil
}

// ParsePrefix strips the guild prefix or a mention of the bot from content.
func ParsePrefix(content string, prefix string, botID snowflake.ID) (string, bool) {
	for _, mention := range mentions(botID) {
		if strings.HasPrefix(content, mention) {
			return strings.TrimSpace(content[len(mention):]), true
		}
	}

	if prefix != "" && strings.HasPrefix(content, prefix) {
		return content[len(prefix):], true
	}

	return "", false
}

func mentions(botID snowflake.ID) []string {
	return []string{
		fmt.Sprintf("<@%v>", botID),
		fmt.Sprintf("<@!%v>", botID),
	}
}

// Handle runs the command in msg, if there is one. It reports whether the
// message was a command, so nothing else acts on it.
func (h *Handler) Handle(ctx context.Context, msg discord.Message) bool {
	if msg.GuildID == nil || msg.Author.Bot || msg.WebhookID != nil {
		return false
	}
	guildID := *msg.GuildID

	guildSettings, err := h.services.Settings.Get(ctx, guildID)
	if err != nil {
		log.Debug().Err(err).Str("guild", guildID.String()).Msg("Couldn't get settings, using defaults")
		guildSettings = database.DefaultSettings(guildID)
	}

	content := strings.TrimSpace(msg.Content)
	botID := h.services.Client.SelfID()

	for _, mention := range mentions(botID) {
		if content == mention {
			h.replyPrefix(ctx, msg, guildSettings.Prefix)
			return true
		}
	}

	rest, ok := ParsePrefix(content, guildSettings.Prefix, botID)
	if !ok {
		return false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 || strings.TrimSpace(rest) != rest {
		return false
	}

	cmd := h.Find(fields[0])
	if cmd == nil {
		return false
	}
	if cmd.OwnerOnly && !config.IsOwner(msg.Author.ID) {
		return false
	}

	c := &cmdutil.Context{
		Ctx:           ctx,
		Services:      h.services,
		Message:       msg,
		GuildID:       guildID,
		GuildSettings: guildSettings,
		Prefix:        guildSettings.Prefix,
		Command:       cmd,
		Args:          fields[1:],
		RawArgs:       strings.TrimSpace(rest[len(fields[0]):]),
	}

	if err := h.run(c); err != nil {
		h.reportError(c, err)
		return true
	}

	if err := h.services.Usage.Increment(ctx, cmd.Name); err != nil {
		log.Warn().Err(err).Msgf(`Couldn't count usage of command "%v"`, cmd.Name)
	}

	return true
}

func (h *Handler) run(c *cmdutil.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in command %q: %v", c.Command.Name, r)
		}
	}()

	if c.Command.Permissions != 0 {
		ok, err := c.HasPermissions(c.Command.Permissions)
		if err != nil {
			return err
		}
		if !ok {
			return &utils.MissingPermissionsError{Permissions: permissionList(c.Command.Permissions)}
		}
	}

	key := c.Command.Name + ":" + c.Author().ID.String()
	if left, ok := h.cooldowns.Take(key, c.Command.Cooldown); !ok {
		return &utils.CooldownError{RetryAfter: left}
	}

	return c.Command.Handler(c)
}

func (h *Handler) reportError(c *cmdutil.Context, err error) {
	text, expected := utils.UserMessage(err)
	if !expected {
		log.Error().
			Err(err).
			Str("guild", c.GuildID.String()).
			Msgf(`An error ocurred in command "%v"`, c.Command.Name)
	} else {
		log.Debug().Err(err).Msgf(`Command "%v" failed`, c.Command.Name)
	}

	embed := cmdutil.ErrorEmbed(text)

	var inputErr *utils.UserInputError
	if errors.As(err, &inputErr) {
		embed.Description += "\n\n" + langs.Default().Command("error").Getf("expectedFormat", c.UsageString())
	}

	if _, err := c.Reply(embed); err != nil {
		log.Warn().Err(err).Msgf(`Couldn't report error of command "%v"`, c.Command.Name)
	}
}

func (h *Handler) replyPrefix(ctx context.Context, msg discord.Message, prefix string) {
	_, err := h.services.Client.SendMessage(ctx, msg.ChannelID, discord.MessageCreate{
		Content:         langs.Default().Event("mention").Getf("prefix", msg.Author.Mention(), prefix, prefix),
		AllowedMentions: &discord.AllowedMentions{RepliedUser: true, Users: []snowflake.ID{msg.Author.ID}},
	})
	if err != nil {
		log.Warn().Err(err).Msg("Couldn't reply with the prefix")
	}
}

func permissionList(perms discord.Permissions) []string {
	names := []string{}
	for _, p := range permissionNames {
		if perms.Has(p.perm) {
			names = append(names, p.name)
		}
	}

	if len(names) == 0 {
		names = append(names, fmt.Sprintf("%d", int64(perms)))
	}

	return names
}
