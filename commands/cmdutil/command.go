// Package cmdutil holds what every prefix command needs: the command
// definition, the invocation context and argument parsing.
package cmdutil

import (
	"context"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

type Category string

const (
	CategoryEmojis      Category = "Emojis"
	CategoryManagement  Category = "Management"
	CategorySettings    Category = "Settings"
	CategoryInformation Category = "Information"
)

var Categories = []Category{
	CategoryEmojis,
	CategoryManagement,
	CategorySettings,
	CategoryInformation,
}

type Handler func(ctx *Context) error

type Command struct {
	Name        string
	Aliases     []string
	Description string
	// Usage without the prefix, e.g. "rename [emoji] [new name]"
	Usage    string
	Category Category

	Permissions discord.Permissions
	Cooldown    time.Duration
	OwnerOnly   bool
	// Hidden commands are left out of help.
	Hidden bool

	Handler Handler
}

// Services are the dependencies commands can use.
type Services struct {
	Client    platform.Client
	Settings  database.SettingsStore
	Usage     database.UsageStore
	Installer *emoji.Installer
	Replacer  *emoji.Replacer
	Directory *emoji.Directory
	Reactions *utils.Collector[platform.Reaction]

	// PingDatabase measures a database round trip.
	PingDatabase func(ctx context.Context) (time.Duration, error)

	// Commands lists every registered command, for help.
	Commands func() []*Command

	// BrowseTimeout bounds each step of interactive flows like search.
	BrowseTimeout time.Duration
	StartedAt     time.Time
}

type Context struct {
	Ctx context.Context
	*Services

	Message       discord.Message
	GuildID       snowflake.ID
	GuildSettings database.Settings
	Prefix        string
	Command       *Command
	Args          []string
	// RawArgs is everything after the command name, spacing kept.
	RawArgs string
}

func (c *Context) Author() discord.User {
	return c.Message.Author
}

func (c *Context) ChannelID() snowflake.ID {
	return c.Message.ChannelID
}

func (c *Context) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}

	return c.Args[i]
}

// UsageString renders the command's usage with the guild's prefix.
func (c *Context) UsageString() string {
	return c.Prefix + c.Command.Usage
}

// Target is where emojis uploaded by this command go.
func (c *Context) Target() emoji.Target {
	return emoji.Target{
		GuildID:   c.GuildID,
		ChannelID: c.ChannelID(),
		Reason:    "Uploaded by " + c.Author().Username,
	}
}

func (c *Context) Reply(embeds ...discord.Embed) (*discord.Message, error) {
	return c.Client.SendMessage(c.Ctx, c.ChannelID(), discord.MessageCreate{
		Embeds: embeds,
		MessageReference: &discord.MessageReference{
			MessageID:       &c.Message.ID,
			ChannelID:       &c.Message.ChannelID,
			FailIfNotExists: false,
		},
		AllowedMentions: &discord.AllowedMentions{},
	})
}

func (c *Context) Success(description string) error {
	_, err := c.Reply(SuccessEmbed(description))

	return err
}

// HasPermissions reports whether the author has every permission in perms.
func (c *Context) HasPermissions(perms discord.Permissions) (bool, error) {
	have, err := c.Client.MemberPermissions(c.Ctx, c.GuildID, c.Author().ID)
	if err != nil {
		return false, err
	}

	return have.Has(discord.PermissionAdministrator) || have.Has(perms), nil
}

// Invoked is true when name is the command's name or one of its aliases.
func (cmd *Command) Invoked(name string) bool {
	if strings.EqualFold(cmd.Name, name) {
		return true
	}

	for _, alias := range cmd.Aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}

	return false
}
