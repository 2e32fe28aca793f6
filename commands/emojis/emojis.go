// Package emojis has the commands that add emojis to a guild or show them.
package emojis

import (
	"time"

	"github.com/disgoorg/disgo/discord"

	"github.com/passivity/emojis/commands/cmdutil"
)

const manageEmojis = discord.PermissionManageGuildExpressions

func Commands() []*cmdutil.Command {
	return []*cmdutil.Command{
		{
			Name:        "upload",
			Aliases:     []string{"steal", "add"},
			Description: "Upload an emoji from a link, an attachment or another emoji.",
			Usage:       "upload [name] [url]",
			Category:    cmdutil.CategoryEmojis,
			Permissions: manageEmojis,
			Cooldown:    3 * time.Second,
			Handler:     Upload,
		},
		{
			Name:        "random",
			Description: "Upload a random emoji, optionally one whose name contains a word.",
			Usage:       "random <search>",
			Category:    cmdutil.CategoryEmojis,
			Permissions: manageEmojis,
			Cooldown:    3 * time.Second,
			Handler:     Random,
		},
		{
			Name:        "pfp",
			Aliases:     []string{"avatar", "pic"},
			Description: "Turn a profile picture into an emoji.",
			Usage:       "pfp <@user>",
			Category:    cmdutil.CategoryEmojis,
			Permissions: manageEmojis,
			Cooldown:    3 * time.Second,
			Handler:     Pfp,
		},
		{
			Name:        "search",
			Aliases:     []string{"browse"},
			Description: "Search the emojis I can see and upload the one you like.",
			Usage:       "search [query]",
			Category:    cmdutil.CategoryEmojis,
			Permissions: manageEmojis,
			Cooldown:    30 * time.Second,
			Handler:     Search,
		},
		{
			Name:        "info",
			Aliases:     []string{"emojiinfo"},
			Description: "Get information on an emoji of this server.",
			Usage:       "info [emoji]",
			Category:    cmdutil.CategoryEmojis,
			Handler:     Info,
		},
		{
			Name:        "link",
			Aliases:     []string{"jumbo", "big", "j"},
			Description: "View up to 3 emojis in full size.",
			Usage:       "link [emoji] <emoji> <emoji>",
			Category:    cmdutil.CategoryEmojis,
			Cooldown:    5 * time.Second,
			Handler:     Link,
		},
		{
			Name:        "emojify",
			Description: "Say something in regional indicators.",
			Usage:       "emojify [sentence]",
			Category:    cmdutil.CategoryEmojis,
			Cooldown:    5 * time.Second,
			Handler:     Emojify,
		},
	}
}
