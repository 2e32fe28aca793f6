// Package information has the commands that tell users about the bot.
package information

import (
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database/models"
	"github.com/passivity/emojis/langs"
	"github.com/passivity/emojis/utils"
)

func Commands() []*cmdutil.Command {
	return []*cmdutil.Command{
		{
			Name:        "help",
			Aliases:     []string{"commands", "h"},
			Description: "List the commands, or explain one of them.",
			Usage:       "help <command>",
			Category:    cmdutil.CategoryInformation,
			Handler:     Help,
		},
		{
			Name:        "ping",
			Aliases:     []string{"latency"},
			Description: "Get the latency of the bot.",
			Usage:       "ping",
			Category:    cmdutil.CategoryInformation,
			Cooldown:    5 * time.Second,
			Handler:     Ping,
		},
		{
			Name:        "invite",
			Description: "Get a link to add the bot to your server.",
			Usage:       "invite",
			Category:    cmdutil.CategoryInformation,
			Handler:     link("invite", constants.InviteURL),
		},
		{
			Name:        "vote",
			Description: "Vote for the bot.",
			Usage:       "vote",
			Category:    cmdutil.CategoryInformation,
			Handler:     link("vote", constants.VoteURL),
		},
		{
			Name:        "support",
			Aliases:     []string{"server", "github", "feedback", "fb", "suggest", "suggestion"},
			Description: "Get help or send feedback to the people who make the bot.",
			Usage:       "support",
			Category:    cmdutil.CategoryInformation,
			Handler:     link("support", constants.SupportURL, constants.GithubURL),
		},
		{
			Name:        "stats",
			Aliases:     []string{"about"},
			Description: "See how many servers and emojis the bot knows about.",
			Usage:       "stats",
			Category:    cmdutil.CategoryInformation,
			Cooldown:    5 * time.Second,
			Handler:     Stats,
		},
		{
			Name:        "usage",
			Description: "Count how often each command was used.",
			Usage:       "usage",
			Category:    cmdutil.CategoryInformation,
			OwnerOnly:   true,
			Hidden:      true,
			Handler:     Usage,
		},
	}
}

func Help(c *cmdutil.Context) error {
	text := langs.Default().Command("help")
	commands := c.Commands()

	if name := c.Arg(0); name != "" {
		for _, cmd := range commands {
			if cmd.Hidden || !cmd.Invoked(name) {
				continue
			}

			embed := cmdutil.InfoEmbed(c.Prefix+cmd.Name, cmd.Description)
			embed.Fields = []discord.EmbedField{
				{Name: text.Get("usage"), Value: fmt.Sprintf("`%v%v`", c.Prefix, cmd.Usage)},
			}
			if len(cmd.Aliases) > 0 {
				embed.Fields = append(embed.Fields, discord.EmbedField{
					Name:  text.Get("aliases"),
					Value: "`" + strings.Join(cmd.Aliases, "`, `") + "`",
				})
			}

			_, err := c.Reply(embed)
			return err
		}

		return &utils.NotFoundError{What: "command", Query: name}
	}

	embed := cmdutil.InfoEmbed(text.Get("title"), text.Getf("description", c.Prefix, c.Prefix))
	for _, category := range cmdutil.Categories {
		listed := utils.Filter(commands, func(cmd *cmdutil.Command) bool {
			return cmd.Category == category && !cmd.Hidden && !cmd.OwnerOnly
		})
		if len(listed) == 0 {
			continue
		}

		names := utils.Map(listed, func(cmd *cmdutil.Command) string { return "`" + cmd.Name + "`" })
		embed.Fields = append(embed.Fields, discord.EmbedField{
			Name:  string(category),
			Value: strings.Join(names, " "),
		})
	}
	embed.Footer = json.Ptr(discord.EmbedFooter{Text: text.Get("footer")})

	_, err := c.Reply(embed)

	return err
}

func link(key string, urls ...string) cmdutil.Handler {
	return func(c *cmdutil.Context) error {
		text := langs.Default().Command(key)

		_, err := c.Reply(cmdutil.InfoEmbed(text.Get("title"), text.Getf("description", utils.Map(urls, func(u string) any { return u })...)))

		return err
	}
}

func Stats(c *cmdutil.Context) error {
	text := langs.Default().Command("stats")

	uptime := time.Since(c.StartedAt).Round(time.Second)

	embed := cmdutil.InfoEmbed(text.Get("title"), "")
	embed.Fields = []discord.EmbedField{
		{Name: text.Get("servers"), Value: fmt.Sprint(c.Directory.GuildCount()), Inline: json.Ptr(true)},
		{Name: text.Get("emojis"), Value: fmt.Sprint(c.Directory.EmojiCount()), Inline: json.Ptr(true)},
		{Name: text.Get("uptime"), Value: uptime.String(), Inline: json.Ptr(true)},
	}

	_, err := c.Reply(embed)

	return err
}

func Usage(c *cmdutil.Context) error {
	counts, err := c.Services.Usage.All(c.Ctx)
	if err != nil {
		return err
	}

	lines := utils.Map(counts, func(u models.CommandUsage) string {
		return fmt.Sprintf("`%v` %d", u.ID, u.Count)
	})
	if len(lines) == 0 {
		lines = []string{"Nothing yet."}
	}

	_, err = c.Reply(cmdutil.InfoEmbed("Command usage", utils.Truncate(strings.Join(lines, "\n"), 4000)))

	return err
}
