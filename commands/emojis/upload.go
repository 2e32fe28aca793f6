package emojis

import (
	"net/url"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/utils"
)

// Upload takes one of:
//
//	upload name url
//	upload name        (with an image attached)
//	upload <:emoji:id> (steal an emoji)
//	upload name <:emoji:id>
func Upload(c *cmdutil.Context) error {
	switch len(c.Args) {
	case 0:
		return utils.NewUserInputError("You need to give a name and an image for the emoji.")
	case 1:
		if len(c.Message.Attachments) > 0 {
			return install(c, c.Args[0], c.Message.Attachments[0].URL)
		}

		e, ok := cmdutil.ParseEmojiMention(c.Args[0])
		if !ok {
			return utils.NewUserInputError("You need to give a link or attach an image for `:%v:`.", strings.Trim(c.Args[0], ":"))
		}

		return install(c, e.Name, e.URL())
	case 2:
		if e, ok := cmdutil.ParseEmojiMention(c.Args[1]); ok {
			return install(c, c.Args[0], e.URL())
		}

		return install(c, c.Args[0], c.Args[1])
	default:
		return utils.NewUserInputError("That doesn't look right. Emoji names are a single word.")
	}
}

func install(c *cmdutil.Context, name string, rawURL string) error {
	rawURL = strings.Trim(rawURL, "<>")

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return utils.NewUserInputError("`%v` isn't a valid image link.", utils.Truncate(rawURL, 100))
	}

	_, err = c.Installer.Install(c.Ctx, c.Target(), name, rawURL)

	return err
}

// Random uploads a random emoji the bot can see, optionally one whose name
// contains the query.
func Random(c *cmdutil.Context) error {
	query := strings.Trim(c.RawArgs, ": ")

	var (
		e  discord.Emoji
		ok bool
	)
	if query == "" {
		e, ok = c.Directory.Random()
	} else {
		results := c.Directory.Search(query)
		if len(results) > 0 {
			e, ok = results[randIndex(len(results))], true
		}
	}

	if !ok {
		if query == "" {
			return &utils.NotFoundError{What: "emoji"}
		}
		return &utils.NotFoundError{What: "emoji matching", Query: query}
	}

	_, err := c.Installer.Install(c.Ctx, c.Target(), e.Name, e.URL())

	return err
}

// Pfp turns a user's avatar into an emoji named after them.
func Pfp(c *cmdutil.Context) error {
	user := c.Author()
	if arg := c.Arg(0); arg != "" {
		var err error
		if user, err = c.User(arg); err != nil {
			return err
		}
	}

	name := constants.InvalidNameCharsRegex.ReplaceAllString(user.Username, "")
	if len(name) < 2 {
		name = "pfp_" + name + user.ID.String()[:4]
	}

	_, err := c.Installer.Install(c.Ctx, c.Target(), name, user.EffectiveAvatarURL(discord.WithSize(128)))

	return err
}
