package emoji

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

// MaxEmojiSize is Discord's upload limit for emoji images.
const MaxEmojiSize = 256 * 1024

var iconTypes = map[string]discord.IconType{
	"png":  discord.IconTypePNG,
	"jpeg": discord.IconTypeJPEG,
	"gif":  discord.IconTypeGIF,
	"webp": discord.IconTypeWEBP,
}

// Target is where an emoji gets installed. A zero ChannelID means nobody is
// waiting for a confirmation, so none is posted.
type Target struct {
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	Reason    string
}

type Installer struct {
	http     *http.Client
	emojis   platform.Emojis
	messages platform.Messages

	MaxSize int
}

func NewInstaller(httpClient *http.Client, client platform.Client) *Installer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Installer{
		http:     httpClient,
		emojis:   client,
		messages: client,
		MaxSize:  MaxEmojiSize,
	}
}

// Install downloads imageURL and creates it as an emoji called name.
func (i *Installer) Install(ctx context.Context, target Target, name string, imageURL string) (*discord.Emoji, error) {
	name, err := SanitizeName(name)
	if err != nil {
		return nil, err
	}

	img, err := i.Fetch(ctx, name, imageURL)
	if err != nil {
		return nil, err
	}

	return i.InstallImage(ctx, target, name, img)
}

// Fetch downloads an emoji image into memory and checks it's something
// Discord will take.
func (i *Installer) Fetch(ctx context.Context, name string, imageURL string) (platform.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return platform.Image{}, utils.NewUserInputError("`%s` isn't a valid image link.", imageURL)
	}

	resp, err := i.http.Do(req)
	if err != nil {
		return platform.Image{}, &utils.FetchError{Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return platform.Image{}, &utils.FetchError{Name: name, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(i.MaxSize)+1))
	if err != nil {
		return platform.Image{}, &utils.FetchError{Name: name, StatusCode: resp.StatusCode, Err: err}
	}

	if len(data) > i.MaxSize {
		return platform.Image{}, utils.NewUserInputError("That image is too big, emojis can be at most %d KB.", i.MaxSize/1024)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return platform.Image{}, utils.NewUserInputError("That link isn't a PNG, JPEG, GIF or WEBP image.")
	}

	iconType, ok := iconTypes[format]
	if !ok {
		return platform.Image{}, utils.NewUserInputError("Emojis can't be made from %s images.", format)
	}

	return platform.Image{Data: data, Type: iconType}, nil
}

// InstallImage creates an emoji from an image that's already in memory.
func (i *Installer) InstallImage(ctx context.Context, target Target, name string, img platform.Image) (*discord.Emoji, error) {
	reason := target.Reason
	if reason == "" {
		reason = "Uploaded with " + constants.BotName
	}

	emoji, err := i.emojis.CreateEmoji(ctx, target.GuildID, name, img, reason)
	if err != nil {
		return nil, err
	}

	if target.ChannelID == 0 {
		return emoji, nil
	}

	_, err = i.messages.SendMessage(ctx, target.ChannelID, discord.MessageCreate{
		Embeds: []discord.Embed{SuccessEmbed(*emoji)},
	})
	if err != nil {
		// the emoji exists, only the confirmation got lost
		log.Warn().
			Err(err).
			Str("guild", target.GuildID.String()).
			Msgf(`Couldn't confirm upload of emoji "%v"`, emoji.Name)
	}

	return emoji, nil
}

func SuccessEmbed(emoji discord.Emoji) discord.Embed {
	return discord.Embed{
		Color:       constants.Colors.Good,
		Description: fmt.Sprintf("%v Emoji `:%v:` uploaded", constants.Emojis.Good, emoji.Name),
		Thumbnail: json.Ptr(discord.EmbedResource{
			URL: emoji.URL(),
		}),
	}
}
