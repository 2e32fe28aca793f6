package queue

import (
	"bytes"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database/models"
)

var extensions = map[discord.IconType]string{
	discord.IconTypePNG:  "png",
	discord.IconTypeJPEG: "jpg",
	discord.IconTypeGIF:  "gif",
	discord.IconTypeWEBP: "webp",
}

func fileName(req *models.PendingEmoji) string {
	ext, ok := extensions[discord.IconType(req.ImageType)]
	if !ok {
		ext = "png"
	}

	return req.Name + "." + ext
}

func footer(req *models.PendingEmoji) *discord.EmbedFooter {
	return &discord.EmbedFooter{Text: "Request " + req.ID}
}

func promptMessage(req *models.PendingEmoji) discord.MessageCreate {
	name := fileName(req)

	return discord.MessageCreate{
		Embeds: []discord.Embed{
			{
				Title: "Emoji awaiting approval",
				Color: constants.Colors.Info,
				Description: fmt.Sprintf(
					"<@%v> added `:%v:`.\nReact with %v to approve it or %v to deny it.",
					req.UploaderId,
					req.Name,
					constants.Emojis.Approve,
					constants.Emojis.Deny,
				),
				Fields: []discord.EmbedField{
					{Name: "Name", Value: fmt.Sprintf("`:%v:`", req.Name), Inline: json.Ptr(true)},
					{Name: "Uploader", Value: fmt.Sprintf("<@%v>", req.UploaderId), Inline: json.Ptr(true)},
				},
				Image:     json.Ptr(discord.EmbedResource{URL: "attachment://" + name}),
				Footer:    footer(req),
				Timestamp: json.Ptr(time.Now()),
			},
		},
		Files: []*discord.File{
			discord.NewFile(name, "", bytes.NewReader(req.Image)),
		},
		AllowedMentions: &discord.AllowedMentions{},
	}
}

func resolved(req *models.PendingEmoji, color int, description string) discord.MessageUpdate {
	return discord.MessageUpdate{
		Embeds: &[]discord.Embed{
			{
				Title:       fmt.Sprintf("`:%v:`", req.Name),
				Color:       color,
				Description: description,
				Image:       json.Ptr(discord.EmbedResource{URL: "attachment://" + fileName(req)}),
				Footer:      footer(req),
				Timestamp:   json.Ptr(time.Now()),
			},
		},
		AllowedMentions: &discord.AllowedMentions{},
	}
}

func approvedUpdate(req *models.PendingEmoji, approver snowflake.ID, emoji *discord.Emoji) discord.MessageUpdate {
	return resolved(req, constants.Colors.Good, fmt.Sprintf(
		"%v Approved by <@%v>, %v is now available.",
		constants.Emojis.Good,
		approver,
		emoji.Mention(),
	))
}

func approvalFailedUpdate(req *models.PendingEmoji, approver snowflake.ID, reason string) discord.MessageUpdate {
	return resolved(req, constants.Colors.Error, fmt.Sprintf(
		"%v Approved by <@%v>, but the emoji couldn't be added: %v",
		constants.Emojis.Error,
		approver,
		reason,
	))
}

func deniedUpdate(req *models.PendingEmoji, denier snowflake.ID) discord.MessageUpdate {
	return resolved(req, constants.Colors.Error, fmt.Sprintf(
		"%v Denied by <@%v>.",
		constants.Emojis.Error,
		denier,
	))
}

func timedOutUpdate(req *models.PendingEmoji) discord.MessageUpdate {
	return resolved(req, constants.Colors.Main, fmt.Sprintf(
		"%v Timed out, nobody reviewed this emoji.",
		constants.Emojis.Neutral,
	))
}
