package constants

import "regexp"

type emojis struct {
	Error   string
	Good    string
	Neutral string
	Waiting string

	Approve string
	Deny    string

	Previous string
	Select   string
	Next     string
	Shuffle  string
}

var Emojis = emojis{
	Error:   "<:redticksmall:736197216900874240>",
	Good:    "<:greenTick:769936017230266398>",
	Neutral: "<:greyTick:769937437899489301>",
	Waiting: "<a:typing:734095511916773417>",

	Approve: "✅",
	Deny:    "❌",

	Previous: "⬅️",
	Select:   "👍",
	Next:     "➡️",
	Shuffle:  "🔀",
}

// <:name:id> or <a:name:id>
var DiscordEmojiRegex = regexp.MustCompile(`^<(a?):([A-Za-z0-9_]{2,32}):(\d+)>$`)

// :name: typed as text, which Discord leaves as is when the emoji isn't usable
var UnparsedEmojiRegex = regexp.MustCompile(`^:([A-Za-z0-9_-]+):$`)

var InvalidNameCharsRegex = regexp.MustCompile(`[^A-Za-z0-9_]`)

var ChannelMentionRegex = regexp.MustCompile(`^<#(\d+)>$`)
var UserMentionRegex = regexp.MustCompile(`^<@!?(\d+)>$`)
