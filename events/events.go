// Package events connects gateway events to the rest of the bot.
package events

import (
	"context"
	"net/http"

	"github.com/disgoorg/disgo/bot"

	"github.com/passivity/emojis/commands"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/queue"
	"github.com/passivity/emojis/utils"
)

type Deps struct {
	// Ctx is cancelled on shutdown and bounds all work started by events.
	Ctx context.Context

	Client    platform.Client
	Commands  *commands.Handler
	Replacer  *emoji.Replacer
	Directory *emoji.Directory
	Queue     *queue.Queue
	Reactions *utils.Collector[platform.Reaction]
	HTTP      *http.Client
}

func GetEvents(c bot.Client, d *Deps) []bot.EventListener {
	return []bot.EventListener{
		Ready(c, d),
		GuildReady(d),
		GuildJoin(d),
		GuildLeave(d),
		MessageCreate(d),
		EmojisUpdate(d),
		ReactionAdd(d),
	}
}
