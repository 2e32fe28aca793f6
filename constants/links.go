package constants

const (
	BotName     = "Emojis"
	WebhookName = "Emojis"

	InviteURL  = "https://discord.com/oauth2/authorize?client_id=749301838859337799&permissions=1946545248&scope=bot"
	VoteURL    = "https://top.gg/bot/749301838859337799/vote"
	GithubURL  = "https://github.com/passivity/emojis"
	SupportURL = "https://discord.gg/wzG9Y8s"
)

var Presences = []string{
	"%d servers | >help",
	"your emojis | >help",
	":emojis: | >replace",
}
