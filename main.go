package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/commands"
	"github.com/passivity/emojis/commands/cmdutil"
	"github.com/passivity/emojis/config"
	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/events"
	"github.com/passivity/emojis/langs"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/queue"
	"github.com/passivity/emojis/utils"
)

const settingsCacheTTL = 10 * time.Minute

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.Kitchen,
		FormatLevel: func(i interface{}) string {
			if i == nil {
				i = "log"
			}

			return strings.ToUpper(
				fmt.Sprintf("| %v |", strings.ToUpper(fmt.Sprint(i))),
			)
		},
	})
}

type stores struct {
	settings database.SettingsStore
	pending  database.PendingStore
	usage    database.UsageStore
}

func openStores(ctx context.Context) stores {
	if err := database.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("Running without MongoDB, settings and pending emojis won't survive a restart")

		return stores{
			settings: database.NewMemorySettings(),
			pending:  database.NewMemoryPending(),
			usage:    database.NewMemoryUsage(),
		}
	}

	log.Info().Msg("Connected to MongoDB 📁")

	s := stores{
		settings: database.NewMongoSettings(),
		pending:  database.NewMongoPending(),
		usage:    database.NewMongoUsage(),
	}

	if config.RedisUrl != "" {
		rdb, err := database.NewRedisClient(ctx, config.RedisUrl)
		if err != nil {
			log.Warn().Err(err).Msg("Couldn't connect to Redis, settings won't be cached")
		} else {
			log.Info().Msg("Connected to Redis 🧠")
			s.settings = database.NewCachedSettings(s.settings, rdb, settingsCacheTTL)
		}
	}

	return s
}

func main() {
	zerolog.SetGlobalLevel(config.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := config.LoadSecrets(ctx); err != nil {
		log.Panic().Err(err).Msg("Error when trying to load secrets: ")
	}

	if err := langs.Load(); err != nil {
		log.Panic().Err(err).Send()
	}

	s := openStores(ctx)

	client, err := disgo.New(config.Token,
		bot.WithGatewayConfigOpts(
			config.Intents,
		),
		bot.WithCacheConfigOpts(
			cache.WithCaches(
				cache.FlagGuilds|cache.FlagMembers|cache.FlagChannels|cache.FlagRoles|cache.FlagEmojis,
			),
		),
		// approvals and searches block their handler until someone reacts
		bot.WithEventManagerConfigOpts(bot.WithAsyncEventsEnabled()),
	)
	if err != nil {
		log.Panic().Err(err).Msg("Error when trying to create client: ")
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	api := platform.NewDisgo(client)
	directory := emoji.NewDirectory()
	reactions := utils.NewCollector[platform.Reaction]()
	installer := emoji.NewInstaller(httpClient, api)

	replacer := emoji.NewReplacer(directory, s.settings, api)
	if config.ReplaceSkipLegacyTags {
		replacer.AuthorFilter = emoji.SkipLegacyTags
	}

	approvals := queue.New(api, s.settings, s.pending, installer, directory, reactions)
	approvals.Timeout = config.QueueTimeout

	handler := commands.New(&cmdutil.Services{
		Client:        api,
		Settings:      s.settings,
		Usage:         s.usage,
		Installer:     installer,
		Replacer:      replacer,
		Directory:     directory,
		Reactions:     reactions,
		PingDatabase:  database.Ping,
		BrowseTimeout: 30 * time.Second,
		StartedAt:     time.Now(),
	})

	client.AddEventListeners(events.GetEvents(client, &events.Deps{
		Ctx:       ctx,
		Client:    api,
		Commands:  handler,
		Replacer:  replacer,
		Directory: directory,
		Queue:     approvals,
		Reactions: reactions,
		HTTP:      httpClient,
	})...)

	openCtx, openCancel := context.WithTimeout(ctx, time.Second*10)
	defer openCancel()

	if err = client.OpenGateway(openCtx); err != nil {
		log.Panic().Err(err).Msg("Error when trying to connect to gateway: ")
	}

	log.Info().Msgf("%v is now running 🚀.  Press CTRL-C to exit.", constants.BotName)
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	log.Info().Msg("Shutting down")

	// pending approvals stay stored and are resumed on the next start
	cancel()
	events.StopScheduler()
	approvals.Wait()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()

	client.Close(closeCtx)

	if err := database.Disconnect(closeCtx); err != nil {
		log.Warn().Err(err).Msg("Couldn't disconnect from MongoDB")
	}
}
