package events

import (
	"bytes"
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/config"
	"github.com/passivity/emojis/constants"
)

var BotsGGURL = "https://discord.bots.gg/api/v1/bots/%v/stats"

var scheduler *gocron.Scheduler

func init() {
	scheduler = gocron.NewScheduler(time.UTC)
}

// Presence fills the guild count into a presence text that has a %d in it.
func Presence(text string, guilds int) string {
	if strings.Contains(text, "%d") {
		return fmt.Sprintf(text, guilds)
	}

	return text
}

func Ready(c bot.Client, d *Deps) bot.EventListener {
	var once sync.Once

	setPresence := func() {
		text := constants.Presences[rand.Intn(len(constants.Presences))]

		if err := c.SetPresence(
			d.Ctx,
			gateway.WithWatchingActivity(Presence(text, d.Directory.GuildCount())),
			gateway.WithOnlineStatus(discord.OnlineStatusOnline),
		); err != nil {
			log.Warn().
				Err(err).
				Msg("An error ocurred trying to set presence")
		}
	}

	return bot.NewListenerFunc(func(e *events.Ready) {
		log.Info().Msgf("Logged as: %v 👤", e.User.Username)

		setPresence()

		// reconnects fire Ready again, jobs are only scheduled once
		once.Do(func() {
			if _, err := scheduler.Every("3m").Do(setPresence); err != nil {
				log.Error().Err(err).Msg("Couldn't schedule presence updates")
			}

			if config.BotsGGToken != "" {
				botID := e.User.ID
				if _, err := scheduler.Every("30m").Do(func() {
					if err := PostStats(d.Ctx, d.HTTP, botID, config.BotsGGToken, d.Directory.GuildCount()); err != nil {
						log.Warn().Err(err).Msg("Couldn't post stats to bots.gg")
					}
				}); err != nil {
					log.Error().Err(err).Msg("Couldn't schedule stats posting")
				}
			}

			scheduler.StartAsync()
		})
	})
}

// StopScheduler stops the background jobs started on Ready.
func StopScheduler() {
	scheduler.Stop()
}

type statsBody struct {
	GuildCount int `json:"guildCount"`
}

// PostStats sends the guild count to bots.gg.
func PostStats(ctx context.Context, httpClient *http.Client, botID snowflake.ID, token string, guilds int) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	body, err := sonic.Marshal(statsBody{GuildCount: guilds})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(BotsGGURL, botID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("posting stats: unexpected status %d", resp.StatusCode)
	}

	return nil
}
