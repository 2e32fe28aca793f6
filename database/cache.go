package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	settingsKeyPrefix    = "emojis:settings:"
	settingsGenKeyPrefix = "emojis:settings:gen:"
)

// CachedSettings reads settings through Redis. Every message needs the
// guild's prefix, so this keeps MongoDB off the hot path.
type CachedSettings struct {
	next SettingsStore
	rdb  *redis.Client
	ttl  time.Duration
}

type cachedSettings struct {
	Prefix         string `json:"p"`
	ReplaceEmojis  bool   `json:"r"`
	QueueChannelID string `json:"q,omitempty"`
}

func NewCachedSettings(next SettingsStore, rdb *redis.Client, ttl time.Duration) *CachedSettings {
	return &CachedSettings{next: next, rdb: rdb, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and checks the server is reachable.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

func (c *CachedSettings) Get(ctx context.Context, guildID snowflake.ID) (Settings, error) {
	key := settingsKeyPrefix + guildID.String()
	genKey := settingsGenKeyPrefix + guildID.String()

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedSettings
		if err := sonic.Unmarshal(data, &cached); err == nil {
			return cached.settings(guildID), nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Debug().Err(err).Msg("Settings cache read failed")
	}

	// read before the store so an Update in between is noticed
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	fill := err == nil || errors.Is(err, redis.Nil)

	settings, err := c.next.Get(ctx, guildID)
	if err != nil {
		return settings, err
	}

	if fill {
		c.fill(ctx, key, genKey, gen, settings)
	}

	return settings, nil
}

// fill caches settings unless the guild's generation moved since they were
// read.
func (c *CachedSettings) fill(ctx context.Context, key, genKey string, gen int64, settings Settings) {
	data, err := sonic.Marshal(toCached(settings))
	if err != nil {
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return redis.TxFailedErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})

		return err
	}, genKey)
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		log.Debug().Err(err).Msg("Settings cache write failed")
	}
}

func (c *CachedSettings) Update(ctx context.Context, guildID snowflake.ID, patch SettingsPatch) error {
	if err := c.next.Update(ctx, guildID, patch); err != nil {
		return err
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, settingsGenKeyPrefix+guildID.String())
		pipe.Del(ctx, settingsKeyPrefix+guildID.String())
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID.String()).Msg("Couldn't invalidate cached settings")
	}

	return nil
}

func toCached(s Settings) cachedSettings {
	cached := cachedSettings{Prefix: s.Prefix, ReplaceEmojis: s.ReplaceEmojis}
	if s.QueueChannelID != nil {
		cached.QueueChannelID = s.QueueChannelID.String()
	}

	return cached
}

func (c cachedSettings) settings(guildID snowflake.ID) Settings {
	s := Settings{GuildID: guildID, Prefix: c.Prefix, ReplaceEmojis: c.ReplaceEmojis}
	if id, err := snowflake.Parse(c.QueueChannelID); err == nil && c.QueueChannelID != "" {
		s.QueueChannelID = &id
	}

	return s
}
