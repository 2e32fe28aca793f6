package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passivity/emojis/database/models"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySettings()
	guild := snowflake.ID(1)

	t.Run("unknown guild gets defaults", func(t *testing.T) {
		s, err := store.Get(ctx, guild)
		require.NoError(t, err)
		assert.Equal(t, ">", s.Prefix)
		assert.True(t, s.ReplaceEmojis)
		assert.Nil(t, s.QueueChannelID)
	})

	t.Run("partial updates keep other fields", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, guild, SettingsPatch{Prefix: ptr("!!")}))
		require.NoError(t, store.Update(ctx, guild, SettingsPatch{QueueChannelID: ptr(snowflake.ID(99))}))
		require.NoError(t, store.Update(ctx, guild, SettingsPatch{ReplaceEmojis: ptr(false)}))

		s, err := store.Get(ctx, guild)
		require.NoError(t, err)
		assert.Equal(t, "!!", s.Prefix)
		assert.False(t, s.ReplaceEmojis)
		require.NotNil(t, s.QueueChannelID)
		assert.Equal(t, snowflake.ID(99), *s.QueueChannelID)
	})

	t.Run("clear queue channel", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, guild, SettingsPatch{ClearQueueChannel: true}))

		s, err := store.Get(ctx, guild)
		require.NoError(t, err)
		assert.Nil(t, s.QueueChannelID)
		assert.Equal(t, "!!", s.Prefix)
	})
}

func TestSettingsFromModel(t *testing.T) {
	s, err := settingsFromModel(1, &models.GuildSettings{
		Prefix:         "?",
		ReplaceEmojis:  ptr(false),
		QueueChannelId: "12345",
	})
	require.NoError(t, err)
	assert.Equal(t, "?", s.Prefix)
	assert.False(t, s.ReplaceEmojis)
	assert.Equal(t, snowflake.ID(12345), *s.QueueChannelID)

	s, err = settingsFromModel(1, &models.GuildSettings{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(1), s)

	_, err = settingsFromModel(1, &models.GuildSettings{QueueChannelId: "general"})
	assert.Error(t, err)
}

func TestMemoryPending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryPending()

	first := &models.PendingEmoji{DefaultModel: models.DefaultModel{ID: "a"}, GuildId: "1", Name: "pog"}
	second := &models.PendingEmoji{DefaultModel: models.DefaultModel{ID: "b"}, GuildId: "1", Name: "kek"}
	other := &models.PendingEmoji{DefaultModel: models.DefaultModel{ID: "c"}, GuildId: "2", Name: "lul"}

	require.NoError(t, store.Create(ctx, first))
	time.Sleep(time.Millisecond)
	require.NoError(t, store.Create(ctx, second))
	require.NoError(t, store.Create(ctx, other))
	assert.Error(t, store.Create(ctx, first))
	assert.Error(t, store.Create(ctx, &models.PendingEmoji{Name: "no-id"}))

	require.NoError(t, store.SetPrompt(ctx, "a", 10, 20))
	assert.Error(t, store.SetPrompt(ctx, "missing", 10, 20))

	pending, err := store.ForGuild(ctx, 1)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "pog", pending[0].Name)
	assert.Equal(t, "20", pending[0].MessageId)
	assert.Equal(t, "kek", pending[1].Name)

	require.NoError(t, store.Delete(ctx, "a"))
	assert.Equal(t, 2, store.Len())
}

func TestMemoryUsage(t *testing.T) {
	ctx := context.Background()
	usage := NewMemoryUsage()

	for _, name := range []string{"upload", "help", "upload", "rename", "upload", "help"} {
		require.NoError(t, usage.Increment(ctx, name))
	}

	all, err := usage.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "upload", all[0].ID)
	assert.Equal(t, int64(3), all[0].Count)
	assert.Equal(t, "help", all[1].ID)
	assert.Equal(t, "rename", all[2].ID)
}

type countingSettings struct {
	*MemorySettings
	gets int
	fail bool

	// afterGet runs once the store has been read
	afterGet func()
}

func (c *countingSettings) Get(ctx context.Context, guildID snowflake.ID) (Settings, error) {
	c.gets++
	if c.fail {
		return Settings{}, errors.New("mongo down")
	}

	settings, err := c.MemorySettings.Get(ctx, guildID)
	if c.afterGet != nil {
		c.afterGet()
	}

	return settings, err
}

func setupCache(t *testing.T) (*CachedSettings, *countingSettings, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	backing := &countingSettings{MemorySettings: NewMemorySettings()}

	return NewCachedSettings(backing, rdb, time.Minute), backing, mr
}

func TestCachedSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("second read is served from redis", func(t *testing.T) {
		cache, backing, mr := setupCache(t)
		require.NoError(t, backing.MemorySettings.Update(ctx, 5, SettingsPatch{
			Prefix:         ptr("e!"),
			QueueChannelID: ptr(snowflake.ID(77)),
		}))

		first, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		second, err := cache.Get(ctx, 5)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "e!", second.Prefix)
		assert.Equal(t, snowflake.ID(77), *second.QueueChannelID)
		assert.Equal(t, 1, backing.gets)
		assert.True(t, mr.Exists(settingsKeyPrefix+"5"))
	})

	t.Run("update invalidates", func(t *testing.T) {
		cache, backing, mr := setupCache(t)

		_, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, cache.Update(ctx, 5, SettingsPatch{Prefix: ptr("!!")}))
		assert.False(t, mr.Exists(settingsKeyPrefix+"5"))

		s, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "!!", s.Prefix)
		assert.Equal(t, 2, backing.gets)
	})

	t.Run("update during a miss is not overwritten", func(t *testing.T) {
		cache, backing, mr := setupCache(t)

		var updated bool
		backing.afterGet = func() {
			if updated {
				return
			}
			updated = true
			require.NoError(t, cache.Update(ctx, 5, SettingsPatch{Prefix: ptr("!!")}))
		}

		stale, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, ">", stale.Prefix)
		assert.False(t, mr.Exists(settingsKeyPrefix+"5"))

		s, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "!!", s.Prefix)

		s, err = cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, "!!", s.Prefix)
		assert.Equal(t, 2, backing.gets)
	})

	t.Run("backing errors are not cached", func(t *testing.T) {
		cache, backing, mr := setupCache(t)
		backing.fail = true

		_, err := cache.Get(ctx, 5)
		assert.Error(t, err)
		assert.False(t, mr.Exists(settingsKeyPrefix+"5"))
	})

	t.Run("redis outage falls back to the store", func(t *testing.T) {
		backing := &countingSettings{MemorySettings: NewMemorySettings()}
		rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		t.Cleanup(func() { rdb.Close() })
		cache := NewCachedSettings(backing, rdb, time.Minute)

		s, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, ">", s.Prefix)
		assert.Equal(t, 1, backing.gets)
	})
}
