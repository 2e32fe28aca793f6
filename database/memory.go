package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/passivity/emojis/database/models"
)

// MemorySettings keeps settings in process memory. Used in tests and when
// the bot runs without MONGO_URI.
type MemorySettings struct {
	mu     sync.RWMutex
	guilds map[snowflake.ID]Settings
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{guilds: map[snowflake.ID]Settings{}}
}

func (s *MemorySettings) Get(_ context.Context, guildID snowflake.ID) (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.guilds[guildID]
	if !ok {
		return DefaultSettings(guildID), nil
	}

	return settings, nil
}

func (s *MemorySettings) Update(_ context.Context, guildID snowflake.ID, patch SettingsPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, ok := s.guilds[guildID]
	if !ok {
		settings = DefaultSettings(guildID)
	}

	if patch.Prefix != nil {
		settings.Prefix = *patch.Prefix
	}
	if patch.ReplaceEmojis != nil {
		settings.ReplaceEmojis = *patch.ReplaceEmojis
	}
	if patch.QueueChannelID != nil {
		id := *patch.QueueChannelID
		settings.QueueChannelID = &id
	} else if patch.ClearQueueChannel {
		settings.QueueChannelID = nil
	}

	s.guilds[guildID] = settings

	return nil
}

type MemoryPending struct {
	mu      sync.Mutex
	pending map[string]models.PendingEmoji
}

func NewMemoryPending() *MemoryPending {
	return &MemoryPending{pending: map[string]models.PendingEmoji{}}
}

func (p *MemoryPending) Create(_ context.Context, pending *models.PendingEmoji) error {
	if pending.ID == "" {
		return fmt.Errorf("pending emoji %q has no id", pending.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pending[pending.ID]; ok {
		return fmt.Errorf("pending emoji %v already exists", pending.ID)
	}

	now := time.Now().UTC()
	pending.CreatedAt = now
	pending.UpdatedAt = now
	p.pending[pending.ID] = *pending

	return nil
}

func (p *MemoryPending) SetPrompt(_ context.Context, id string, channelID snowflake.ID, messageID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending, ok := p.pending[id]
	if !ok {
		return fmt.Errorf("pending emoji %v not found", id)
	}

	pending.ChannelId = channelID.String()
	pending.MessageId = messageID.String()
	pending.UpdatedAt = time.Now().UTC()
	p.pending[id] = pending

	return nil
}

func (p *MemoryPending) Delete(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pending, id)

	return nil
}

func (p *MemoryPending) ForGuild(_ context.Context, guildID snowflake.ID) ([]models.PendingEmoji, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := []models.PendingEmoji{}
	for _, pending := range p.pending {
		if pending.GuildId == guildID.String() {
			results = append(results, pending)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})

	return results, nil
}

func (p *MemoryPending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.pending)
}

type MemoryUsage struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewMemoryUsage() *MemoryUsage {
	return &MemoryUsage{counts: map[string]int64{}}
}

func (u *MemoryUsage) Increment(_ context.Context, command string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.counts[command]++

	return nil
}

func (u *MemoryUsage) All(_ context.Context) ([]models.CommandUsage, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	results := make([]models.CommandUsage, 0, len(u.counts))
	for name, count := range u.counts {
		results = append(results, models.CommandUsage{
			DefaultModel: models.DefaultModel{ID: name},
			Count:        count,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Count == results[j].Count {
			return results[i].ID < results[j].ID
		}
		return results[i].Count > results[j].Count
	})

	return results, nil
}
