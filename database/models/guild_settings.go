package models

import (
	"github.com/kamva/mgm/v3"
)

// GuildSettings is keyed by the guild ID. Unset fields fall back to defaults.
type GuildSettings struct {
	DefaultModel `bson:",inline"`

	Prefix string `json:"prefix,omitempty" bson:"prefix,omitempty"`

	// nil means "never configured", which is treated as enabled
	ReplaceEmojis *bool `json:"replace_emojis,omitempty" bson:"replace_emojis,omitempty"`

	// Channel where new emojis wait for approval. Empty disables the queue.
	QueueChannelId string `json:"queue_channel_id,omitempty" bson:"queue_channel_id,omitempty"`
}

func (gsettings *GuildSettings) CollectionName() string {
	return "guild_settings"
}

func GuildSettingsColl() *mgm.Collection {
	return mgm.Coll(&GuildSettings{})
}
