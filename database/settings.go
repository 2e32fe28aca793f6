package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passivity/emojis/config"
	"github.com/passivity/emojis/database/models"
)

// Settings is the resolved configuration of a guild, defaults applied.
type Settings struct {
	GuildID        snowflake.ID
	Prefix         string
	ReplaceEmojis  bool
	QueueChannelID *snowflake.ID
}

func DefaultSettings(guildID snowflake.ID) Settings {
	return Settings{
		GuildID:       guildID,
		Prefix:        config.DefaultPrefix,
		ReplaceEmojis: true,
	}
}

// SettingsPatch holds the fields to change. Nil fields are left as they are.
type SettingsPatch struct {
	Prefix            *string
	ReplaceEmojis     *bool
	QueueChannelID    *snowflake.ID
	ClearQueueChannel bool
}

type SettingsStore interface {
	// Get never fails for unknown guilds, it returns DefaultSettings instead.
	Get(ctx context.Context, guildID snowflake.ID) (Settings, error)
	Update(ctx context.Context, guildID snowflake.ID, patch SettingsPatch) error
}

type MongoSettings struct {
	coll *mgm.Collection
}

func NewMongoSettings() *MongoSettings {
	return &MongoSettings{coll: models.GuildSettingsColl()}
}

func (s *MongoSettings) Get(ctx context.Context, guildID snowflake.ID) (Settings, error) {
	doc := &models.GuildSettings{}

	err := s.coll.FindByIDWithCtx(ctx, guildID.String(), doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return DefaultSettings(guildID), nil
	} else if err != nil {
		return Settings{}, fmt.Errorf("finding settings for guild %v: %w", guildID, err)
	}

	return settingsFromModel(guildID, doc)
}

func (s *MongoSettings) Update(ctx context.Context, guildID snowflake.ID, patch SettingsPatch) error {
	now := time.Now().UTC()

	set := bson.M{"updated_at": now}
	if patch.Prefix != nil {
		set["prefix"] = *patch.Prefix
	}
	if patch.ReplaceEmojis != nil {
		set["replace_emojis"] = *patch.ReplaceEmojis
	}
	if patch.QueueChannelID != nil {
		set["queue_channel_id"] = patch.QueueChannelID.String()
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	if patch.ClearQueueChannel && patch.QueueChannelID == nil {
		update["$unset"] = bson.M{"queue_channel_id": ""}
	}

	_, err := s.coll.UpdateOne(
		ctx,
		bson.M{"_id": guildID.String()},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("updating settings for guild %v: %w", guildID, err)
	}

	return nil
}

func settingsFromModel(guildID snowflake.ID, doc *models.GuildSettings) (Settings, error) {
	settings := DefaultSettings(guildID)

	if doc.Prefix != "" {
		settings.Prefix = doc.Prefix
	}
	if doc.ReplaceEmojis != nil {
		settings.ReplaceEmojis = *doc.ReplaceEmojis
	}
	if doc.QueueChannelId != "" {
		id, err := snowflake.Parse(doc.QueueChannelId)
		if err != nil {
			return settings, fmt.Errorf("invalid queue channel %q for guild %v: %w", doc.QueueChannelId, guildID, err)
		}
		settings.QueueChannelID = &id
	}

	return settings, nil
}
