package database

import (
	"context"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passivity/emojis/database/models"
)

type PendingStore interface {
	Create(ctx context.Context, pending *models.PendingEmoji) error
	SetPrompt(ctx context.Context, id string, channelID snowflake.ID, messageID snowflake.ID) error
	Delete(ctx context.Context, id string) error
	ForGuild(ctx context.Context, guildID snowflake.ID) ([]models.PendingEmoji, error)
}

type MongoPending struct {
	coll *mgm.Collection
}

func NewMongoPending() *MongoPending {
	return &MongoPending{coll: models.PendingEmojiColl()}
}

func (p *MongoPending) Create(ctx context.Context, pending *models.PendingEmoji) error {
	if pending.ID == "" {
		return fmt.Errorf("pending emoji %q has no id", pending.Name)
	}

	if err := p.coll.CreateWithCtx(ctx, pending); err != nil {
		return fmt.Errorf("creating pending emoji %q: %w", pending.Name, err)
	}

	return nil
}

func (p *MongoPending) SetPrompt(ctx context.Context, id string, channelID snowflake.ID, messageID snowflake.ID) error {
	_, err := p.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"channel_id": channelID.String(),
			"message_id": messageID.String(),
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("setting prompt of pending emoji %v: %w", id, err)
	}

	return nil
}

func (p *MongoPending) Delete(ctx context.Context, id string) error {
	if _, err := p.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting pending emoji %v: %w", id, err)
	}

	return nil
}

func (p *MongoPending) ForGuild(ctx context.Context, guildID snowflake.ID) ([]models.PendingEmoji, error) {
	results := []models.PendingEmoji{}

	err := p.coll.SimpleFindWithCtx(
		ctx,
		&results,
		bson.M{"guild_id": guildID.String()},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("finding pending emojis for guild %v: %w", guildID, err)
	}

	return results, nil
}
