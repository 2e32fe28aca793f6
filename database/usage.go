package database

import (
	"context"
	"fmt"

	"github.com/kamva/mgm/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passivity/emojis/database/models"
)

// UsageStore counts how many times each command ran.
type UsageStore interface {
	Increment(ctx context.Context, command string) error
	All(ctx context.Context) ([]models.CommandUsage, error)
}

type MongoUsage struct {
	coll *mgm.Collection
}

func NewMongoUsage() *MongoUsage {
	return &MongoUsage{coll: models.CommandUsageColl()}
}

func (u *MongoUsage) Increment(ctx context.Context, command string) error {
	_, err := u.coll.UpdateOne(
		ctx,
		bson.M{"_id": command},
		bson.M{"$inc": bson.M{"count": 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("incrementing usage of %q: %w", command, err)
	}

	return nil
}

// All returns every counter, most used first.
func (u *MongoUsage) All(ctx context.Context) ([]models.CommandUsage, error) {
	results := []models.CommandUsage{}

	err := u.coll.SimpleFindWithCtx(ctx, &results, bson.M{}, options.Find().SetSort(bson.D{{Key: "count", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("listing command usage: %w", err)
	}

	return results, nil
}
