package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/kamva/mgm/v3"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/passivity/emojis/config"
)

var ErrNotConnected = errors.New("database not connected")

var connected bool

// Connect configures the default mgm connection and waits until MongoDB
// answers a ping, retrying with exponential backoff.
func Connect(ctx context.Context) error {
	if config.MongoUri == "" {
		return ErrNotConnected
	}

	err := mgm.SetDefaultConfig(
		&mgm.Config{CtxTimeout: 10 * time.Second},
		config.MongoDatabase,
		options.Client().ApplyURI(config.MongoUri),
	)
	if err != nil {
		return fmt.Errorf("configuring mgm: %w", err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5),
		ctx,
	)
	err = backoff.RetryNotify(func() error {
		return ping(ctx)
	}, b, func(err error, next time.Duration) {
		log.Warn().Err(err).Msgf("MongoDB not reachable, retrying in %v", next.Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("pinging mongodb: %w", err)
	}

	connected = true

	return nil
}

// Ping measures the round trip to MongoDB.
func Ping(ctx context.Context) (time.Duration, error) {
	if !connected {
		return 0, ErrNotConnected
	}

	start := time.Now()
	if err := ping(ctx); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}

func ping(ctx context.Context) error {
	_, client, _, err := mgm.DefaultConfigs()
	if err != nil {
		return err
	}

	return client.Ping(ctx, nil)
}

func Disconnect(ctx context.Context) error {
	if !connected {
		return nil
	}

	_, client, _, err := mgm.DefaultConfigs()
	if err != nil {
		return err
	}
	connected = false

	return client.Disconnect(ctx)
}
