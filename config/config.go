package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	Token         string
	MongoUri      string
	MongoDatabase string
	RedisUrl      string
	Intents       gateway.ConfigOpt = gateway.WithIntents(
		gateway.IntentGuilds,
		gateway.IntentGuildExpressions,
		gateway.IntentGuildMessages,
		gateway.IntentGuildMessageReactions,
		gateway.IntentGuildWebhooks,
		gateway.IntentMessageContent,
	)
	DefaultPrefix         = ">"
	QueueTimeout          time.Duration
	ReplaceSkipLegacyTags bool
	OwnerIds              []snowflake.ID
	BotsGGToken           string
	LogLevel              = zerolog.InfoLevel
	Development           bool
)

func init() {
	err := godotenv.Load(".env")
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("An error ocurred when reading .env")
	}

	Load()
}

// Load reads the configuration from the environment. It runs on init and
// can be called again after changing the environment.
func Load() {
	Development = os.Getenv("APP_ENV") == "development"

	if Development {
		Token = os.Getenv("TEST_BOT_TOKEN")
	} else {
		Token = os.Getenv("BOT_TOKEN")
	}

	MongoUri = os.Getenv("MONGO_URI")
	MongoDatabase = getEnvWithDefault("MONGO_DATABASE", "emojis")
	RedisUrl = os.Getenv("REDIS_URL")
	DefaultPrefix = getEnvWithDefault("DEFAULT_PREFIX", ">")
	BotsGGToken = os.Getenv("BOTS_GG_TOKEN")

	QueueTimeout = 0
	if v := os.Getenv("QUEUE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			log.Warn().Str("value", v).Msg("Invalid QUEUE_TIMEOUT, approvals will wait forever")
		} else {
			QueueTimeout = d
		}
	}

	ReplaceSkipLegacyTags, _ = strconv.ParseBool(os.Getenv("REPLACE_SKIP_LEGACY_TAGS"))

	OwnerIds = nil
	for _, id := range strings.Split(os.Getenv("OWNER_IDS"), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		parsed, err := snowflake.Parse(id)
		if err != nil {
			log.Warn().Str("value", id).Msg("Ignoring invalid id in OWNER_IDS")
			continue
		}
		OwnerIds = append(OwnerIds, parsed)
	}

	LogLevel = zerolog.InfoLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if level, err := zerolog.ParseLevel(v); err == nil {
			LogLevel = level
		}
	}
}

func IsOwner(id snowflake.ID) bool {
	for _, owner := range OwnerIds {
		if owner == id {
			return true
		}
	}

	return false
}

func getEnvWithDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
