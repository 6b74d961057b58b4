package sync

import (
	"time"

	"github.com/vajra-io/vajra/internal/config"
)

const (
	defaultTopic   = "vajra.dataset.refresh"
	defaultGroupID = "vajra-syncer"

	defaultResyncInterval = 6 * time.Hour
)

type (
	// NotifierConfig holds the Kafka refresh consumer settings. An empty
	// broker list disables the notifier.
	NotifierConfig struct {
		Brokers []string
		Topic   string
		GroupID string
	}

	// Config holds background sync settings.
	Config struct {
		Notifier NotifierConfig

		// ResyncInterval is the fallback periodic full sync when no Kafka
		// notification arrives. Zero disables periodic resync.
		ResyncInterval time.Duration
	}
)

// LoadConfig reads sync configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Notifier: NotifierConfig{
			Brokers: config.ParseCommaSeparatedList(config.GetEnvStr("VAJRA_KAFKA_BROKERS", "")),
			Topic:   config.GetEnvStr("VAJRA_KAFKA_TOPIC", defaultTopic),
			GroupID: config.GetEnvStr("VAJRA_KAFKA_GROUP_ID", defaultGroupID),
		},
		ResyncInterval: config.GetEnvDuration("VAJRA_RESYNC_INTERVAL", defaultResyncInterval),
	}
}
