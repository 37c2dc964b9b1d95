package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EmptyBrokerRejected(t *testing.T) {
	t.Setenv("EVENT_BROKER", "")

	cfg, err := LoadConfig()

	assert.ErrorContains(t, err, "unknown EVENT_BROKER")
	assert.Nil(t, cfg)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EVENT_BROKER", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("WEBHOOK_TIMEOUT", "2s")
	t.Setenv("WEBHOOK_MAX_RETRIES", "5")
	t.Setenv("RESPONDER_SPEED_KMH", "55.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, BrokerRedis, cfg.EventBroker)
	assert.Equal(t, 2*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, 5, cfg.WebhookMaxRetries)
	assert.InDelta(t, 55.5, cfg.ResponderSpeedKmH, 1e-9)
	assert.Equal(t, 40, cfg.RateLimitBurst)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"none broker", Config{EventBroker: BrokerNone, ResponderSpeedKmH: 40}, ""},
		{"redis without addr", Config{EventBroker: BrokerRedis, ResponderSpeedKmH: 40}, "REDIS_ADDR"},
		{"rabbitmq without url", Config{EventBroker: BrokerRabbitMQ, ResponderSpeedKmH: 40}, "AMQP_URL"},
		{"unknown broker", Config{EventBroker: "kafka", ResponderSpeedKmH: 40}, "unknown EVENT_BROKER"},
		{"zero speed", Config{EventBroker: BrokerNone}, "RESPONDER_SPEED_KMH"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
