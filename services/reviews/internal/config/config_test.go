package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "reviews", cfg.PostgresDB)
	assert.Equal(t, 300, cfg.CacheTTLSeconds)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REVIEWS_HTTP_PORT", "9010")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("REVIEWS_TIMEZONE", "UTC")
	t.Setenv("POSTGRES_PASSWORD", "p@ss/word")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9010, cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Contains(t, cfg.Postgres().DSN(), "p%40ss%2Fword")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		env, value, msg string
	}{
		{"REVIEWS_HTTP_PORT", "0", "invalid HTTP port"},
		{"REDIS_PORT", "70000", "invalid REDIS_PORT"},
		{"REVIEW_CACHE_TTL_SECONDS", "0", "REVIEW_CACHE_TTL_SECONDS"},
		{"REVIEWS_RATE_LIMIT_BURST", "0", "rate limit"},
		{"OTEL_SAMPLE_RATE", "2.0", "OTEL_SAMPLE_RATE"},
		{"DB_MIN_CONNS", "50", "DB_MIN_CONNS"},
		{"REVIEWS_TIMEZONE", "Mars/Olympus", "REVIEWS_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)

			cfg, err := Load()

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestTracingConfig(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	cfg, err := Load()
	require.NoError(t, err)

	tc := cfg.Tracing("reviews")
	assert.True(t, tc.Enabled)
	assert.Equal(t, "reviews", tc.ServiceName)
	assert.Equal(t, "development", tc.Environment)
}
