package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("BAR_SERVICE_CHARGE_PERCENT", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10), cfg.Business.BarServiceChargePercent)
	assert.Equal(t, 24*time.Hour, cfg.Business.IdempotencyTTL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "authenticated", cfg.Auth.Audience)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}
