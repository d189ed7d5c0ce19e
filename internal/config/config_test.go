package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadKioskConfig_Defaults(t *testing.T) {
	c := LoadKioskConfig()
	assert.Equal(t, 300*time.Millisecond, c.LookupDelay)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, []string{"Bar", "Überweisung"}, c.PaymentMethods)
	assert.Equal(t, []int64{20, 50, 100}, c.QuickAmounts)
}

func TestLoadKioskConfig_FromEnv(t *testing.T) {
	t.Setenv("LOOKUP_DEBOUNCE", "150ms")
	t.Setenv("PAYMENT_METHODS", " Card , Bar ,")
	t.Setenv("QUICK_AMOUNTS", "5, x, -1, 10")

	c := LoadKioskConfig()
	assert.Equal(t, 150*time.Millisecond, c.LookupDelay)
	assert.Equal(t, []string{"Card", "Bar"}, c.PaymentMethods)
	assert.Equal(t, []int64{5, 10}, c.QuickAmounts)
}

func TestLoadLedgerConfig(t *testing.T) {
	t.Setenv("LEDGER_BOOK_PROCEDURE", "book_v2")
	t.Setenv("LEDGER_TIMEOUT", "bogus")

	c := LoadLedgerConfig()
	assert.Equal(t, "book_v2", c.BookProcedure)
	assert.Equal(t, 5*time.Second, c.Timeout)
}

func TestLoadQueueConfig_URLFallback(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("AMQP_URL", "amqp://u:p@mq:5672/")
	assert.Equal(t, "amqp://u:p@mq:5672/", LoadQueueConfig().URL)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 5*time.Minute, c.TTL)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}
