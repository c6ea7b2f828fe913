package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Defaults(t *testing.T) {
	cfg := Get()
	require.NotNil(t, cfg)

	assert.Equal(t, "booking-backend", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "havenstays", cfg.Database.Name)
	assert.Equal(t, 0.30, cfg.Business.Booking.AdvanceShare)
	assert.Equal(t, 0.30, cfg.Business.Distribution.NoReferralAdminRate)
	assert.Equal(t, 60, cfg.Business.Booking.TicketCacheTTL)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "app",
		Password: "secret",
		Name:     "havenstays",
		SSLMode:  "require",
		Timezone: "Asia/Kolkata",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=havenstays")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "TimeZone=Asia/Kolkata")
}

func TestRedisConfig_Addr(t *testing.T) {
	r := &RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}

func TestJWTConfig_AccessTokenDuration(t *testing.T) {
	j := &JWTConfig{AccessTokenExpire: 168}
	assert.Equal(t, 168*time.Hour, j.AccessTokenDuration())
}

func TestModeHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Mode = "debug"
	assert.True(t, cfg.IsDebug())
	assert.False(t, cfg.IsRelease())

	cfg.Server.Mode = "release"
	assert.True(t, cfg.IsRelease())
}
