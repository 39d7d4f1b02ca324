package factory

import (
	"time"

	"github.com/mcoot/spendboard/internal/config"
	"github.com/mcoot/spendboard/internal/scheduler"
	redisstorage "github.com/mcoot/spendboard/internal/storage/redis"
)

var redisConfigUnreachable = redisstorage.Config{
	URL:            "redis://127.0.0.1:1",
	PoolSize:       1,
	ConnectTimeout: 200 * time.Millisecond,
}

var schedulerConfig = scheduler.DefaultConfig()

func configFromMap(env map[string]string) (*config.Config, error) {
	return config.FromLookup(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
}
