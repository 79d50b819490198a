package config

import "os"

type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

// Redis holds the optional distributed-store connection settings. An empty
// address means single-instance mode: in-memory session store and limiter.
type Redis struct {
	addr     string
	password string
	db       int
}

var _ RedisConfig = Redis{}

func loadRedis() Redis {
	return Redis{
		addr:     os.Getenv("REDIS_ADDR"),
		password: os.Getenv("REDIS_PASSWORD"),
		db:       intEnv("REDIS_DB", 0),
	}
}

func (r Redis) GetRedisAddr() string {
	return r.addr
}

func (r Redis) GetRedisPassword() string {
	return r.password
}

func (r Redis) GetRedisDB() int {
	if r.db < 0 {
		return 0
	}
	return r.db
}

func (Redis) GetRedisKeyPrefix() string {
	return "guildboard"
}
