package config

// Config is the full application configuration, composed of per-concern
// sub-interfaces so components only depend on the slice they use.
type Config interface {
	EnvConfig
	OAuthConfig
	SecurityConfig
	RedisConfig
}

type mainConfig struct {
	EnvVars
	OAuth
	Security
	Redis
}

// Load reads the environment once and returns an immutable snapshot.
// Nothing is cached at package level; tests that mutate the environment
// call Load again to pick up the change.
func Load() Config {
	return mainConfig{
		EnvVars:  loadEnvVars(),
		OAuth:    loadOAuth(),
		Security: loadSecurity(),
		Redis:    loadRedis(),
	}
}
