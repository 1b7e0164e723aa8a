package app

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Issuer      string `env:"AUTH_ISSUER"      envDefault:"dmsp-auth"` // Issuer claim for tokens
	TokenSecret string `env:"AUTH_TOKEN_SECRET,required,notEmpty"`     // HMAC key for JWT signing
	HashSecret  string `env:"AUTH_HASH_SECRET,required,notEmpty"`      // HMAC key for cache digests

	RedisURL string `env:"AUTH_REDIS_URL"` // Optional: empty runs on the in-process cache

	AccessTTL  time.Duration `env:"AUTH_ACCESS_TTL"  envDefault:"15m"`
	RefreshTTL time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"168h"`
	CSRFTTL    time.Duration `env:"AUTH_CSRF_TTL"    envDefault:"10m"`

	// Optional: seeds a SUPERADMIN account at startup so a fresh deployment
	// has someone who can sign in.
	BootstrapEmail    string `env:"AUTH_BOOTSTRAP_EMAIL"`
	BootstrapPassword string `env:"AUTH_BOOTSTRAP_PASSWORD"`

	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	Port                int           `env:"PORT"                  envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	return env.ParseAs[Config]()
}

// SecureCookies reports whether session cookies should carry the Secure
// attribute. Only local development runs without TLS.
func (c Config) SecureCookies() bool {
	return c.Env != "dev"
}
