package voiceauth

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service-level settings. Provider credentials are not
// here: those live in per-pair files under ConfigDir and are managed by
// pkg/authconfig.
type Config struct {
	// StateSecret signs state tokens. Must be at least 32 bytes.
	StateSecret string `env:"STATE_SECRET_KEY,required"`

	// ConfigDir is the directory holding {provider}_{platform} credential files.
	ConfigDir string `env:"AUTH_CONFIG_DIR" envDefault:"./auth_config"`

	// StateTTL bounds the window between state creation and callback.
	StateTTL time.Duration `env:"STATE_TTL" envDefault:"10m"`

	// HTTPTimeout bounds each token exchange round trip.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
// Controls the Secure flag on state cookies.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// providerStateSecret returns the dedicated state signing secret for a
// provider, e.g. GOOGLE_STATE_SECRET_KEY, or empty when the provider shares
// the default secret.
func providerStateSecret(provider string) string {
	return os.Getenv(strings.ToUpper(provider) + "_STATE_SECRET_KEY")
}
