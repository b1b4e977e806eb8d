package authconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// Store resolves (provider, platform) pairs to their credentials. Configs are
// read from one file per pair, named {provider}_{platform}.env or .yaml.
// Reads are lock-free; Reload swaps the whole map atomically so readers never
// observe a half-populated store.
type Store struct {
	dir     string
	logger  *slog.Logger
	configs atomic.Pointer[map[key]*Config]
	reload  singleflight.Group
}

type key struct {
	provider string
	platform string
}

// New creates a Store reading from dir and performs the initial load.
// A missing directory is not an error: the store starts empty and logs a
// warning, so an unconfigured deployment still boots.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{dir: dir, logger: logger}
	configs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	s.configs.Store(&configs)
	return s, nil
}

// Get returns the config for the given provider and platform.
// Returns ErrNotFound when no file was loaded for the pair; callers should
// surface this as a deployment problem, not an authentication failure.
func (s *Store) Get(provider, platform string) (*Config, error) {
	k := key{provider: normalize(provider), platform: normalize(platform)}
	cfg, ok := (*s.configs.Load())[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, k.provider, k.platform)
	}
	return cfg, nil
}

// Providers returns the distinct provider names with at least one platform
// configured. Used to decide which routes to mount.
func (s *Store) Providers() []string {
	seen := make(map[string]struct{})
	var names []string
	for k := range *s.configs.Load() {
		if _, ok := seen[k.provider]; !ok {
			seen[k.provider] = struct{}{}
			names = append(names, k.provider)
		}
	}
	return names
}

// Len returns the number of loaded (provider, platform) entries.
func (s *Store) Len() int {
	return len(*s.configs.Load())
}

// Reload re-reads the config directory and atomically swaps the in-memory
// map. Concurrent calls collapse into a single load.
func (s *Store) Reload() error {
	_, err, _ := s.reload.Do("reload", func() (any, error) {
		configs, err := s.loadAll()
		if err != nil {
			return nil, err
		}
		s.configs.Store(&configs)
		return nil, nil
	})
	return err
}

// loadAll reads every config file in the directory. A malformed file is
// logged and skipped so one broken provider cannot take down the rest.
func (s *Store) loadAll() (map[key]*Config, error) {
	configs := make(map[key]*Config)

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("auth config directory not found", slog.String("dir", s.dir))
			return configs, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		provider, platform, ext, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		cfg, err := loadFile(path, ext)
		if err != nil {
			s.logger.Warn("skipping malformed auth config",
				slog.String("file", entry.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if cfg.ClientID == "" {
			s.logger.Warn("skipping auth config without client_id", slog.String("file", entry.Name()))
			continue
		}

		cfg.Provider = provider
		cfg.Platform = platform
		cfg.applyDefaults()

		k := key{provider: provider, platform: platform}
		if _, dup := configs[k]; dup {
			s.logger.Warn("duplicate auth config entry, keeping the first",
				slog.String("provider", provider),
				slog.String("platform", platform),
				slog.String("file", entry.Name()),
			)
			continue
		}
		configs[k] = cfg

		s.logger.Debug("loaded auth config",
			slog.String("provider", provider),
			slog.String("platform", platform),
		)
	}

	return configs, nil
}

// parseFilename splits "google_web.env" into ("google", "web", ".env").
// Unknown extensions and names without a provider_platform shape are ignored.
func parseFilename(name string) (provider, platform, ext string, ok bool) {
	ext = strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".env", ".yaml", ".yml":
	default:
		return "", "", "", false
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	provider, platform, found := strings.Cut(base, "_")
	if !found || provider == "" || platform == "" {
		return "", "", "", false
	}
	return normalize(provider), normalize(platform), ext, true
}

func loadFile(path, ext string) (*Config, error) {
	if ext == ".env" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return nil, err
		}
		return configFromEnv(vars), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// configFromEnv maps dotenv keys to Config fields. Both lowercase and
// uppercase key variants are accepted since deployments mix the two.
func configFromEnv(vars map[string]string) *Config {
	get := func(names ...string) string {
		for _, n := range names {
			if v, ok := vars[n]; ok && v != "" {
				return v
			}
		}
		return ""
	}

	return &Config{
		ClientID:       get("client_id", "CLIENT_ID"),
		ClientSecret:   get("client_secret", "CLIENT_SECRET"),
		WebClientID:    get("web_client_id", "WEB_CLIENT_ID"),
		AuthURI:        get("auth_uri", "AUTH_URI"),
		TokenURI:       get("token_uri", "TOKEN_URI"),
		RedirectURI:    get("redirect_uri", "REDIRECT_URI"),
		Scope:          get("scope", "SCOPE"),
		TeamID:         get("team_id", "TEAM_ID"),
		KeyID:          get("key_id", "KEY_ID"),
		AuthKeyPath:    get("auth_key_path", "AUTH_KEY_PATH"),
		DeepLinkScheme: get("deep_link_scheme", "DEEP_LINK_SCHEME"),
	}
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
