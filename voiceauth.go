package voiceauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NeechLog/voiceauth/internal/flow"
	"github.com/NeechLog/voiceauth/pkg/authconfig"
	"github.com/NeechLog/voiceauth/pkg/health"
	"github.com/NeechLog/voiceauth/pkg/oauth"
	"github.com/NeechLog/voiceauth/pkg/statetoken"
)

// Type aliases - public API
type (
	// ClientInfo describes the caller of an authentication request.
	ClientInfo = flow.ClientInfo

	// TokenGenerator mints an application session token for an
	// authenticated user.
	TokenGenerator = flow.TokenGenerator

	// StorageCallback persists the outcome of a successful authentication.
	StorageCallback = flow.StorageCallback

	// UserInfo is provider-normalized user identity data.
	UserInfo = oauth.UserInfo

	// Token is a provider token-endpoint response in normalized form.
	Token = oauth.Token

	// Provider abstracts provider-specific OAuth operations.
	Provider = oauth.Provider
)

// ClientInfoExtractor derives client audit data from an incoming request.
type ClientInfoExtractor func(r *http.Request) ClientInfo

// CookieGenerator writes the signed state cookie on the response.
type CookieGenerator func(w http.ResponseWriter, r *http.Request, name, value string, maxAge int)

// CookieRemover deletes the state cookie. Always invoked on callback,
// success or failure, so a state token can never be redeemed twice from the
// same browser.
type CookieRemover func(w http.ResponseWriter, r *http.Request, name string)

// Service is the embeddable authentication core. It owns no session storage
// and no user database: the host application injects those concerns through
// options, mounts Router() and keeps the rest of its stack.
type Service struct {
	cfg       Config
	configs   *authconfig.Store
	registry  *oauth.Registry
	flow      *flow.Controller
	log       *slog.Logger
	extractor ClientInfoExtractor
	setCookie CookieGenerator
	delCookie CookieRemover
}

// New creates a Service from the given config and options.
func New(cfg Config, opts ...Option) (*Service, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		log = slog.Default()
	}

	configs, err := authconfig.New(cfg.ConfigDir, log)
	if err != nil {
		return nil, err
	}

	codec, err := statetoken.New(cfg.StateSecret, statetoken.WithTTL(cfg.StateTTL))
	if err != nil {
		return nil, err
	}

	registry := oauth.NewRegistry(o.oauthOpts...)
	for _, p := range o.providers {
		registry.Register(p)
	}

	flowOpts := []flow.Option{
		flow.WithExchangeTimeout(cfg.HTTPTimeout),
		flow.WithLogger(log),
	}
	if o.tokenGenerator != nil {
		flowOpts = append(flowOpts, flow.WithTokenGenerator(o.tokenGenerator))
	}
	if o.storageCallback != nil {
		flowOpts = append(flowOpts, flow.WithStorageCallback(o.storageCallback))
	}
	// Providers with their own STATE_SECRET_KEY override sign with a
	// dedicated codec.
	for _, name := range registry.Names() {
		secret := providerStateSecret(name)
		if secret == "" {
			continue
		}
		pc, err := statetoken.New(secret, statetoken.WithTTL(cfg.StateTTL))
		if err != nil {
			return nil, err
		}
		flowOpts = append(flowOpts, flow.WithProviderCodec(name, pc))
	}

	s := &Service{
		cfg:       cfg,
		configs:   configs,
		registry:  registry,
		flow:      flow.NewController(configs, registry, codec, flowOpts...),
		log:       log,
		extractor: o.extractor,
		setCookie: o.setCookie,
		delCookie: o.delCookie,
	}
	if s.extractor == nil {
		s.extractor = defaultClientInfoExtractor
	}
	if s.setCookie == nil {
		s.setCookie = s.defaultCookieGenerator
	}
	if s.delCookie == nil {
		s.delCookie = s.defaultCookieRemover
	}
	return s, nil
}

// Router returns the HTTP surface of the service, ready to mount:
//
//	GET  /auth/{provider}/config
//	POST /auth/{provider}/state
//	GET  /auth/{provider}/callback
//	POST /auth/{provider}/callback
//	POST /auth/{provider}/exchange
//
// The callback accepts POST because Apple delivers it as a form post.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID())
	r.Use(requestLogger(s.log))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(health.Checks{
		"auth_configs": s.configsCheck(),
	}, health.WithLogger(s.log)))

	r.Route("/auth/{provider}", func(r chi.Router) {
		r.Get("/config", s.handleConfig)
		r.Post("/state", s.handleState)
		r.Get("/callback", s.handleCallback)
		r.Post("/callback", s.handleCallback)
		r.Post("/exchange", s.handleExchange)
	})
	return r
}

// Reload re-reads the provider credential directory. Safe to call from a
// SIGHUP handler or an admin endpoint while requests are in flight.
func (s *Service) Reload() error {
	return s.configs.Reload()
}

// Providers returns the provider names with at least one configured platform.
func (s *Service) Providers() []string {
	return s.configs.Providers()
}

// configsCheck reports readiness: the service cannot authenticate anyone
// until at least one provider credential file has loaded.
func (s *Service) configsCheck() health.CheckFunc {
	return func(context.Context) error {
		if s.configs.Len() == 0 {
			return errors.New("no provider configurations loaded")
		}
		return nil
	}
}
