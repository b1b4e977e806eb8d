package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/NeechLog/voiceauth/pkg/authconfig"
	"github.com/NeechLog/voiceauth/pkg/oauth"
	"github.com/NeechLog/voiceauth/pkg/statetoken"
)

// ClientInfo describes the caller of an authentication request. It is
// forwarded to the storage callback for audit purposes.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// TokenGenerator mints an application session token for an authenticated
// user. The host application injects its own implementation.
type TokenGenerator func(ctx context.Context, user *oauth.UserInfo, platform string) (string, error)

// StorageCallback persists the outcome of a successful authentication.
// Failures are logged and never fail the flow.
type StorageCallback func(ctx context.Context, user *oauth.UserInfo, tok *oauth.Token, client ClientInfo) error

// Controller drives the OAuth authorization code flow: state creation,
// callback validation, code exchange and user info extraction. It holds no
// per-request state; everything a callback needs travels in the signed
// state token.
type Controller struct {
	configs       *authconfig.Store
	registry      *oauth.Registry
	codec         *statetoken.Codec
	codecs        map[string]*statetoken.Codec
	generateToken TokenGenerator
	storeResult   StorageCallback
	exchangeTTL   time.Duration
	log           *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithProviderCodec sets a dedicated state token codec for one provider,
// used when that provider has its own signing secret.
func WithProviderCodec(provider string, codec *statetoken.Codec) Option {
	return func(c *Controller) {
		c.codecs[provider] = codec
	}
}

// WithTokenGenerator sets the session token generator invoked after a
// successful authentication.
func WithTokenGenerator(fn TokenGenerator) Option {
	return func(c *Controller) {
		c.generateToken = fn
	}
}

// WithStorageCallback sets the persistence hook invoked after a successful
// authentication.
func WithStorageCallback(fn StorageCallback) Option {
	return func(c *Controller) {
		c.storeResult = fn
	}
}

// WithExchangeTimeout bounds the combined token exchange and user info
// retrieval for a single callback.
func WithExchangeTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.exchangeTTL = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// NewController creates a flow controller. codec signs state tokens for all
// providers unless overridden per provider via WithProviderCodec.
func NewController(configs *authconfig.Store, registry *oauth.Registry, codec *statetoken.Codec, opts ...Option) *Controller {
	c := &Controller{
		configs:     configs,
		registry:    registry,
		codec:       codec,
		codecs:      make(map[string]*statetoken.Codec),
		exchangeTTL: 10 * time.Second,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State is the outcome of a state creation request. ID travels through the
// provider as the OAuth state parameter; Token is the signed value the
// browser keeps in a cookie until the callback.
type State struct {
	ID        string
	Token     string
	AuthURL   string
	ExpiresIn int // seconds
}

// CreateState issues a signed state token for the given provider and
// platform. Fails when the pair is not configured.
//
// When verifier is empty a fresh PKCE verifier is generated and its S256
// challenge is embedded in the authorization URL. A caller-supplied verifier
// is stored as given and no challenge is computed: native clients that build
// their own authorization URL already sent their challenge to the provider,
// and the server only needs the verifier to complete the exchange.
func (c *Controller) CreateState(provider, platform, verifier, returnURL string) (*State, error) {
	cfg, err := c.configs.Get(provider, platform)
	if err != nil {
		return nil, err
	}
	p, err := c.registry.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	var challenge string
	if verifier == "" {
		verifier = oauth.NewVerifier()
		challenge = oauth.ChallengeS256(verifier)
	}
	codec := c.codecFor(cfg.Provider)
	id, signed, err := codec.Encode(cfg.Provider, cfg.Platform, verifier, returnURL)
	if err != nil {
		return nil, err
	}

	c.log.Info("auth state created",
		slog.String("provider", cfg.Provider),
		slog.String("platform", cfg.Platform),
	)

	return &State{
		ID:        id,
		Token:     signed,
		AuthURL:   p.AuthCodeURL(cfg, id, challenge),
		ExpiresIn: int(codec.TTL().Seconds()),
	}, nil
}

// CallbackRequest carries the provider callback parameters after transport
// decoding. StateToken is the signed cookie value; StateID is the state
// echoed by the provider.
type CallbackRequest struct {
	Provider    string
	Code        string
	StateID     string
	ErrorParam  string
	UserPayload string
	StateToken  string
	Client      ClientInfo
}

// Result is the outcome of a completed authentication.
type Result struct {
	User         *oauth.UserInfo
	Token        *oauth.Token
	SessionToken string
	Provider     string
	Platform     string
	ReturnURL    string

	// MinimalProfile marks an accepted result whose provider withheld
	// profile data, as Apple does on repeat authorizations.
	MinimalProfile bool
}

// HandleCallback validates the state round trip and completes the code
// exchange. Provider and platform come from the signed token payload, not
// from the request, so a callback can never redeem a state minted for a
// different provider.
func (c *Controller) HandleCallback(ctx context.Context, req CallbackRequest) (*Result, error) {
	if req.ErrorParam != "" {
		return nil, errors.Join(ErrProviderDenied, fmt.Errorf("provider error %q", req.ErrorParam))
	}
	if req.Code == "" || req.StateID == "" {
		return nil, ErrMalformedCallback
	}
	if req.StateToken == "" {
		return nil, ErrMissingStateCookie
	}

	payload, err := c.codecFor(req.Provider).Decode(req.StateToken, req.StateID)
	if err != nil {
		return nil, err
	}
	if req.Provider != "" && payload.Provider != req.Provider {
		return nil, errors.Join(statetoken.ErrMismatch, fmt.Errorf("state minted for provider %q", payload.Provider))
	}

	cfg, err := c.configs.Get(payload.Provider, payload.Platform)
	if err != nil {
		return nil, err
	}
	p, err := c.registry.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.exchangeTTL)
	defer cancel()

	tok, err := p.Exchange(ctx, cfg, req.Code, payload.Verifier, "")
	if err != nil {
		return nil, err
	}
	tok.UserPayload = req.UserPayload

	user, err := p.UserInfo(ctx, cfg, tok)
	if err != nil {
		return nil, err
	}

	res, err := c.complete(ctx, cfg, user, tok, req.Client)
	if err != nil {
		return nil, err
	}
	res.ReturnURL = payload.ReturnURL
	return res, nil
}

// Exchange completes a direct code exchange for native clients that ran the
// authorization leg themselves. No state token is involved: the client holds
// its own verifier and redirect URI.
func (c *Controller) Exchange(ctx context.Context, provider, platform, code, verifier, redirectURI string, client ClientInfo) (*Result, error) {
	if code == "" {
		return nil, ErrMalformedCallback
	}

	cfg, err := c.configs.Get(provider, platform)
	if err != nil {
		return nil, err
	}
	p, err := c.registry.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.exchangeTTL)
	defer cancel()

	tok, err := p.Exchange(ctx, cfg, code, verifier, redirectURI)
	if err != nil {
		return nil, err
	}

	user, err := p.UserInfo(ctx, cfg, tok)
	if err != nil {
		return nil, err
	}

	return c.complete(ctx, cfg, user, tok, client)
}

// complete runs the post-exchange steps shared by callback and direct
// exchange: session token minting, persistence and audit logging.
func (c *Controller) complete(ctx context.Context, cfg *authconfig.Config, user *oauth.UserInfo, tok *oauth.Token, client ClientInfo) (*Result, error) {
	res := &Result{
		User:           user,
		Token:          tok,
		Provider:       cfg.Provider,
		Platform:       cfg.Platform,
		MinimalProfile: user.IsEmpty(),
	}

	if res.MinimalProfile {
		c.log.Warn("provider returned no profile data",
			slog.String("provider", cfg.Provider),
			slog.String("platform", cfg.Platform),
		)
	}

	if c.generateToken != nil {
		sessionToken, err := c.generateToken(ctx, user, cfg.Platform)
		if err != nil {
			return nil, fmt.Errorf("flow: generate session token: %w", err)
		}
		res.SessionToken = sessionToken
	}

	if c.storeResult != nil {
		if err := c.storeResult(ctx, user, tok, client); err != nil {
			c.log.Error("storage callback failed",
				slog.String("provider", cfg.Provider),
				slog.Any("error", err),
			)
		}
	}

	c.log.Info("authentication completed",
		slog.String("provider", cfg.Provider),
		slog.String("platform", cfg.Platform),
		slog.Bool("minimal_profile", res.MinimalProfile),
	)
	return res, nil
}

func (c *Controller) codecFor(provider string) *statetoken.Codec {
	if codec, ok := c.codecs[provider]; ok {
		return codec
	}
	return c.codec
}
