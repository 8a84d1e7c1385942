package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/connection"
	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
	"github.com/rizzle-org/rizzle-golang/rizzle/gateway"
	"github.com/rizzle-org/rizzle-golang/rizzle/metadata"
	"github.com/rizzle-org/rizzle-golang/rizzle/player"
)

const kUserDataMethod = "deezer.getUserData"

var Version = "master"

type settings struct {
	doer        connection.Doer
	gatewayURL  string
	cdnTemplate string
	userAgent   string
	logger      *zap.Logger
}

type Option func(*settings)

// WithHTTPClient sets the transport used for RPCs and downloads. The default client has no overall timeout.
func WithHTTPClient(doer connection.Doer) Option {
	return func(s *settings) {
		s.doer = doer
	}
}

func WithGatewayURL(u string) Option {
	return func(s *settings) {
		s.gatewayURL = u
	}
}

func WithCDNTemplate(template string) Option {
	return func(s *settings) {
		s.cdnTemplate = template
	}
}

func WithUserAgent(ua string) Option {
	return func(s *settings) {
		s.userAgent = ua
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func setupSession(creds Credentials, opts []Option) *Session {
	cfg := settings{
		userAgent: connection.DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.doer == nil {
		cfg.doer = connection.NewHTTPClient(0)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Session{
		doer: cfg.doer,
		gateway: gateway.NewClient(cfg.doer,
			gateway.WithURL(cfg.gatewayURL),
			gateway.WithUserAgent(cfg.userAgent),
			gateway.WithLogger(cfg.logger)),
		player: player.CreatePlayer(cfg.doer,
			player.WithCDNTemplate(cfg.cdnTemplate),
			player.WithUserAgent(cfg.userAgent),
			player.WithLogger(cfg.logger)),
		logger: cfg.logger,
		creds: Credentials{
			SessionID:    creds.SessionID,
			AccountToken: creds.AccountToken,
		},
		state: StateNew,
	}
}

// Login opens a session with the sid and arl cookies of creds. Any access or license token in creds is ignored: the
// server issues fresh ones at login.
//
// If the account token is refused, Login returns the session in StateRejected along with an authentication error,
// so that Close can still hand the credentials back. Any other failure returns a nil session.
func Login(ctx context.Context, creds Credentials, opts ...Option) (*Session, error) {
	s := setupSession(creds, opts)

	start := time.Now()
	if err := s.doLogin(ctx); err != nil {
		if s.state == StateRejected {
			return s, err
		}
		return nil, err
	}

	s.logger.Info("logged in",
		zap.Uint64("user_id", s.user.UserID),
		zap.String("user", s.user.Name),
		zap.Duration("took", time.Since(start)))

	return s, nil
}

func (s *Session) doLogin(ctx context.Context) error {
	data, err := s.fetchUserData(ctx)
	if err != nil {
		if errs.KindOf(err) == errs.Authentication {
			s.state = StateRejected
		}
		return err
	}

	s.install(data)
	s.state = StateReady
	return nil
}

// refresh asks for a new access token. It runs in StateRefreshing and leaves the state to the caller.
func (s *Session) refresh(ctx context.Context) error {
	data, err := s.fetchUserData(ctx)
	if err != nil {
		return err
	}

	s.install(data)
	s.logger.Debug("access token refreshed")
	return nil
}

// fetchUserData calls getUserData without an access token; the answer carries a new one.
func (s *Session) fetchUserData(ctx context.Context) (*metadata.UserData, error) {
	resp, err := s.rpc(ctx, kUserDataMethod, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.InvalidToken() {
		return nil, errs.New(errs.Authentication, kUserDataMethod, "token refused: %v", resp.Errors)
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	data, err := metadata.DecodeUserData(resp.Results)
	if err != nil {
		return nil, err
	}
	if data.UserID == 0 {
		return nil, errs.New(errs.Authentication, kUserDataMethod, "account token not accepted")
	}

	return data, nil
}

func (s *Session) install(data *metadata.UserData) {
	s.user = data
	s.creds.AccessToken = data.CheckForm
	if data.LicenseToken != "" {
		s.creds.LicenseToken = data.LicenseToken
	}
}
