package core

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/connection"
	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
	"github.com/rizzle-org/rizzle-golang/rizzle/gateway"
	"github.com/rizzle-org/rizzle-golang/rizzle/metadata"
	"github.com/rizzle-org/rizzle-golang/rizzle/player"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateNew State = iota
	StateReady
	StateRefreshing
	// StateRejected is terminal: the account token was refused, or a refreshed token was refused again
	StateRejected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	case StateRejected:
		return "rejected"
	case StateClosed:
		return "closed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// ErrSessionClosed is returned by every call made after Close.
var ErrSessionClosed = errors.New("session closed")

// Credentials is the token bundle of a session. SessionID and AccountToken are the sid and arl cookies supplied by
// the caller; AccessToken and LicenseToken are issued by the server and change over the life of the session.
type Credentials struct {
	SessionID    string
	AccountToken string
	AccessToken  string
	LicenseToken string
}

func (c Credentials) metadata() connection.Metadata {
	return connection.Metadata{
		SessionID:    c.SessionID,
		AccountToken: c.AccountToken,
		LicenseToken: c.LicenseToken,
	}
}

// Session represents an authenticated connection to the gateway. It is not safe for concurrent use: the token
// refresh is a read-modify-write of the session state, so callers sharing a Session must serialize access.
type Session struct {
	/// Managers and helpers
	// doer carries every HTTP request of the session, RPCs and CDN downloads alike
	doer connection.Doer
	// gateway is the RPC client
	gateway *gateway.Client
	// player turns resolved tracks into decrypting streams
	player *player.Player
	logger *zap.Logger

	/// State and variables
	// creds is owned by the session; only login and refresh write the server issued tokens
	creds Credentials
	state State
	// user is the answer of the last getUserData call
	user *metadata.UserData
}

func (s *Session) Player() *player.Player {
	return s.player
}

func (s *Session) State() State {
	return s.state
}

// User returns the account data received at login, or nil before that.
func (s *Session) User() *metadata.UserData {
	return s.user
}

// Credentials returns a copy of the current token bundle.
func (s *Session) Credentials() Credentials {
	return s.creds
}

// Close releases idle transport connections and returns the final credentials, including any refreshed access
// token, so that they can be persisted. The session cannot be used afterwards.
func (s *Session) Close() Credentials {
	if s.state != StateClosed {
		connection.CloseIdle(s.doer)
		s.logger.Debug("session closed", zap.Stringer("previous_state", s.state))
		s.state = StateClosed
	}
	return s.creds
}

// Search runs a full text search.
func (s *Session) Search(ctx context.Context, query string) (*metadata.SearchResult, error) {
	results, err := s.call(ctx, "deezer.pageSearch", map[string]interface{}{
		"query":          query,
		"start":          0,
		"nb":             40,
		"suggest":        true,
		"artist_suggest": true,
		"top_tracks":     true,
	})
	if err != nil {
		return nil, err
	}

	return metadata.DecodeSearch(results)
}

// ResolveTrackDetails fetches what it takes to download and decrypt track.
func (s *Session) ResolveTrackDetails(ctx context.Context, track metadata.Track) (*metadata.TrackDetails, error) {
	results, err := s.call(ctx, "song.getListData", map[string]interface{}{
		"sng_ids": []string{strconv.FormatUint(track.ID, 10)},
	})
	if err != nil {
		return nil, err
	}

	return metadata.DecodeTrackDetails(results)
}

// Details fetches the page of an artist, album or playlist.
func (s *Session) Details(ctx context.Context, entity metadata.Entity) (metadata.Details, error) {
	method, body := entity.DetailsQuery()

	results, err := s.call(ctx, method, body)
	if err != nil {
		return nil, err
	}

	return entity.DecodeDetails(results)
}

// OpenStream resolves track and starts downloading it. The returned stream yields the decrypted MP3 data.
func (s *Session) OpenStream(ctx context.Context, track metadata.Track, quality int) (*player.TrackStream, error) {
	details, err := s.ResolveTrackDetails(ctx, track)
	if err != nil {
		return nil, err
	}

	return s.player.LoadTrack(ctx, details, quality)
}

// OpenPCM is OpenStream followed by MP3 decoding.
func (s *Session) OpenPCM(ctx context.Context, track metadata.Track, quality int) (*player.PCMStream, error) {
	stream, err := s.OpenStream(ctx, track, quality)
	if err != nil {
		return nil, err
	}

	pcm, err := player.NewPCMStream(stream)
	if err != nil {
		stream.Close()
		return nil, err
	}
	return pcm, nil
}

func (s *Session) checkUsable() error {
	switch s.state {
	case StateReady:
		return nil
	case StateClosed:
		return ErrSessionClosed
	case StateRejected:
		return errs.New(errs.Authentication, "session", "session was rejected")
	}
	return errors.Errorf("session is %s", s.state)
}

// call issues one RPC with the current access token. If the server flags the token as invalid, the token is
// refreshed once and the call replayed once; a second refusal is an authentication error.
func (s *Session) call(ctx context.Context, method string, body interface{}) ([]byte, error) {
	if err := s.checkUsable(); err != nil {
		return nil, err
	}

	resp, err := s.rpc(ctx, method, s.creds.AccessToken, body)
	if err != nil {
		return nil, err
	}
	if !resp.InvalidToken() {
		return resp.Results, resp.Err()
	}

	s.logger.Debug("access token refused, refreshing", zap.String("method", method))
	s.state = StateRefreshing

	if err := s.refresh(ctx); err != nil {
		if errs.KindOf(err) == errs.Authentication {
			s.state = StateRejected
		} else {
			s.state = StateReady
		}
		return nil, err
	}

	resp, err = s.rpc(ctx, method, s.creds.AccessToken, body)
	if err != nil {
		s.state = StateReady
		return nil, err
	}
	if resp.InvalidToken() {
		s.state = StateRejected
		return nil, errs.New(errs.Authentication, method, "access token refused after refresh")
	}

	s.state = StateReady
	return resp.Results, resp.Err()
}

func (s *Session) rpc(ctx context.Context, method string, token string, body interface{}) (*gateway.Response, error) {
	return s.gateway.Call(ctx, gateway.Request{
		Method: method,
		Token:  token,
		Meta:   s.creds.metadata(),
		Body:   body,
	})
}
