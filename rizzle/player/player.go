package player

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/connection"
	"github.com/rizzle-org/rizzle-golang/rizzle/crypto"
	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
	"github.com/rizzle-org/rizzle-golang/rizzle/metadata"
)

// Quality selectors understood by the CDN.
const (
	QualityMP3128 = 1
	QualityMP3320 = 3
)

type Player struct {
	doer        connection.Doer
	cdnTemplate string
	userAgent   string
	logger      *zap.Logger
}

type Option func(*Player)

// WithCDNTemplate overrides the CDN URL. The template receives the host index character and the URL fragment.
func WithCDNTemplate(template string) Option {
	return func(p *Player) {
		if template != "" {
			p.cdnTemplate = template
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(p *Player) {
		p.userAgent = ua
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(p *Player) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func CreatePlayer(doer connection.Doer, opts ...Option) *Player {
	p := &Player{
		doer:        doer,
		cdnTemplate: crypto.DefaultCDNTemplate,
		userAgent:   connection.DefaultUserAgent,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoadTrack starts the CDN download of a track and returns the decrypting stream over it. The caller owns the
// stream and must close it.
func (p *Player) LoadTrack(ctx context.Context, details *metadata.TrackDetails, quality int) (*TrackStream, error) {
	const op = "load track"

	key := crypto.DeriveContentKey(details.ID)
	fragment := crypto.DeriveURLFragment(details.ID, details.MD5Origin, details.MediaVersion, quality)
	url := crypto.StreamURL(p.cdnTemplate, details.MD5Origin, fragment)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}
	connection.Decorate(req, p.userAgent, connection.Metadata{})

	p.logger.Debug("loading track",
		zap.Uint64("track_id", details.ID),
		zap.Int("quality", quality),
		zap.String("url", url))

	resp, err := p.doer.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, errs.New(errs.Transport, op, "http status %d for track %d", resp.StatusCode, details.ID)
	}

	stream, err := NewTrackStream(resp.Body, key)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	stream.trackId = details.ID
	stream.logger = p.logger

	return stream, nil
}
