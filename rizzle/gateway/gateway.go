// Package gateway speaks the JSON RPC protocol of the gw-light endpoint. Every call is one POST carrying the method,
// the access token and a random correlation id as query parameters; the answer is an envelope holding the results
// and an error object.
package gateway

import (
	"bytes"
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/rizzle-org/rizzle-golang/rizzle/connection"
	"github.com/rizzle-org/rizzle-golang/rizzle/errs"
)

const (
	DefaultURL = "https://www.deezer.com/ajax/gw-light.php"

	kInput      = "3"
	kAPIVersion = "1.0"
	// Carries the id that ties a call to its log lines
	kRequestIDHeader = "X-Request-Id"
	// Upper bound, exclusive, of the correlation id
	kMaxCid = 1000000000
)

// Error keys meaning the access token is missing or stale.
var invalidTokenMarkers = []string{"VALID_TOKEN_REQUIRED", "NEED_API_AUTH_REQUIRED"}

type Request struct {
	Method string
	// Token is the access token sent as api_token; empty to request a new one
	Token string
	Meta  connection.Metadata
	// Body is encoded as JSON. Nil sends an empty object.
	Body interface{}
}

type Response struct {
	Method  string
	Results []byte
	// Errors holds the server's error object, keyed by error code. Empty on success.
	Errors map[string]string
}

// InvalidToken reports whether the server refused the access token.
func (r *Response) InvalidToken() bool {
	for _, key := range invalidTokenMarkers {
		if _, ok := r.Errors[key]; ok {
			return true
		}
	}
	return false
}

// Err returns a schema error describing the server errors, or nil if there are none.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return errs.New(errs.Schema, r.Method, "server error: %v", r.Errors)
}

type Client struct {
	doer      connection.Doer
	url       string
	userAgent string
	logger    *zap.Logger
}

type Option func(*Client)

func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewClient(doer connection.Doer, opts ...Option) *Client {
	c := &Client{
		doer:      doer,
		url:       DefaultURL,
		userAgent: connection.DefaultUserAgent,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call performs one RPC. Server side errors, including the invalid token marker, are not Go errors: they are
// reported in the Response for the caller to inspect.
func (c *Client) Call(ctx context.Context, req Request) (*Response, error) {
	op := req.Method

	body := req.Body
	if body == nil {
		body = map[string]interface{}{}
	}
	payload, err := sonic.ConfigStd.Marshal(body)
	if err != nil {
		return nil, errs.Wrap(errs.Schema, op, err)
	}

	endpoint, err := c.endpoint(req)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	connection.Decorate(httpReq, c.userAgent, req.Meta)

	requestId := uuid.NewString()
	httpReq.Header.Set(kRequestIDHeader, requestId)
	c.logger.Debug("gateway call",
		zap.String("method", req.Method),
		zap.String("request_id", requestId),
		zap.Bool("has_token", req.Token != ""))

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errs.New(errs.Authentication, op, "http status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errs.New(errs.Transport, op, "http status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, op, err)
	}

	response, err := parseEnvelope(op, data)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("gateway answer",
		zap.String("method", req.Method),
		zap.String("request_id", requestId),
		zap.Int("bytes", len(data)),
		zap.Any("errors", response.Errors))

	return response, nil
}

func (c *Client) endpoint(req Request) (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("method", req.Method)
	q.Set("input", kInput)
	q.Set("api_version", kAPIVersion)
	q.Set("api_token", req.Token)
	q.Set("cid", strconv.Itoa(rand.Intn(kMaxCid)))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// parseEnvelope splits the answer into results and errors. The error field is an empty array when all went well and
// an object otherwise.
func parseEnvelope(op string, data []byte) (*Response, error) {
	if !gjson.ValidBytes(data) {
		return nil, errs.New(errs.Schema, op, "response is not JSON")
	}

	envelope := gjson.ParseBytes(data)
	if !envelope.IsObject() {
		return nil, errs.New(errs.Schema, op, "response is not an object")
	}

	response := &Response{Method: op, Errors: map[string]string{}}

	if e := envelope.Get("error"); e.IsObject() {
		e.ForEach(func(key, value gjson.Result) bool {
			response.Errors[key.String()] = value.String()
			return true
		})
	}

	results := envelope.Get("results")
	if !results.Exists() && len(response.Errors) == 0 {
		return nil, errs.New(errs.Schema, op, "response without results")
	}
	response.Results = []byte(results.Raw)

	return response, nil
}
